package mapping

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// ErrMappingNotFound is returned when no local user is mapped to an
// external id.
var ErrMappingNotFound = errors.New("identity mapping not found")

// Store associates provider-scoped external ids with local user ids.
//
// It is a thin facade over the host's KeyValue storage: all entries live
// under a single provider-scoped object key, so they never collide with
// unrelated host data. The account resolver is the sole writer.
type Store struct {
	kv  KeyValue
	key string
}

// NewStore creates a mapping store. key is the provider-scoped object key
// all mappings are stored under (see config.ProviderConfig.MappingKey).
func NewStore(kv KeyValue, key string) *Store {
	return &Store{
		kv:  kv,
		key: key,
	}
}

// GetUserID returns the local user id mapped to externalID, or
// ErrMappingNotFound.
func (s *Store) GetUserID(ctx context.Context, externalID string) (int64, error) {
	value, err := s.kv.GetField(ctx, s.key, externalID)
	if err != nil {
		if errors.Is(err, ErrFieldNotFound) {
			return 0, fmt.Errorf("%w: %s", ErrMappingNotFound, externalID)
		}
		return 0, fmt.Errorf("failed to read mapping for %s: %w", externalID, err)
	}

	userID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt mapping for %s: %q: %w", externalID, value, err)
	}
	return userID, nil
}

// SetUserID maps externalID to userID, overwriting any previous mapping.
func (s *Store) SetUserID(ctx context.Context, externalID string, userID int64) error {
	if err := s.kv.SetField(ctx, s.key, externalID, strconv.FormatInt(userID, 10)); err != nil {
		return fmt.Errorf("failed to write mapping for %s: %w", externalID, err)
	}
	return nil
}

// Delete removes the mapping for externalID. Deleting an absent mapping is
// a success, so teardown stays idempotent.
func (s *Store) Delete(ctx context.Context, externalID string) error {
	if err := s.kv.DeleteField(ctx, s.key, externalID); err != nil {
		return fmt.Errorf("failed to delete mapping for %s: %w", externalID, err)
	}
	return nil
}
