package teardown

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tendant/simple-sso/pkg/mapping"
	"github.com/tendant/simple-sso/pkg/resolver"
)

// Service removes identity mappings when the host deletes a user, so the
// external identity can no longer resolve to the deleted account.
type Service struct {
	mappings    *mapping.Store
	users       resolver.UserStore
	userIDField string
}

// NewService creates the teardown hook. userIDField is the denormalized
// field the resolver stamps on user records (see
// config.ProviderConfig.UserIDField).
func NewService(mappings *mapping.Store, users resolver.UserStore, userIDField string) *Service {
	return &Service{
		mappings:    mappings,
		users:       users,
		userIDField: userIDField,
	}
}

// OnUserDeletion removes the identity mapping for the deleted user. A user
// who never logged in through this provider has no mapping; that is a no-op
// success, as is calling the hook twice for the same user.
func (s *Service) OnUserDeletion(ctx context.Context, userID int64) error {
	externalID, err := s.users.GetUserField(ctx, userID, s.userIDField)
	if err != nil {
		return fmt.Errorf("failed to read %s for user %d: %w", s.userIDField, userID, err)
	}
	if externalID == "" {
		return nil
	}

	if err := s.mappings.Delete(ctx, externalID); err != nil {
		slog.Error("Failed to remove identity mapping for deleted user",
			"user_id", userID, "external_id", externalID, "error", err)
		return err
	}

	slog.Info("Removed identity mapping for deleted user",
		"user_id", userID, "external_id", externalID)
	return nil
}

// WhitelistFields appends the provider-specific id field to the host's
// user-field whitelist. Without it the deletion lookup above cannot see the
// stamped external id.
func (s *Service) WhitelistFields(fields []string) []string {
	return append(fields, s.userIDField)
}
