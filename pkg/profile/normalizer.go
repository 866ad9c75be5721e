package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/tendant/simple-sso/pkg/config"
)

// ErrMalformedProfile indicates the raw provider profile is missing a field
// the adapter cannot recover from (external id or email).
var ErrMalformedProfile = errors.New("malformed provider profile")

// Normalizer converts the raw user-info payload of the configured provider
// into a CanonicalProfile. The raw field names come from configuration; the
// provider guarantees no shape beyond convention.
type Normalizer struct {
	provider string
	fields   config.ProfileFields
}

// NewNormalizer creates a normalizer for the named provider.
func NewNormalizer(provider string, fields config.ProfileFields) *Normalizer {
	return &Normalizer{
		provider: provider,
		fields:   fields,
	}
}

// Normalize parses the raw JSON body returned by the provider's user-info
// endpoint and produces a canonical profile.
//
// Missing optional fields (names, admin hint) degrade gracefully; a missing
// or empty external id or email fails fast with ErrMalformedProfile and no
// partial profile is returned.
func (n *Normalizer) Normalize(raw []byte) (*CanonicalProfile, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrMalformedProfile, err)
	}
	return n.NormalizeMap(data)
}

// NormalizeMap normalizes an already-decoded user-info object.
func (n *Normalizer) NormalizeMap(data map[string]interface{}) (*CanonicalProfile, error) {
	externalID := stringField(data, n.fields.ID)
	if externalID == "" {
		return nil, fmt.Errorf("%w: missing %q field", ErrMalformedProfile, n.fields.ID)
	}

	email := stringField(data, n.fields.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: missing %q field", ErrMalformedProfile, n.fields.Email)
	}

	// Empty display name is allowed; the host may reject it at account
	// creation, which surfaces through the resolver instead.
	displayName := stringField(data, n.fields.GivenName) + stringField(data, n.fields.FamilyName)

	return &CanonicalProfile{
		Provider:    n.provider,
		ExternalID:  externalID,
		DisplayName: displayName,
		Emails:      []Email{{Address: email, Kind: "work"}},
		AdminHint:   boolField(data, n.fields.AdminHint),
	}, nil
}

// stringField reads a field as a string, rendering JSON numbers as their
// literal form so numeric provider ids stay stable.
func stringField(data map[string]interface{}, key string) string {
	if key == "" {
		return ""
	}
	switch v := data[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func boolField(data map[string]interface{}, key string) bool {
	if key == "" {
		return false
	}
	if v, ok := data[key].(bool); ok {
		return v
	}
	return false
}
