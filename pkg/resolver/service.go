package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tendant/simple-sso/pkg/mapping"
	"github.com/tendant/simple-sso/pkg/profile"
)

// ErrAccountCreation indicates the host refused to create the account,
// usually a username or email uniqueness collision. The email lookup and the
// creation are not executed under one transaction, so two concurrent first
// logins for the same identity may race; the loser surfaces this error
// instead of silently merging.
var ErrAccountCreation = errors.New("account creation failed")

// DefaultAdminGroup is the group joined when the provider marks a user as an
// administrator.
const DefaultAdminGroup = "administrators"

// Service resolves a canonical profile to a local user id, creating or
// merging an account as needed. It is the sole writer of identity mappings.
type Service struct {
	mappings *mapping.Store
	users    UserStore
	groups   GroupStore

	// userIDField is the denormalized field stamped on the user record,
	// holding the external id for teardown lookups.
	userIDField string

	adminGroup     string
	fatalRoleGrant bool
}

// Option is a function that configures a resolver Service.
type Option func(*Service)

// WithAdminGroup overrides the group granted on an admin hint.
func WithAdminGroup(group string) Option {
	return func(s *Service) {
		s.adminGroup = group
	}
}

// WithFatalRoleGrant makes a failed admin-role grant abort the login instead
// of being logged and ignored.
func WithFatalRoleGrant(fatal bool) Option {
	return func(s *Service) {
		s.fatalRoleGrant = fatal
	}
}

// NewService creates an account resolver. userIDField is the provider-scoped
// field name stamped on resolved user records (see
// config.ProviderConfig.UserIDField).
func NewService(mappings *mapping.Store, users UserStore, groups GroupStore, userIDField string, opts ...Option) *Service {
	service := &Service{
		mappings:    mappings,
		users:       users,
		groups:      groups,
		userIDField: userIDField,
		adminGroup:  DefaultAdminGroup,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service
}

// Resolve determines the local user id for an external identity.
//
// An existing mapping wins immediately and performs no account mutation (the
// idempotent re-login path). Otherwise an existing account with the same
// primary email is merged -- email equality is deliberately trusted as proof
// of identity here -- and only when neither exists is a new account created.
// The denormalized user field and the mapping entry are then written without
// a transaction: a crash between them leaves the account in place and the
// mapping absent, which self-heals on the next login through the email path.
func (s *Service) Resolve(ctx context.Context, p *profile.CanonicalProfile) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("profile is nil")
	}

	// 1. Fast path: the identity has logged in before.
	userID, err := s.mappings.GetUserID(ctx, p.ExternalID)
	if err == nil {
		return userID, nil
	}
	if !errors.Is(err, mapping.ErrMappingNotFound) {
		return 0, err
	}

	// 2. First login for this identity: merge by email or create.
	email := p.PrimaryEmail()
	userID, err = s.users.GetUserIDByEmail(ctx, email)
	switch {
	case err == nil:
		slog.Info("Linking external identity to existing account",
			"provider", p.Provider, "external_id", p.ExternalID, "user_id", userID)

	case errors.Is(err, ErrUserNotFound):
		userID, err = s.users.CreateUser(ctx, NewUser{
			Username: p.DisplayName,
			Email:    email,
		})
		if err != nil {
			if errors.Is(err, ErrAccountExists) {
				return 0, fmt.Errorf("%w: %v", ErrAccountCreation, err)
			}
			return 0, fmt.Errorf("failed to create account: %w", err)
		}
		slog.Info("Created account for external identity",
			"provider", p.Provider, "external_id", p.ExternalID, "user_id", userID)

	default:
		return 0, fmt.Errorf("failed to look up user by email: %w", err)
	}

	// 3. Bookkeeping for the resolved account.
	if err := s.users.SetUserField(ctx, userID, s.userIDField, p.ExternalID); err != nil {
		return 0, fmt.Errorf("failed to stamp external id on user %d: %w", userID, err)
	}
	if err := s.mappings.SetUserID(ctx, p.ExternalID, userID); err != nil {
		return 0, err
	}

	// 4. Admin hint applies on the creation and merge paths only; the fast
	// path above never re-invokes the grant.
	if p.AdminHint {
		if err := s.groups.Join(ctx, s.adminGroup, userID); err != nil {
			if s.fatalRoleGrant {
				return 0, fmt.Errorf("failed to grant admin role to user %d: %w", userID, err)
			}
			slog.Error("Failed to grant admin role, continuing login",
				"provider", p.Provider, "user_id", userID, "group", s.adminGroup, "error", err)
		}
	}

	return userID, nil
}
