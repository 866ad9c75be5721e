package teardown

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-sso/pkg/mapping"
	"github.com/tendant/simple-sso/pkg/profile"
	"github.com/tendant/simple-sso/pkg/resolver"
)

func setupTeardown(t *testing.T) (*Service, *resolver.Service, *mapping.Store, *resolver.InMemoryUserStore) {
	kv := mapping.NewInMemoryKeyValue()
	mappings := mapping.NewStore(kv, "acmeId:uid")
	users := resolver.NewInMemoryUserStore()
	groups := resolver.NewInMemoryGroupStore()

	resolve := resolver.NewService(mappings, users, groups, "acmeId")
	return NewService(mappings, users, "acmeId"), resolve, mappings, users
}

func loginProfile(externalID, email string) *profile.CanonicalProfile {
	return &profile.CanonicalProfile{
		Provider:    "acme",
		ExternalID:  externalID,
		DisplayName: "AB",
		Emails:      []profile.Email{{Address: email, Kind: "work"}},
	}
}

func TestService_OnUserDeletion(t *testing.T) {
	service, resolve, mappings, _ := setupTeardown(t)
	ctx := context.Background()

	userID, err := resolve.Resolve(ctx, loginProfile("p1", "a@x.com"))
	require.NoError(t, err)

	require.NoError(t, service.OnUserDeletion(ctx, userID))

	// The external id no longer resolves to the deleted account.
	_, err = mappings.GetUserID(ctx, "p1")
	assert.ErrorIs(t, err, mapping.ErrMappingNotFound)

	// A second teardown for the same user is a no-op success.
	assert.NoError(t, service.OnUserDeletion(ctx, userID))
}

func TestService_OnUserDeletion_NeverLoggedIn(t *testing.T) {
	service, _, _, users := setupTeardown(t)
	ctx := context.Background()

	// Account created by the host directly, never via this provider.
	userID, err := users.CreateUser(ctx, resolver.NewUser{Username: "local", Email: "local@x.com"})
	require.NoError(t, err)

	assert.NoError(t, service.OnUserDeletion(ctx, userID))
}

func TestService_OnUserDeletion_UnknownUser(t *testing.T) {
	service, _, _, _ := setupTeardown(t)

	err := service.OnUserDeletion(context.Background(), 999)
	assert.Error(t, err)
}

func TestService_WhitelistFields(t *testing.T) {
	service, _, _, _ := setupTeardown(t)

	fields := service.WhitelistFields([]string{"username", "email"})
	assert.Equal(t, []string{"username", "email", "acmeId"}, fields)
}
