package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-sso/pkg/mapping"
	"github.com/tendant/simple-sso/pkg/profile"
)

const testUserIDField = "acmeId"

type fixture struct {
	kv       *mapping.InMemoryKeyValue
	mappings *mapping.Store
	users    *InMemoryUserStore
	groups   *InMemoryGroupStore
}

func newFixture() *fixture {
	kv := mapping.NewInMemoryKeyValue()
	return &fixture{
		kv:       kv,
		mappings: mapping.NewStore(kv, "acmeId:uid"),
		users:    NewInMemoryUserStore(),
		groups:   NewInMemoryGroupStore(),
	}
}

func (f *fixture) service(opts ...Option) *Service {
	return NewService(f.mappings, f.users, f.groups, testUserIDField, opts...)
}

func testProfile(externalID, displayName, email string) *profile.CanonicalProfile {
	return &profile.CanonicalProfile{
		Provider:    "acme",
		ExternalID:  externalID,
		DisplayName: displayName,
		Emails:      []profile.Email{{Address: email, Kind: "work"}},
	}
}

func TestService_Resolve_CreationPath(t *testing.T) {
	f := newFixture()
	service := f.service()
	ctx := context.Background()

	p := testProfile("p1", "AB", "a@x.com")

	userID, err := service.Resolve(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, int64(1), userID)

	// Exactly one account and one mapping entry.
	assert.Equal(t, 1, f.users.UserCount())
	assert.Equal(t, 1, f.kv.FieldCount("acmeId:uid"))

	mappedID, err := f.mappings.GetUserID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, userID, mappedID)

	// Username derives from the display name; the external id is stamped on
	// the user record for teardown lookups.
	field, err := f.users.GetUserField(ctx, userID, testUserIDField)
	require.NoError(t, err)
	assert.Equal(t, "p1", field)

	foundID, err := f.users.GetUserIDByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, userID, foundID)
}

func TestService_Resolve_FastPathIsIdempotent(t *testing.T) {
	f := newFixture()
	service := f.service()
	ctx := context.Background()

	p := testProfile("p1", "AB", "a@x.com")

	first, err := service.Resolve(ctx, p)
	require.NoError(t, err)

	second, err := service.Resolve(ctx, p)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// No account mutation on the second call.
	assert.Equal(t, 1, f.users.UserCount())
	assert.Equal(t, 1, f.kv.FieldCount("acmeId:uid"))
}

func TestService_Resolve_MergePath(t *testing.T) {
	f := newFixture()
	service := f.service()
	ctx := context.Background()

	existingID, err := f.users.CreateUser(ctx, NewUser{Username: "existing", Email: "a@x.com"})
	require.NoError(t, err)

	userID, err := service.Resolve(ctx, testProfile("p1", "AB", "a@x.com"))
	require.NoError(t, err)

	// Merged into the existing account: zero new accounts, one mapping.
	assert.Equal(t, existingID, userID)
	assert.Equal(t, 1, f.users.UserCount())
	assert.Equal(t, 1, f.kv.FieldCount("acmeId:uid"))

	field, err := f.users.GetUserField(ctx, existingID, testUserIDField)
	require.NoError(t, err)
	assert.Equal(t, "p1", field)
}

func TestService_Resolve_CreationCollision(t *testing.T) {
	f := newFixture()
	service := f.service()
	ctx := context.Background()

	// A different, unmapped account already holds the username but not the
	// email, so the email lookup misses and creation collides.
	_, err := f.users.CreateUser(ctx, NewUser{Username: "AB", Email: "other@x.com"})
	require.NoError(t, err)

	_, err = service.Resolve(ctx, testProfile("p1", "AB", "a@x.com"))
	assert.ErrorIs(t, err, ErrAccountCreation)

	// The collision must not leave a mapping behind.
	assert.Equal(t, 0, f.kv.FieldCount("acmeId:uid"))
	assert.Equal(t, 1, f.users.UserCount())
}

func TestService_Resolve_MappingSelfHeals(t *testing.T) {
	f := newFixture()
	service := f.service()
	ctx := context.Background()

	userID, err := service.Resolve(ctx, testProfile("p1", "AB", "a@x.com"))
	require.NoError(t, err)

	// Simulate a crash after account creation but before the mapping write.
	require.NoError(t, f.mappings.Delete(ctx, "p1"))

	again, err := service.Resolve(ctx, testProfile("p1", "AB", "a@x.com"))
	require.NoError(t, err)

	assert.Equal(t, userID, again)
	assert.Equal(t, 1, f.users.UserCount())

	mappedID, err := f.mappings.GetUserID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, userID, mappedID)
}

func TestService_Resolve_AdminHint(t *testing.T) {
	t.Run("GrantedOnCreation", func(t *testing.T) {
		f := newFixture()
		service := f.service()

		p := testProfile("p1", "AB", "a@x.com")
		p.AdminHint = true

		userID, err := service.Resolve(context.Background(), p)
		require.NoError(t, err)
		assert.True(t, f.groups.IsMember(DefaultAdminGroup, userID))
	})

	t.Run("GrantedOnMerge", func(t *testing.T) {
		f := newFixture()
		service := f.service()
		ctx := context.Background()

		existingID, err := f.users.CreateUser(ctx, NewUser{Username: "existing", Email: "a@x.com"})
		require.NoError(t, err)

		p := testProfile("p1", "AB", "a@x.com")
		p.AdminHint = true

		userID, err := service.Resolve(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, existingID, userID)
		assert.True(t, f.groups.IsMember(DefaultAdminGroup, userID))
	})

	t.Run("NotReinvokedOnFastPath", func(t *testing.T) {
		f := newFixture()
		groups := &countingGroupStore{inner: f.groups}
		service := NewService(f.mappings, f.users, groups, testUserIDField)
		ctx := context.Background()

		p := testProfile("p1", "AB", "a@x.com")
		p.AdminHint = true

		_, err := service.Resolve(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, 1, groups.joins)

		_, err = service.Resolve(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, 1, groups.joins, "fast path must not re-invoke the grant")
	})

	t.Run("CustomGroup", func(t *testing.T) {
		f := newFixture()
		service := f.service(WithAdminGroup("staff"))

		p := testProfile("p1", "AB", "a@x.com")
		p.AdminHint = true

		userID, err := service.Resolve(context.Background(), p)
		require.NoError(t, err)
		assert.True(t, f.groups.IsMember("staff", userID))
		assert.False(t, f.groups.IsMember(DefaultAdminGroup, userID))
	})
}

func TestService_Resolve_RoleGrantFailure(t *testing.T) {
	t.Run("NonFatalByDefault", func(t *testing.T) {
		f := newFixture()
		groups := &failingGroupStore{}
		service := NewService(f.mappings, f.users, groups, testUserIDField)

		p := testProfile("p1", "AB", "a@x.com")
		p.AdminHint = true

		userID, err := service.Resolve(context.Background(), p)
		require.NoError(t, err, "role-grant failure must not fail the login by default")
		assert.Equal(t, int64(1), userID)
	})

	t.Run("FatalWhenConfigured", func(t *testing.T) {
		f := newFixture()
		groups := &failingGroupStore{}
		service := NewService(f.mappings, f.users, groups, testUserIDField, WithFatalRoleGrant(true))

		p := testProfile("p1", "AB", "a@x.com")
		p.AdminHint = true

		_, err := service.Resolve(context.Background(), p)
		assert.Error(t, err)
	})
}

func TestService_Resolve_NilProfile(t *testing.T) {
	f := newFixture()

	_, err := f.service().Resolve(context.Background(), nil)
	assert.Error(t, err)
}

// countingGroupStore counts Join calls on top of a real store.
type countingGroupStore struct {
	inner *InMemoryGroupStore
	joins int
}

func (s *countingGroupStore) Join(ctx context.Context, group string, userID int64) error {
	s.joins++
	return s.inner.Join(ctx, group, userID)
}

// failingGroupStore rejects every Join.
type failingGroupStore struct{}

func (s *failingGroupStore) Join(ctx context.Context, group string, userID int64) error {
	return errors.New("group storage unavailable")
}
