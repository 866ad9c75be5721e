package mapping

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	kv := NewInMemoryKeyValue()
	store := NewStore(kv, "acmeId:uid")
	ctx := context.Background()

	t.Run("GetMissing", func(t *testing.T) {
		_, err := store.GetUserID(ctx, "p1")
		assert.ErrorIs(t, err, ErrMappingNotFound)
	})

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, store.SetUserID(ctx, "p1", 42))

		userID, err := store.GetUserID(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, int64(42), userID)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.SetUserID(ctx, "p1", 43))

		userID, err := store.GetUserID(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, int64(43), userID)
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "p1"))

		_, err := store.GetUserID(ctx, "p1")
		assert.ErrorIs(t, err, ErrMappingNotFound)

		// Second delete of the same mapping is still a success.
		assert.NoError(t, store.Delete(ctx, "p1"))
	})
}

func TestStore_KeyNamespacing(t *testing.T) {
	kv := NewInMemoryKeyValue()
	ctx := context.Background()

	acme := NewStore(kv, "acmeId:uid")
	other := NewStore(kv, "otherId:uid")

	require.NoError(t, acme.SetUserID(ctx, "p1", 1))
	require.NoError(t, other.SetUserID(ctx, "p1", 2))

	userID, err := acme.GetUserID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), userID)

	userID, err = other.GetUserID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), userID)

	// Deleting under one provider key leaves the other untouched.
	require.NoError(t, acme.Delete(ctx, "p1"))
	_, err = acme.GetUserID(ctx, "p1")
	assert.ErrorIs(t, err, ErrMappingNotFound)

	userID, err = other.GetUserID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), userID)
}

func TestStore_CorruptValue(t *testing.T) {
	kv := NewInMemoryKeyValue()
	store := NewStore(kv, "acmeId:uid")
	ctx := context.Background()

	require.NoError(t, kv.SetField(ctx, "acmeId:uid", "p1", "not-a-number"))

	_, err := store.GetUserID(ctx, "p1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMappingNotFound)
}
