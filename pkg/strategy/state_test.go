package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStateValue(t *testing.T) {
	a, err := NewStateValue()
	require.NoError(t, err)
	b, err := NewStateValue()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestInMemoryStateStore(t *testing.T) {
	store := NewInMemoryStateStore()

	t.Run("SingleUse", func(t *testing.T) {
		state := &State{
			Value:     "abc",
			Provider:  "acme",
			ExpiresAt: time.Now().Add(time.Minute).Unix(),
		}
		require.NoError(t, store.Store(state))

		got, err := store.Consume("abc")
		require.NoError(t, err)
		assert.Equal(t, "acme", got.Provider)

		// Consumed states are gone.
		_, err = store.Consume("abc")
		assert.ErrorIs(t, err, ErrStateNotFound)
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := store.Consume("never-stored")
		assert.ErrorIs(t, err, ErrStateNotFound)
	})

	t.Run("Expired", func(t *testing.T) {
		require.NoError(t, store.Store(&State{
			Value:     "old",
			Provider:  "acme",
			ExpiresAt: time.Now().Add(-time.Minute).Unix(),
		}))

		_, err := store.Consume("old")
		assert.ErrorIs(t, err, ErrStateNotFound)
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Error(t, store.Store(nil))
		assert.Error(t, store.Store(&State{}))
	})

	t.Run("CleanupExpired", func(t *testing.T) {
		require.NoError(t, store.Store(&State{
			Value:     "stale",
			ExpiresAt: time.Now().Add(-time.Minute).Unix(),
		}))
		require.NoError(t, store.Store(&State{
			Value:     "fresh",
			ExpiresAt: time.Now().Add(time.Minute).Unix(),
		}))

		require.NoError(t, store.CleanupExpired())
		assert.Equal(t, 1, store.Len())

		_, err := store.Consume("fresh")
		assert.NoError(t, err)
	})
}
