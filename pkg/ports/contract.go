package ports

import (
	"context"
	"testing"
	"time"

	"github.com/painelbot/atendente/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()

	t.Run("Load Empty", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx))
		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
	})

	t.Run("Save and Load", func(t *testing.T) {
		saved := domain.Session{
			Token:    "header.payload.sig",
			Username: "admin",
			SavedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		}
		require.NoError(t, store.Save(ctx, saved), "Save should not return error")

		loaded, err := store.Load(ctx)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, saved.Token, loaded.Token)
		assert.Equal(t, saved.Username, loaded.Username)
		assert.True(t, saved.SavedAt.Equal(loaded.SavedAt))
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.Session{Token: "first", Username: "a"}))
		require.NoError(t, store.Save(ctx, domain.Session{Token: "second", Username: "b"}))

		loaded, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "second", loaded.Token)
		assert.Equal(t, "b", loaded.Username)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.Session{Token: "tok"}))
		require.NoError(t, store.Delete(ctx))

		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, domain.ErrNotAuthenticated)

		// Idempotent
		assert.NoError(t, store.Delete(ctx))
	})
}

// RunLockerContract verifies that a Locker rejects a second holder and releases on unlock.
func RunLockerContract(t *testing.T, locker Locker) {
	ctx := context.Background()
	key := "contract-" + time.Now().Format("150405.000000000")

	unlock, err := locker.TryLock(ctx, key, time.Minute)
	require.NoError(t, err)

	_, err = locker.TryLock(ctx, key, time.Minute)
	assert.ErrorIs(t, err, domain.ErrSaveInProgress)

	other, err := locker.TryLock(ctx, key+"-other", time.Minute)
	require.NoError(t, err, "distinct keys must not contend")
	require.NoError(t, other(ctx))

	require.NoError(t, unlock(ctx))

	again, err := locker.TryLock(ctx, key, time.Minute)
	require.NoError(t, err, "lock must be free after unlock")
	assert.NoError(t, again(ctx))
}
