package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/painelbot/atendente/pkg/adapters/memory"
	"github.com/painelbot/atendente/pkg/domain"
	"github.com/painelbot/atendente/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSessionStoreContract(t, store)
}

func TestMemoryLocker_Contract(t *testing.T) {
	ports.RunLockerContract(t, memory.NewLocker())
}

func TestMemoryLocker_TTLExpiry(t *testing.T) {
	locker := memory.NewLocker()
	ctx := context.Background()

	stale, err := locker.TryLock(ctx, "menu_principal", time.Millisecond)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	fresh, err := locker.TryLock(ctx, "menu_principal", time.Minute)
	require.NoError(t, err, "expired lock must be reclaimable")

	// The stale holder releasing late must not free the fresh lock.
	require.NoError(t, stale(ctx))
	_, err = locker.TryLock(ctx, "menu_principal", time.Minute)
	assert.ErrorIs(t, err, domain.ErrSaveInProgress)

	require.NoError(t, fresh(ctx))
}

func TestMemoryLocker_Concurrent(t *testing.T) {
	locker := memory.NewLocker()
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		acquired int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := locker.TryLock(ctx, "k", time.Minute); err == nil {
				mu.Lock()
				acquired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, acquired)
}

func TestMenus(t *testing.T) {
	ctx := context.Background()
	menus := memory.NewMenus(domain.StepMap{
		domain.RootStepID: {ID: domain.RootStepID, Title: "Menu"},
	})

	step := domain.Step{
		ID:      domain.RootStepID,
		Title:   "Menu",
		Options: []domain.Option{
			{ID: "1", Title: "Financeiro", Target: "financeiro"},
			{ID: "financeiro", Title: "Direto", Target: "financeiro"},
		},
	}
	require.NoError(t, menus.UpdateMenu(ctx, step))

	got, err := menus.Menus(ctx)
	require.NoError(t, err)
	opts := got[domain.RootStepID].Options
	require.Len(t, opts, 2)
	assert.Equal(t, domain.StepID("financeiro"), opts[0].Target, "explicit target survives the update")
	assert.Empty(t, opts[1].Target, "target implied by the option id is not stored")

	err = menus.UpdateMenu(ctx, domain.Step{ID: "ghost"})
	assert.ErrorIs(t, err, domain.ErrStepNotFound)

	boom := errors.New("boom")
	menus.FailUpdate = boom
	assert.ErrorIs(t, menus.UpdateMenu(ctx, step), boom)
	assert.Equal(t, 3, menus.Updates)
}
