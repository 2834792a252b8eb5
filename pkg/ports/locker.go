package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a lock.
type UnlockFunc func(ctx context.Context) error

// Locker guards operations that must not run twice at the same time (e.g. saving the same step).
type Locker interface {
	// TryLock acquires the lock for key without waiting.
	// It returns domain.ErrSaveInProgress when the lock is already held.
	// The lock expires after ttl even if never released.
	// Returns an UnlockFunc that MUST be called to release the lock.
	TryLock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
