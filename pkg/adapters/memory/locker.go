package memory

import (
	"context"
	"sync"
	"time"

	"github.com/painelbot/atendente/pkg/domain"
	"github.com/painelbot/atendente/pkg/ports"
)

// Locker implements ports.Locker for a single process.
type Locker struct {
	mu    sync.Mutex
	held  map[string]uint64
	until map[string]time.Time
	seq   uint64
	now   func() time.Time
}

// NewLocker creates a new in-memory locker.
func NewLocker() *Locker {
	return &Locker{
		held:  make(map[string]uint64),
		until: make(map[string]time.Time),
		now:   time.Now,
	}
}

// TryLock acquires key unless another holder has it and its ttl has not elapsed.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[key]; ok && l.now().Before(l.until[key]) {
		return nil, domain.ErrSaveInProgress
	}

	l.seq++
	token := l.seq
	l.held[key] = token
	l.until[key] = l.now().Add(ttl)

	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		// A holder whose ttl expired must not release a newer holder's lock.
		if l.held[key] == token {
			delete(l.held, key)
			delete(l.until, key)
		}
		return nil
	}, nil
}
