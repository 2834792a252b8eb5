package memory

import (
	"context"
	"sync"

	"github.com/painelbot/atendente/pkg/domain"
)

// Store implements ports.SessionStore in memory.
// Safe for concurrent use.
type Store struct {
	session *domain.Session
	mu      sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{}
}

// Save persists the session in memory.
func (s *Store) Save(ctx context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = &session
	return nil
}

// Load retrieves the session from memory.
func (s *Store) Load(ctx context.Context) (domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return domain.Session{}, domain.ErrNotAuthenticated
	}
	return *s.session, nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}
