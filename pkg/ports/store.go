package ports

import (
	"context"

	"github.com/painelbot/atendente/pkg/domain"
)

// SessionStore persists the client session.
// There is a single session per store; the backend identifies the user by token.
type SessionStore interface {
	// Save persists the session, replacing any previous one.
	Save(ctx context.Context, s domain.Session) error

	// Load retrieves the session.
	// Returns domain.ErrNotAuthenticated if no session is stored.
	Load(ctx context.Context) (domain.Session, error)

	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context) error
}
