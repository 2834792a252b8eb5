package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/painelbot/atendente/internal/logging"
	"github.com/painelbot/atendente/pkg/domain"
	"github.com/painelbot/atendente/pkg/ports"
)

// Manager orchestrates access to the stored session.
// Safe for concurrent use.
type Manager struct {
	store ports.SessionStore

	mu     sync.Mutex
	logger *slog.Logger
	now    func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithClock overrides the time source used for SavedAt.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a new session Manager over the given store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		logger: logging.NewNop(), // Default to no-op
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Token returns the stored bearer token, or domain.ErrNotAuthenticated.
func (m *Manager) Token(ctx context.Context) (string, error) {
	s, err := m.store.Load(ctx)
	if err != nil {
		return "", err
	}
	return s.Token, nil
}

// Username returns the name the session was opened with.
func (m *Manager) Username(ctx context.Context) (string, error) {
	s, err := m.store.Load(ctx)
	if err != nil {
		return "", err
	}
	return s.Username, nil
}

// Valid checks the stored token's exp claim against now.
// A token that is expired, has no exp claim, or cannot be decoded is cleared and
// domain.ErrTokenExpired is returned. The signature is not verified; only the backend can.
func (m *Manager) Valid(ctx context.Context, now time.Time) error {
	token, err := m.Token(ctx)
	if err != nil {
		return err
	}

	exp, err := Expiry(token)
	if err == nil && now.Before(exp) {
		return nil
	}

	m.logger.Info("Stored token is no longer valid, clearing session", "err", err)
	if cerr := m.Clear(ctx); cerr != nil {
		return cerr
	}
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTokenExpired, err)
	}
	return fmt.Errorf("%w: expired at %s", domain.ErrTokenExpired, exp.Format(time.RFC3339))
}

// Expiry decodes the exp claim of a JWT without verifying its signature.
func Expiry(token string) (time.Time, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser(jwt.WithoutClaimsValidation()).ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("malformed token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed exp claim: %w", err)
	}
	if exp == nil {
		return time.Time{}, errors.New("token has no exp claim")
	}
	return exp.Time, nil
}

// Clear removes the stored session.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Delete(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Login exchanges credentials for a token and stores it with the username.
// Empty fields are rejected before any request is sent.
func (m *Manager) Login(ctx context.Context, auth ports.Authenticator, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.ErrEmptyCredentials
	}

	token, err := auth.Login(ctx, domain.Credentials{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if token == "" {
		return fmt.Errorf("login failed: %w", domain.ErrNotAuthenticated)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.store.Save(ctx, domain.Session{Token: token, Username: username, SavedAt: m.now()}); err != nil {
		return fmt.Errorf("failed to persist session: %w", err)
	}
	m.logger.Debug("Session stored", "username", username)
	return nil
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}
