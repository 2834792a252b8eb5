package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/painelbot/atendente"
	"github.com/painelbot/atendente/internal/config"
	"github.com/painelbot/atendente/pkg/adapters/api"
	"github.com/painelbot/atendente/pkg/adapters/file"
	"github.com/painelbot/atendente/pkg/adapters/memory"
	redisAdapter "github.com/painelbot/atendente/pkg/adapters/redis"
	"github.com/painelbot/atendente/pkg/observability"
	"github.com/painelbot/atendente/pkg/persistence/middleware"
	"github.com/painelbot/atendente/pkg/ports"
	"github.com/painelbot/atendente/pkg/session"
)

// App bundles the collaborators every command needs.
type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *observability.Metrics
	Session *session.Manager
	Client  *api.Client
	Locker  ports.Locker

	close func() error
}

// NewApp wires the session store and locker selected by cfg, the metrics registry and the REST client.
func NewApp(cfg config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.New(),
		close:   func() error { return nil },
	}

	var store ports.SessionStore
	switch cfg.Session.Backend {
	case config.BackendMemory:
		store = memory.NewStore()
		app.Locker = memory.NewLocker()
	case config.BackendRedis:
		rs := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redisAdapter.WithPrefix(cfg.Redis.Prefix),
		)
		store = rs
		app.Locker = redisAdapter.NewLocker(rs.Client(), cfg.Redis.Prefix)
		app.close = rs.Close
	default:
		store = file.New(cfg.Session.Path)
		app.Locker = memory.NewLocker()
	}

	if cfg.Session.Key != "" {
		key, err := middleware.ParseKey(cfg.Session.Key)
		if err != nil {
			_ = app.close()
			return nil, err
		}
		encrypt, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			_ = app.close()
			return nil, err
		}
		store = middleware.Chain(store, encrypt)
	}

	app.Session = session.NewManager(store, session.WithLogger(logger))
	app.Client = api.New(cfg.APIURL,
		api.WithSession(app.Session),
		api.WithLogger(logger),
		api.WithMetrics(app.Metrics),
	)
	return app, nil
}

// Dashboard builds the dashboard facade over the app's client.
func (a *App) Dashboard() *atendente.Dashboard {
	opts := []atendente.Option{
		atendente.WithFlow(a.Client),
		atendente.WithExpandAll(a.Config.Graph.ExpandAll),
		atendente.WithLocker(a.Locker),
		atendente.WithMetrics(a.Metrics),
		atendente.WithLogger(a.Logger),
	}
	if len(a.Config.Graph.Terminals) > 0 {
		opts = append(opts, atendente.WithTerminals(a.Config.Terminals()))
	}
	return atendente.New(a.Client, opts...)
}

// RequireSession fails unless a non-expired token is stored. Expired tokens are cleared.
func (a *App) RequireSession(ctx context.Context) error {
	return a.Session.Valid(ctx, time.Now())
}

// Close releases the session backend.
func (a *App) Close() error {
	return a.close()
}
