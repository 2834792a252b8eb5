package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/painelbot/atendente/internal/logging"
	"github.com/painelbot/atendente/pkg/domain"
)

// DefaultInterval is the pause between two connection-state fetches.
const DefaultInterval = 5 * time.Second

// ErrStopped is returned by Run when Stop ended the loop before a terminal state.
var ErrStopped = errors.New("poller stopped")

// FetchFunc returns the current connection state of one instance.
type FetchFunc func(ctx context.Context) (domain.ConnectState, error)

// Poller repeats a fetch until the state is terminal, Stop is called or the context ends.
type Poller struct {
	fetch    FetchFunc
	interval time.Duration
	onState  func(domain.ConnectState)
	onError  func(error)
	logger   *slog.Logger

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval overrides DefaultInterval. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithOnState registers the callback receiving every fetched state, terminal included.
func WithOnState(fn func(domain.ConnectState)) Option {
	return func(p *Poller) {
		p.onState = fn
	}
}

// WithOnError registers the callback receiving fetch failures. Failures do not stop the loop.
func WithOnError(fn func(error)) Option {
	return func(p *Poller) {
		p.onError = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Poller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Poller around fetch.
func New(fetch FetchFunc, opts ...Option) *Poller {
	p := &Poller{
		fetch:    fetch,
		interval: DefaultInterval,
		onState:  func(domain.ConnectState) {},
		onError:  func(error) {},
		logger:   logging.NewNop(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run fetches immediately, then once per interval, and blocks until the loop ends.
// It returns the terminal state, ErrStopped after Stop, or the context error.
func (p *Poller) Run(ctx context.Context) (domain.ConnectState, error) {
	if state, ok := p.poll(ctx); ok {
		return state, nil
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return domain.ConnectState{}, ErrStopped
		case <-ctx.Done():
			return domain.ConnectState{}, ctx.Err()
		case <-ticker.C:
			if state, ok := p.poll(ctx); ok {
				return state, nil
			}
		}
	}
}

// Start runs the loop in the background. Use Stop to end it and wait for it.
func (p *Poller) Start(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if _, err := p.Run(ctx); err != nil && !errors.Is(err, ErrStopped) {
			p.logger.Debug("Poller ended", "err", err)
		}
	}()
}

// Stop ends the loop and waits for a background run to return. It is safe to call Stop multiple times.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.done) })
	p.wg.Wait()
}

// poll performs one fetch and reports whether the state is terminal.
func (p *Poller) poll(ctx context.Context) (domain.ConnectState, bool) {
	select {
	case <-p.done:
		return domain.ConnectState{}, false
	default:
	}

	state, err := p.fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("Connection state fetch failed", "err", err)
			p.onError(err)
		}
		return domain.ConnectState{}, false
	}
	p.onState(state)
	return state, state.Terminal()
}
