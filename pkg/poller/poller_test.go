package poller_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/painelbot/atendente/pkg/domain"
	"github.com/painelbot/atendente/pkg/poller"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequence returns the given states in order, repeating the last one.
func sequence(states ...domain.ConnectState) (poller.FetchFunc, *atomic.Int32) {
	var calls atomic.Int32
	return func(ctx context.Context) (domain.ConnectState, error) {
		n := int(calls.Add(1)) - 1
		if n >= len(states) {
			n = len(states) - 1
		}
		return states[n], nil
	}, &calls
}

func TestPoller_StopsOnTerminalState(t *testing.T) {
	fetch, calls := sequence(
		domain.ConnectState{Code: "qr-1"},
		domain.ConnectState{Code: "qr-2"},
		domain.ConnectState{Status: domain.StatusConnected},
	)

	var mu sync.Mutex
	var seen []domain.ConnectState
	p := poller.New(fetch,
		poller.WithInterval(time.Millisecond),
		poller.WithOnState(func(s domain.ConnectState) {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, s)
		}),
	)

	state, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, state.Terminal())
	assert.Equal(t, int32(3), calls.Load())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 3)
	assert.Equal(t, "qr-1", seen[0].Code)
	assert.Equal(t, "qr-2", seen[1].Code)
}

func TestPoller_OpenIsTerminal(t *testing.T) {
	fetch, calls := sequence(domain.ConnectState{Status: "open"})
	state, err := poller.New(fetch).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "open", state.Status)
	assert.Equal(t, int32(1), calls.Load(), "the first fetch happens without waiting")
}

func TestPoller_ErrorsDoNotStopTheLoop(t *testing.T) {
	boom := errors.New("boom")
	var calls atomic.Int32
	fetch := func(ctx context.Context) (domain.ConnectState, error) {
		if calls.Add(1) < 3 {
			return domain.ConnectState{}, boom
		}
		return domain.ConnectState{Status: domain.StatusConnected}, nil
	}

	var errs atomic.Int32
	p := poller.New(fetch,
		poller.WithInterval(time.Millisecond),
		poller.WithOnError(func(err error) {
			assert.ErrorIs(t, err, boom)
			errs.Add(1)
		}),
	)

	_, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), errs.Load())
}

func TestPoller_Stop(t *testing.T) {
	fetch, calls := sequence(domain.ConnectState{Code: "qr"})
	p := poller.New(fetch, poller.WithInterval(time.Millisecond))

	p.Start(context.Background())
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, time.Second, time.Millisecond)

	p.Stop()
	p.Stop()
	after := calls.Load()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, after, calls.Load(), "no fetch after Stop returns")
}

func TestPoller_RunAfterStop(t *testing.T) {
	fetch, calls := sequence(domain.ConnectState{Code: "qr"})
	p := poller.New(fetch, poller.WithInterval(time.Millisecond))
	p.Stop()

	_, err := p.Run(context.Background())
	assert.ErrorIs(t, err, poller.ErrStopped)
	assert.Equal(t, int32(0), calls.Load())
}

func TestPoller_ContextCanceled(t *testing.T) {
	fetch, _ := sequence(domain.ConnectState{Code: "qr"})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := poller.New(fetch, poller.WithInterval(time.Millisecond)).Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
