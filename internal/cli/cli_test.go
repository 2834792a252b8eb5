package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/painelbot/atendente/internal/config"
	"github.com/painelbot/atendente/internal/logging"
	"github.com/painelbot/atendente/pkg/adapters/file"
	"github.com/painelbot/atendente/pkg/adapters/memory"
	redisAdapter "github.com/painelbot/atendente/pkg/adapters/redis"
	"github.com/painelbot/atendente/pkg/domain"
	"github.com/painelbot/atendente/pkg/flowgraph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp_Backends(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name      string
		cfg       func(c *config.Config)
		wantStore any
		wantLock  any
	}{
		{"File", func(c *config.Config) { c.Session.Path = filepath.Join(t.TempDir(), "s.json") }, &file.Store{}, &memory.Locker{}},
		{"Memory", func(c *config.Config) { c.Session.Backend = config.BackendMemory }, &memory.Store{}, &memory.Locker{}},
		{"Redis", func(c *config.Config) {
			c.Session.Backend = config.BackendRedis
			c.Redis.Addr = mr.Addr()
		}, &redisAdapter.Store{}, &redisAdapter.Locker{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.cfg(&cfg)
			app, err := NewApp(cfg, logging.NewNop())
			require.NoError(t, err)
			t.Cleanup(func() { _ = app.Close() })

			assert.IsType(t, tt.wantStore, app.Session.Store())
			assert.IsType(t, tt.wantLock, app.Locker)
			assert.NotNil(t, app.Dashboard())

			// No session stored yet.
			assert.ErrorIs(t, app.RequireSession(context.Background()), domain.ErrNotAuthenticated)
		})
	}
}

func TestNewApp_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Session.Backend = "etcd"
	_, err := NewApp(cfg, logging.NewNop())
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	_, err := NewLogger("loud", "", false)
	assert.Error(t, err)

	logger, err := NewLogger("loud", "", true)
	require.NoError(t, err, "--debug wins over the configured level")
	assert.True(t, logger.Enabled(context.Background(), -4))

	logger, err = NewLogger("warn", "json", false)
	require.NoError(t, err)
	assert.False(t, logger.Enabled(context.Background(), 0))

	_, err = NewLogger("info", "xml", true)
	assert.Error(t, err, "an unknown format fails even with --debug")
}

func TestReadLine_SharedReader(t *testing.T) {
	in := strings.NewReader("admin\nsecret\n")
	var out bytes.Buffer

	user, err := ReadLine(in, &out, "Username: ")
	require.NoError(t, err)
	pass, err := ReadSecret(in, &out, "Password: ")
	require.NoError(t, err)

	assert.Equal(t, "admin", user)
	assert.Equal(t, "secret", pass)
	assert.Equal(t, "Username: Password: ", out.String())

	last, err := ReadLine(strings.NewReader("no newline"), &out, "")
	require.NoError(t, err)
	assert.Equal(t, "no newline", last)

	_, err = ReadLine(strings.NewReader(""), &out, "")
	assert.Error(t, err)
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, []string{"ID", "TITLE"}, [][]string{{"1", "Financeiro"}, {"10", "Sair"}}))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID  TITLE", lines[0])
	assert.Equal(t, "10  Sair", lines[2])
}

func TestDescribe(t *testing.T) {
	assert.Contains(t, Describe(domain.ErrTokenExpired), "atendente login")
	assert.Contains(t, Describe(domain.ErrUnavailable), "api_url")
	assert.Equal(t, "boom", Describe(errors.New("boom")))
}

func sampleGraph(t *testing.T) *flowgraph.Graph {
	t.Helper()
	g, err := flowgraph.Build(domain.StepMap{
		domain.RootStepID: {ID: domain.RootStepID, Title: "Menu", Options: []domain.Option{
			{ID: "1", Title: "Financeiro", Target: "financeiro"},
			{ID: "2", Target: "sumido"},
		}},
		"financeiro": {ID: "financeiro", Options: []domain.Option{{ID: "0", Target: domain.RootStepID}}},
	})
	require.NoError(t, err)
	return g
}

func TestWriteGraph(t *testing.T) {
	g := sampleGraph(t)

	var buf bytes.Buffer
	require.NoError(t, WriteGraph(&buf, g, FormatTree, ""))
	tree := buf.String()
	assert.Contains(t, tree, "Menu (menu_principal)\n")
	assert.Contains(t, tree, "  [1: Financeiro] Financeiro (financeiro)\n")
	assert.Contains(t, tree, "    [0] Menu ↺\n", "loops are not expanded again")
	assert.Contains(t, tree, "! menu_principal[2] -> sumido")

	buf.Reset()
	require.NoError(t, WriteGraph(&buf, g, FormatMermaid, "financeiro"))
	assert.Contains(t, buf.String(), "class financeiro selected;")

	buf.Reset()
	require.NoError(t, WriteGraph(&buf, g, FormatJSON, ""))
	assert.Contains(t, buf.String(), `"root": "menu_principal"`)

	assert.Error(t, WriteGraph(&buf, g, "svg", ""))
}

type fakeConnection struct {
	states []domain.ConnectState
	calls  atomic.Int32
}

func (f *fakeConnection) ConnectionState(ctx context.Context, name string) (domain.ConnectState, error) {
	n := int(f.calls.Add(1)) - 1
	if n >= len(f.states) {
		n = len(f.states) - 1
	}
	return f.states[n], nil
}

func TestWatchConnection(t *testing.T) {
	png := base64.StdEncoding.EncodeToString([]byte("\x89PNG"))
	src := &fakeConnection{states: []domain.ConnectState{
		{Code: "qr-1", Base64: "data:image/png;base64," + png, Pairing: "ABCD-1234"},
		{Code: "qr-1", Base64: "data:image/png;base64," + png},
		{Code: "qr-2", Base64: "data:image/png;base64," + png},
		{Status: "open"},
	}}
	qrPath := filepath.Join(t.TempDir(), "qr.png")

	var out bytes.Buffer
	err := WatchConnection(context.Background(), src, "escola", &out, ConnectOptions{Interval: time.Millisecond, QRPath: qrPath})
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Pairing code: ABCD-1234")
	assert.Equal(t, 2, strings.Count(text, "QR code saved"), "an unchanged QR is not announced again")
	assert.Contains(t, text, "Instance 'escola' connected.")

	data, err := os.ReadFile(qrPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), data)
}

func TestWatchConnection_Canceled(t *testing.T) {
	src := &fakeConnection{states: []domain.ConnectState{{Code: "qr"}}}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	var out bytes.Buffer
	err := WatchConnection(ctx, src, "escola", &out, ConnectOptions{Interval: time.Millisecond})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Contains(t, out.String(), "QR data: qr")
}

func TestNewApp_SessionKey(t *testing.T) {
	cfg := config.Default()
	cfg.Session.Backend = config.BackendMemory

	cfg.Session.Key = "%%%"
	_, err := NewApp(cfg, logging.NewNop())
	assert.Error(t, err)

	cfg.Session.Key = base64.StdEncoding.EncodeToString(make([]byte, 32))
	app, err := NewApp(cfg, logging.NewNop())
	require.NoError(t, err)
	assert.NotEqual(t, "*memory.Store", fmt.Sprintf("%T", app.Session.Store()), "store is wrapped")

	ctx := context.Background()
	require.NoError(t, app.Session.Store().Save(ctx, domain.Session{Token: "tok", Username: "admin"}))
	got, err := app.Session.Store().Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)
}
