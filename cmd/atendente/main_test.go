package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/painelbot/atendente"
	"github.com/painelbot/atendente/internal/testutils"
	"github.com/painelbot/atendente/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the root command once, like a fresh process would.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)

	err := rootCmd.ExecuteContext(context.Background())
	if app != nil {
		_ = app.Close()
		app = nil
	}
	return out.String(), err
}

type fakeBackend struct {
	mu      sync.Mutex
	updated map[string]map[string]any
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	token := testutils.SignedToken(t, time.Now().Add(time.Hour))

	b := &fakeBackend{updated: map[string]map[string]any{}}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds domain.Credentials
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password != "pw" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
	})
	mux.HandleFunc("GET /api/menus", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{
			"menu_principal": {"titulo": "Menu Principal", "opcoes": [{"id": "financeiro", "titulo": "Financeiro"}]},
			"financeiro": {"titulo": "Financeiro", "opcoes": [{"id": "0", "titulo": "Voltar"}]},
			"secretaria": {"titulo": "Secretaria", "opcoes": [{"id": "0", "titulo": "Voltar"}]}
		}`)
	})
	mux.HandleFunc("GET /api/fluxo", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"financeiro": {"0": "menu_principal"}, "secretaria": {"0": "menu_principal"}}`)
	})
	mux.HandleFunc("PUT /api/menus/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		b.updated[r.PathValue("id")] = body
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return b, srv
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "atendente version "+strings.TrimSpace(atendente.Version)+"\n", out)
}

func TestCommands_LoginAndEdit(t *testing.T) {
	backend, srv := newFakeBackend(t)
	dir := t.TempDir()
	t.Setenv("ATENDENTE_SESSION_BACKEND", "file")
	t.Setenv("ATENDENTE_SESSION_PATH", filepath.Join(dir, "session.json"))
	cfg := filepath.Join(dir, "missing.yaml")
	common := []string{"--config", cfg, "--api-url", srv.URL}

	_, err := run(t, "", append([]string{"menus", "list"}, common...)...)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated, "menus need a session")

	_, err = run(t, "wrong\n", append([]string{"login", "-q", "-u", "admin"}, common...)...)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	out, err := run(t, "pw\n", append([]string{"login", "-q", "-u", "admin"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as admin.")
	_, err = os.Stat(filepath.Join(dir, "session.json"))
	require.NoError(t, err)

	out, err = run(t, "", append([]string{"menus", "list"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "menu_principal")
	assert.Contains(t, out, "Secretaria")

	out, err = run(t, "", append([]string{"graph", "--format", "tree"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Menu Principal (menu_principal)\n")
	assert.Contains(t, out, "[financeiro: Financeiro] Financeiro (financeiro)")

	_, err = run(t, "", append([]string{"menus", "add-option", "menu_principal", "Nada", "--id", "nada"}, common...)...)
	assert.ErrorIs(t, err, domain.ErrDanglingOption)

	out, err = run(t, "", append([]string{"menus", "add-option", "menu_principal", "Secretaria", "--id", "secretaria"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Step 'menu_principal' saved (2 options).")

	backend.mu.Lock()
	saved := backend.updated["menu_principal"]
	backend.mu.Unlock()
	require.NotNil(t, saved)
	assert.Len(t, saved["opcoes"], 2)

	out, err = run(t, "", append([]string{"logout"}, common...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Session cleared.")
}

func TestReadUploads(t *testing.T) {
	dir := t.TempDir()
	pdf := filepath.Join(dir, "boleto.pdf")
	raw := filepath.Join(dir, "notes")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF-1.4"), 0o600))
	require.NoError(t, os.WriteFile(raw, []byte("plain text"), 0o600))

	files, err := readUploads([]string{pdf, raw})
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "boleto.pdf", files[0].Name)
	assert.Equal(t, "application/pdf", files[0].ContentType)
	assert.Equal(t, "text/plain", files[1].ContentType, "sniffed, without charset")

	_, err = readUploads([]string{filepath.Join(dir, "nope.png")})
	assert.Error(t, err)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "Olá mundo", preview("Olá\n  mundo", 20))
	assert.Equal(t, "abcd…", preview("abcdefgh", 5))
}
