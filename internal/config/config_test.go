package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/painelbot/atendente/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "atendente.yaml", `
api_url: https://bot.example.com
log_level: debug
session:
  backend: redis
redis:
  addr: cache:6379
  db: 2
server:
  port: "9090"
graph:
  expand_all: true
  terminals: [fim, encerrar_atendimento]
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://bot.example.com", cfg.APIURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, BackendRedis, cfg.Session.Backend)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, "atendente:", cfg.Redis.Prefix, "unset fields keep their default")
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.Graph.ExpandAll)
	assert.True(t, cfg.Terminals().Has("fim"))
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, "atendente.json", `{"api_url": "http://api:3000", "session": {"backend": "memory"}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://api:3000", cfg.APIURL)
	assert.Equal(t, BackendMemory, cfg.Session.Backend)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"Malformed", "api_url: [unclosed"},
		{"Unknown Backend", "session:\n  backend: etcd"},
		{"Empty URL", `api_url: ""`},
		{"Redis Without Addr", "session:\n  backend: redis\nredis:\n  addr: \"\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "atendente.yaml", tt.content))
			assert.Error(t, err)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"ATENDENTE_API_URL":         "http://env:3000",
		"ATENDENTE_SESSION_BACKEND": "memory",
		"ATENDENTE_REDIS_DB":        "3",
		"ATENDENTE_EXPAND_ALL":      "true",
		"ATENDENTE_TERMINALS":       "fim, , encerrar",
		"ATENDENTE_PORT":            "7000",
		"ATENDENTE_LOG_FORMAT":      "json",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.applyEnv(lookup))
	assert.Equal(t, "http://env:3000", cfg.APIURL)
	assert.Equal(t, BackendMemory, cfg.Session.Backend)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.True(t, cfg.Graph.ExpandAll)
	assert.Equal(t, []string{"fim", "encerrar"}, cfg.Graph.Terminals)
	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestApplyEnv_Invalid(t *testing.T) {
	for _, key := range []string{"ATENDENTE_REDIS_DB", "ATENDENTE_EXPAND_ALL"} {
		cfg := Default()
		err := cfg.applyEnv(func(k string) (string, bool) {
			if k == key {
				return "not-a-value", true
			}
			return "", false
		})
		assert.Error(t, err, key)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "atendente.yaml", "api_url: http://file:3000")
	t.Setenv("ATENDENTE_API_URL", "http://env:3000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://env:3000", cfg.APIURL)
}

func TestTerminals_Default(t *testing.T) {
	assert.Equal(t, domain.DefaultTerminals(), Default().Terminals())
}
