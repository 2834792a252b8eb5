package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/painelbot/atendente/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWriter_RenamesErrorKey(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWriter(&buf, slog.LevelInfo)

	logger.Info("save failed", "error", errors.New("boom"))
	logger.Debug("hidden")

	out := buf.String()
	assert.Contains(t, out, "err=boom")
	assert.NotContains(t, out, "error=")
	assert.NotContains(t, out, "hidden")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := logging.ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := logging.ParseLevel("verbose")
	assert.Error(t, err)
}

func TestNewWithOptions_RedactsCredentials(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithOptions(&buf, logging.Options{Level: slog.LevelDebug})

	logger.Debug("login", "username", "admin", "senha", "hunter2", "Token", "eyJhbGciOi")

	out := buf.String()
	assert.Contains(t, out, "username=admin")
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "eyJhbGciOi")
	assert.Contains(t, out, "senha="+logging.Redacted)
}

func TestNewWithOptions_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithOptions(&buf, logging.Options{Level: slog.LevelInfo, Format: logging.FormatJSON})

	logger.Warn("step save failed", "step", "financeiro", "error", errors.New("boom"), "token", "abc")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "step save failed", entry["msg"])
	assert.Equal(t, "financeiro", entry["step"])
	assert.Equal(t, "boom", entry["err"])
	assert.Equal(t, logging.Redacted, entry["token"])
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]string{"": logging.FormatText, "TEXT": logging.FormatText, " json": logging.FormatJSON} {
		got, err := logging.ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := logging.ParseFormat("xml")
	assert.Error(t, err)
}
