package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"Warning": slog.LevelWarn,
		" error ": slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestLookupLevelRejectsUnknownNames(t *testing.T) {
	for _, name := range []string{"", "verbose", "INFO+2"} {
		_, ok := LookupLevel(name)
		assert.False(t, ok, "level %q", name)
	}
	lvl, ok := LookupLevel("warning")
	assert.True(t, ok)
	assert.Equal(t, slog.LevelWarn, lvl)
}

func TestLoggerAddsModuleAndVersion(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "masterblog-api", "v1.2.3", "info")

	logger.Info("server started", "port", 5002)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "INFO", rec["level"])
	assert.Equal(t, "server started", rec["msg"])
	assert.Equal(t, "masterblog-api", rec["module"])
	assert.Equal(t, "v1.2.3", rec["version"])
	assert.Equal(t, float64(5002), rec["port"])
	assert.NotContains(t, rec, "source")
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "m", "v", "warn")

	logger.Info("hidden")
	logger.Debug("hidden too")
	assert.Empty(t, buf.String())

	logger.Warn("shown")
	assert.True(t, strings.Contains(buf.String(), "shown"))
}

func TestDebugLoggerAddsSource(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "m", "v", "debug")

	logger.Debug("details")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Contains(t, rec, "source")
}
