package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
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
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelWarn,
		"verbose": slog.LevelWarn,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "debug", "json")
	logger.Debug("loaded", "rows", 3)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "loaded", entry["msg"])
	assert.Equal(t, float64(3), entry["rows"])
}

func TestNewTextFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn", "text")
	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown", "table", "t")
	assert.Contains(t, buf.String(), "msg=shown")
	assert.Contains(t, buf.String(), "table=t")
}

func TestSetupInstallsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	Setup(&buf, "info", "text")
	slog.Info("hello")
	assert.Contains(t, buf.String(), "msg=hello")
}
