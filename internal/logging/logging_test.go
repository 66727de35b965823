package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeDefaultsAndValidates(t *testing.T) {
	cfg, err := Config{Level: " DEBUG ", MaxBackups: -3}.Normalize()
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.Level)
	require.Equal(t, string(FormatText), cfg.Format)
	require.Equal(t, string(SinkFile), cfg.Sink)
	require.Equal(t, 0, cfg.MaxBackups)

	_, err = Config{Level: "loud"}.Normalize()
	require.Error(t, err)
	_, err = Config{Sink: "syslog"}.Normalize()
	require.Error(t, err)
}

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	cfg := DefaultConfig()
	cfg.File = path
	cfg.Format = string(FormatJSON)

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger, closeFn, err := Init(context.Background(), cfg, InitOptions{Version: "test"})
	require.NoError(t, err)
	logger.Info("hello", "kind", "DTEC")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"hello"`)
	require.Contains(t, string(data), `"app":"blcsview"`)
}

func TestRecorderKeepsWarnings(t *testing.T) {
	var buf bytes.Buffer
	rec := NewRecorder(2, slog.LevelWarn)
	logger := slog.New(Tee(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError}), rec))

	logger.Info("ignored")
	logger.Warn("first")
	logger.Error("parsing dropped file", "file", "b.json", "error", errors.New("bad json"))
	logger.With("tile", "t-1").Error("third")

	entries := rec.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, "parsing dropped file: bad json", entries[0].Message)
	last, ok := rec.Last()
	require.True(t, ok)
	require.Equal(t, "third", last.Message)

	require.NotContains(t, buf.String(), "first", "next handler filters warn")
	require.Contains(t, buf.String(), "bad json")
}
