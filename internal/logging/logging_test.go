package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":      slog.LevelInfo,
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"Warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestNew_WritesLogFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "inkframe.log")
	l, err := New(Options{Level: "info", Quiet: true, File: file})
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("cycle complete", "app", "gallery")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), `msg="cycle complete" app=gallery`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNew_LevelVarIsLive(t *testing.T) {
	var buf bytes.Buffer
	file := filepath.Join(t.TempDir(), "inkframe.log")
	l, err := New(Options{Level: "warn", Terminal: &buf, File: file})
	require.NoError(t, err)
	defer l.Close()

	l.Info("before")
	l.Level.Set(slog.LevelDebug)
	l.Debug("after")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "before")
	assert.Contains(t, string(data), "after")
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(Options{Level: "chatty", Quiet: true})
	assert.Error(t, err)
}

func TestToJournalKey(t *testing.T) {
	assert.Equal(t, "CYCLE_ID", toJournalKey("cycle_id"))
	assert.Equal(t, "NEXT_WAKE", toJournalKey("next-wake"))
}
