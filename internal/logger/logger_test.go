package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_JSONToFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pagecache.log")
	log, err := New(Config{Level: "warn", Format: "json", OutputFile: path})
	require.NoError(t, err)

	log.Info("dropped")
	log.Warn("fetch attempts exhausted", zap.Uint64("page_id", 7))
	require.NoError(t, log.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 1, "info must be filtered at warn level")

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	require.Equal(t, "WARN", entry["level"])
	require.Equal(t, "fetch attempts exhausted", entry["msg"])
	require.Equal(t, "pagecache", entry["service"])
	require.EqualValues(t, 7, entry["page_id"])
}

func TestNew_DefaultLevelIsInfo(t *testing.T) {
	t.Parallel()

	log, err := New(Config{OutputFile: "stderr"})
	require.NoError(t, err)
	require.True(t, log.Core().Enabled(zap.InfoLevel))
	require.False(t, log.Core().Enabled(zap.DebugLevel))
}

func TestNew_UnknownLevel(t *testing.T) {
	t.Parallel()

	_, err := New(Config{Level: "chatty"})
	require.Error(t, err)
}

func TestNew_ServiceField(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "svc.log")
	log, err := New(Config{OutputFile: path, Service: "pagebench"})
	require.NoError(t, err)
	log.Info("hello")
	require.NoError(t, log.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(raw, &entry))
	require.Equal(t, "pagebench", entry["service"])
}

func TestNew_UnwritableFile(t *testing.T) {
	t.Parallel()

	_, err := New(Config{OutputFile: filepath.Join(t.TempDir(), "missing", "dir", "x.log")})
	require.Error(t, err)
}
