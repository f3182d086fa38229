package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/pagecache/policy"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	t.Parallel()
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pagebench.yaml")
	doc := `
cache:
  capacity: 64
  policy: MRU
store:
  kind: sqlite
  path: file:pages.db
logger:
  level: debug
load:
  duration: 250ms
  zipf: 0
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 64, cfg.Cache.Capacity)
	require.Equal(t, policy.MRU, cfg.Cache.Policy)
	require.Equal(t, 8, cfg.Cache.MaxFetchAttempts, "unset keys keep defaults")
	require.Equal(t, StoreSQLite, cfg.Store.Kind)
	require.Equal(t, "file:pages.db", cfg.Store.Path)
	require.Equal(t, "debug", cfg.Logger.Level)
	require.Equal(t, "console", cfg.Logger.Format)
	require.Equal(t, "pagebench", cfg.Logger.Service)
	require.Equal(t, 250*time.Millisecond, cfg.Load.Duration)
	require.Zero(t, cfg.Load.Zipf)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestParse_EmptyDocumentKeepsDefaults(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.NoError(t, Parse(nil, &cfg))
	require.Equal(t, DefaultConfig(), cfg)
}

func TestParse_Rejects(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"unknown key":   "cache:\n  size: 3\n",
		"bad policy":    "cache:\n  policy: clock\n",
		"zero capacity": "cache:\n  capacity: 0\n",
		"zero attempts": "cache:\n  max_fetch_attempts: 0\n",
		"unknown store": "store:\n  kind: s3\n",
		"file no path":  "store:\n  kind: file\n",
		"read pct":      "load:\n  read_pct: 101\n",
		"flat zipf":     "load:\n  zipf: 0.5\n",
		"no workers":    "load:\n  workers: 0\n",
		"bad duration":  "load:\n  duration: soon\n",
		"not a mapping": "- a\n- b\n",
	}
	for name, doc := range cases {
		cfg := DefaultConfig()
		require.Error(t, Parse([]byte(doc), &cfg), name)
	}
}
