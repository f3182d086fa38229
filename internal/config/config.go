// Package config loads the YAML configuration of the pagecache commands.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/IvanBrykalov/pagecache/internal/logger"
	"github.com/IvanBrykalov/pagecache/policy"
)

// Store kinds understood by the commands.
const (
	StoreMem    = "mem"
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Config is the top-level configuration document.
type Config struct {
	Cache   CacheConfig   `yaml:"cache"`
	Store   StoreConfig   `yaml:"store"`
	Logger  logger.Config `yaml:"logger"`
	Metrics MetricsConfig `yaml:"metrics"`
	Load    LoadConfig    `yaml:"load"`
}

// CacheConfig mirrors cache.Options.
type CacheConfig struct {
	Capacity         int         `yaml:"capacity"`
	Policy           policy.Kind `yaml:"policy"`
	MaxFetchAttempts int         `yaml:"max_fetch_attempts"`
}

// StoreConfig selects the backing store. Path is a file path for "file"
// and a DSN for "sqlite"; it is ignored for "mem".
type StoreConfig struct {
	Kind string `yaml:"kind"`
	Path string `yaml:"path"`
}

// MetricsConfig controls the Prometheus endpoint. An empty Addr disables it.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// LoadConfig describes the synthetic workload of pagebench.
type LoadConfig struct {
	Workers  int           `yaml:"workers"`
	Pages    uint64        `yaml:"pages"`
	ReadPct  int           `yaml:"read_pct"`
	Duration time.Duration `yaml:"duration"`
	// Zipf skews page ids towards low values when > 1; 0 means uniform.
	Zipf float64 `yaml:"zipf"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Cache: CacheConfig{
			Capacity:         1024,
			Policy:           policy.LRU,
			MaxFetchAttempts: 8,
		},
		Store:  StoreConfig{Kind: StoreMem},
		Logger: logger.Config{Level: "info", Format: "console", OutputFile: "stderr", Service: "pagebench"},
		Load: LoadConfig{
			Workers:  8,
			Pages:    4096,
			ReadPct:  90,
			Duration: 10 * time.Second,
			Zipf:     1.1,
		},
	}
}

// Load reads path over the defaults and validates the result.
// Keys missing from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := Parse(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document into cfg and validates it. Unknown keys
// are rejected.
func Parse(raw []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return cfg.Validate()
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Cache.Capacity <= 0:
		return errors.New("cache.capacity must be > 0")
	case c.Cache.MaxFetchAttempts <= 0:
		return errors.New("cache.max_fetch_attempts must be > 0")
	case c.Load.Workers <= 0:
		return errors.New("load.workers must be > 0")
	case c.Load.Pages == 0:
		return errors.New("load.pages must be > 0")
	case c.Load.ReadPct < 0 || c.Load.ReadPct > 100:
		return fmt.Errorf("load.read_pct %d out of [0,100]", c.Load.ReadPct)
	case c.Load.Zipf != 0 && c.Load.Zipf <= 1:
		return fmt.Errorf("load.zipf %v must be 0 (uniform) or > 1", c.Load.Zipf)
	}
	switch c.Store.Kind {
	case StoreMem:
	case StoreFile, StoreSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for store %q", c.Store.Kind)
		}
	default:
		return fmt.Errorf("unknown store.kind %q (use mem, file or sqlite)", c.Store.Kind)
	}
	return nil
}
