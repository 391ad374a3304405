package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	HTTPAddr  string          `json:"httpAddr"`
	DataDir   string          `json:"dataDir"`
	Store     StoreConfig     `json:"store"`
	Ingest    IngestConfig    `json:"ingest"`
	Subscribe SubscribeConfig `json:"subscribe"`
}

// StoreConfig selects and tunes the persistence backend.
type StoreConfig struct {
	// Backend is "pebble" or "sqlite".
	Backend string `json:"backend"`
	// Fsync is "always", "interval" or "never" (pebble only).
	Fsync string `json:"fsync"`
}

// IngestConfig bounds one ingest request.
type IngestConfig struct {
	// MaxBatchRecords caps records per POST. Zero means unlimited.
	MaxBatchRecords int `json:"maxBatchRecords"`
}

// SubscribeConfig tunes per-subscriber delivery.
type SubscribeConfig struct {
	BufLen        int `json:"bufLen"`
	SendTimeoutMs int `json:"sendTimeoutMs"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		HTTPAddr: ":8080",
		DataDir:  DefaultDataDir(),
		Store: StoreConfig{
			Backend: "pebble",
			Fsync:   "always",
		},
		Ingest: IngestConfig{
			MaxBatchRecords: 1000,
		},
		Subscribe: SubscribeConfig{
			BufLen:        64,
			SendTimeoutMs: 200,
		},
	}
}

// Load reads configuration from a JSON file. If path is empty, returns
// defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the runtime cannot honor.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case "pebble", "sqlite":
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}
	switch c.Store.Fsync {
	case "always", "interval", "never":
	default:
		return fmt.Errorf("config: unknown fsync mode %q", c.Store.Fsync)
	}
	if c.Ingest.MaxBatchRecords < 0 {
		return fmt.Errorf("config: negative maxBatchRecords %d", c.Ingest.MaxBatchRecords)
	}
	return nil
}
