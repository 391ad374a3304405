package config

import (
	"os"
	"strconv"
)

// FromEnv overlays IES_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("IES_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("IES_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("IES_STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("IES_STORE_FSYNC"); v != "" {
		cfg.Store.Fsync = v
	}
	if v := os.Getenv("IES_INGEST_MAX_BATCH_RECORDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Ingest.MaxBatchRecords = n
		}
	}
	if v := os.Getenv("IES_SUBSCRIBE_BUF_LEN"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Subscribe.BufLen = n
		}
	}
	if v := os.Getenv("IES_SUBSCRIBE_SEND_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Subscribe.SendTimeoutMs = n
		}
	}
}
