package runtime

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	cfgpkg "github.com/iamnno/IES/internal/config"
	telsvc "github.com/iamnno/IES/internal/services/telemetry"
	"github.com/iamnno/IES/internal/store"
	"github.com/iamnno/IES/internal/subscribe"
	logpkg "github.com/iamnno/IES/pkg/log"
)

// Options for building the Runtime.
type Options struct {
	Config cfgpkg.Config
	Logger logpkg.Logger
}

// Runtime wires storage, fan-out and services for a single-node hub.
type Runtime struct {
	store    store.Store
	registry *subscribe.Registry
	service  *telsvc.Service
	config   cfgpkg.Config
	logger   logpkg.Logger
}

// Open validates the configuration, opens the selected store backend and
// wires the ingest service.
func Open(opts Options) (*Runtime, error) {
	if err := opts.Config.Validate(); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = logpkg.NewLogger()
	}
	logger := opts.Logger.With(logpkg.Component("runtime"))

	var (
		st  store.Store
		err error
	)
	switch opts.Config.Store.Backend {
	case "pebble":
		mode, perr := store.ParseFsyncMode(opts.Config.Store.Fsync)
		if perr != nil {
			return nil, perr
		}
		st, err = store.OpenPebble(store.PebbleOptions{
			DataDir: opts.Config.DataDir,
			Fsync:   mode,
		})
	case "sqlite":
		st, err = store.OpenSQLite(filepath.Join(opts.Config.DataDir, "telemetry.db"))
	default:
		return nil, fmt.Errorf("runtime: unknown store backend %q", opts.Config.Store.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("runtime: open store: %w", err)
	}

	registry := subscribe.NewRegistry(subscribe.Options{
		SendTimeout: time.Duration(opts.Config.Subscribe.SendTimeoutMs) * time.Millisecond,
		Logger:      opts.Logger,
	})
	service := telsvc.NewService(telsvc.Options{
		Store:           st,
		Registry:        registry,
		MaxBatchRecords: opts.Config.Ingest.MaxBatchRecords,
		Logger:          opts.Logger,
	})

	logger.Info("runtime open",
		logpkg.Str("backend", opts.Config.Store.Backend),
		logpkg.Str("data_dir", opts.Config.DataDir))
	return &Runtime{
		store:    st,
		registry: registry,
		service:  service,
		config:   opts.Config,
		logger:   logger,
	}, nil
}

// Close closes underlying resources.
func (r *Runtime) Close() error {
	if r.store == nil {
		return nil
	}
	return r.store.Close()
}

// CheckHealth performs a simple storage round trip.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	if r.store == nil {
		return errors.New("store not open")
	}
	if _, err := r.store.Get(ctx, 1); err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	return nil
}

// Store exposes the underlying store (internal use only).
func (r *Runtime) Store() store.Store { return r.store }

// Registry returns the live subscriber registry.
func (r *Runtime) Registry() *subscribe.Registry { return r.registry }

// Telemetry returns the ingest service.
func (r *Runtime) Telemetry() *telsvc.Service { return r.service }

// Config returns the runtime configuration.
func (r *Runtime) Config() cfgpkg.Config { return r.config }
