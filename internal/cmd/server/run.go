package serverrun

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	cfgpkg "github.com/iamnno/IES/internal/config"
	"github.com/iamnno/IES/internal/runtime"
	httpserver "github.com/iamnno/IES/internal/server/http"
	logpkg "github.com/iamnno/IES/pkg/log"
)

func getenvDefault(key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

// getenv is a seam so tests can stub the environment.
var getenv = func(key string) string { return os.Getenv(key) }

type Options struct {
	// ConfigPath optionally points at a JSON config file; flags and env
	// overlay whatever it contains.
	ConfigPath   string
	HTTPAddr     string
	DataDir      string
	StoreBackend string
	Fsync        string
}

// Run starts the hub HTTP server and blocks until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	// Be robust to callers that don't pass a signal-aware context
	// or if signal delivery needs to be observed here. We layer a
	// local signal context over the provided one.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := cfgpkg.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	cfgpkg.FromEnv(&cfg)
	if opts.HTTPAddr != "" {
		cfg.HTTPAddr = opts.HTTPAddr
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}
	if opts.StoreBackend != "" {
		cfg.Store.Backend = opts.StoreBackend
	}
	if opts.Fsync != "" {
		cfg.Store.Fsync = opts.Fsync
	}

	// Build process-wide logger using env/ApplyConfig; defaults: level=info, format=text
	logCfg := &logpkg.Config{
		Level:  getenvDefault("IES_LOG_LEVEL", "info"),
		Format: getenvDefault("IES_LOG_FORMAT", "text"),
	}
	procLogger, err := logpkg.ApplyConfig(logCfg)
	if err != nil {
		// Fallback to a sane default
		lvl := logpkg.InfoLevel
		if l, e := logpkg.ParseLevel(logCfg.Level); e == nil {
			lvl = l
		}
		procLogger = logpkg.NewLogger(logpkg.WithLevel(lvl), logpkg.WithFormatter(&logpkg.TextFormatter{}))
	}

	// Redirect stdlib logs (e.g., Pebble) to our logger
	logpkg.RedirectStdLog(procLogger)

	rt, err := runtime.Open(runtime.Options{Config: cfg, Logger: procLogger})
	if err != nil {
		return err
	}
	defer rt.Close()

	procLogger.Info("Starting IES hub",
		logpkg.Str("http", cfg.HTTPAddr),
		logpkg.Str("data_dir", cfg.DataDir),
		logpkg.Str("backend", cfg.Store.Backend),
		logpkg.Str("level", logCfg.Level),
		logpkg.Str("format", logCfg.Format),
	)

	hsrv := httpserver.New(rt, procLogger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := hsrv.ListenAndServe(sctx, cfg.HTTPAddr); err != nil && sctx.Err() == nil {
			log.Printf("http error: %v", err)
		}
	}()

	<-sctx.Done()
	// Shut the server down before closing the runtime/DB to avoid races.
	hsrv.Close()
	wg.Wait()
	return nil
}
