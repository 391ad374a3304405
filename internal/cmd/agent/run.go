package agentrun

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iamnno/IES/internal/relay"
	"github.com/iamnno/IES/internal/source"
	"github.com/iamnno/IES/internal/telemetry"
	logpkg "github.com/iamnno/IES/pkg/log"
)

type Options struct {
	AccPath     string
	GpsPath     string
	ParkingPath string
	HubURL      string
	UserID      int64
	Interval    time.Duration
	BatchSize   int
}

// Run replays the recordings and blocks until the aggregator stops, the
// relay fails permanently, or ctx is cancelled.
func Run(ctx context.Context, opts Options, logger logpkg.Logger) error {
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	logger = logger.With(logpkg.Component("agent"))
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.UserID <= 0 {
		return fmt.Errorf("agent: user id is required")
	}

	acc, err := source.OpenCSV(opts.AccPath)
	if err != nil {
		return fmt.Errorf("agent: accelerometer feed: %w", err)
	}
	gps, err := source.OpenCSV(opts.GpsPath)
	if err != nil {
		return fmt.Errorf("agent: gps feed: %w", err)
	}
	parking, err := source.OpenCSV(opts.ParkingPath)
	if err != nil {
		return fmt.Errorf("agent: parking feed: %w", err)
	}
	agg := source.NewAggregator(acc, gps, parking)

	r := relay.New(relay.Options{
		HubURL:    opts.HubURL,
		UserID:    opts.UserID,
		BatchSize: opts.BatchSize,
		Logger:    logger,
	})

	logger.Info("replay starting",
		logpkg.Str("hub", opts.HubURL),
		logpkg.Int64("user", opts.UserID),
		logpkg.Dur("interval", opts.Interval),
		logpkg.Int("acc_rows", acc.Remaining()),
		logpkg.Int("gps_rows", gps.Remaining()),
		logpkg.Int("parking_rows", parking.Remaining()))

	snapshots := make(chan telemetry.Snapshot)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(snapshots)
		ticker := time.NewTicker(opts.Interval)
		defer ticker.Stop()
		for {
			snap, ok := agg.Tick()
			if !ok {
				return nil
			}
			select {
			case snapshots <- snap:
			case <-gctx.Done():
				return gctx.Err()
			}
			select {
			case <-ticker.C:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	g.Go(func() error {
		for snap := range snapshots {
			if err := r.Offer(gctx, snap); err != nil {
				return err
			}
		}
		return r.Flush(gctx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("replay finished")
	return nil
}
