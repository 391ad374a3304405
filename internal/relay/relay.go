package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/iamnno/IES/internal/telemetry"
	"github.com/iamnno/IES/pkg/id"
	logpkg "github.com/iamnno/IES/pkg/log"
)

// RetryPolicy controls resend behavior for a failed batch POST.
type RetryPolicy struct {
	Base        time.Duration
	Cap         time.Duration
	Factor      float64
	MaxAttempts int
}

// DefaultRetryPolicy matches the hub-side defaults: exponential from
// 200ms, capped at 30s, five attempts.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Base: 200 * time.Millisecond, Cap: 30 * time.Second, Factor: 2.0, MaxAttempts: 5}
}

func computeBackoff(pol RetryPolicy, attempt int) time.Duration {
	base := pol.Base
	if base <= 0 {
		base = 200 * time.Millisecond
	}
	factor := pol.Factor
	if factor <= 0 {
		factor = 2.0
	}
	delay := float64(base) * math.Pow(factor, float64(attempt-1))
	d := time.Duration(delay)
	if pol.Cap > 0 && d > pol.Cap {
		d = pol.Cap
	}
	return d
}

// Options configures a Relay.
type Options struct {
	// HubURL is the base URL of the hub, e.g. "http://localhost:8080".
	HubURL string
	// UserID is the owner id stamped on every forwarded record.
	UserID int64
	// BatchSize triggers a send once this many records are pending.
	BatchSize int
	Labeler   Labeler
	Policy    RetryPolicy
	Client    *http.Client
	Logger    logpkg.Logger
}

// Relay accumulates labeled wire records and ships them in batches.
// Not safe for concurrent use; one goroutine owns it.
type Relay struct {
	hubURL    string
	userID    int64
	batchSize int
	labeler   Labeler
	policy    RetryPolicy
	client    *http.Client
	idgen     *id.Generator
	logger    logpkg.Logger

	pending []telemetry.WireRecord
}

// New builds a Relay. Zero options fall back to defaults.
func New(opts Options) *Relay {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 25
	}
	if opts.Labeler == nil {
		opts.Labeler = DefaultLabeler()
	}
	if opts.Policy.MaxAttempts <= 0 {
		opts.Policy = DefaultRetryPolicy()
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = logpkg.NewLogger()
	}
	return &Relay{
		hubURL:    opts.HubURL,
		userID:    opts.UserID,
		batchSize: opts.BatchSize,
		labeler:   opts.Labeler,
		policy:    opts.Policy,
		client:    opts.Client,
		idgen:     id.NewGenerator(),
		logger:    opts.Logger.With(logpkg.Component("relay")),
	}
}

// Offer labels snap, wraps it in the wire schema and queues it. A full
// batch is sent before Offer returns.
func (r *Relay) Offer(ctx context.Context, snap telemetry.Snapshot) error {
	rec := telemetry.WireRecord{
		RoadState: r.labeler.Label(snap),
		AgentData: telemetry.AgentData{
			UserID:        r.userID,
			Accelerometer: snap.Accelerometer,
			Gps:           snap.Gps,
			Timestamp:     telemetry.Timestamp{Time: snap.CapturedAt},
		},
	}
	r.pending = append(r.pending, rec)
	if len(r.pending) >= r.batchSize {
		return r.Flush(ctx)
	}
	return nil
}

// Flush sends the pending records, if any. The pending buffer is cleared
// only on success so a later Flush retries the same records.
func (r *Relay) Flush(ctx context.Context) error {
	if len(r.pending) == 0 {
		return nil
	}
	if err := r.send(ctx, r.pending); err != nil {
		return err
	}
	r.pending = r.pending[:0]
	return nil
}

// Pending reports the number of queued, unsent records.
func (r *Relay) Pending() int { return len(r.pending) }

func (r *Relay) send(ctx context.Context, batch []telemetry.WireRecord) error {
	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("relay: encode batch: %w", err)
	}
	batchID := r.idgen.Next().String()
	url := r.hubURL + "/v1/telemetry"

	var lastErr error
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("relay: build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Batch-Id", batchID)

		resp, err := r.client.Do(req)
		if err == nil {
			status := resp.StatusCode
			_, _ = io.Copy(io.Discard, resp.Body)
			_ = resp.Body.Close()
			if status >= 200 && status < 300 {
				r.logger.Debug("batch delivered",
					logpkg.Str("batch_id", batchID),
					logpkg.Int("records", len(batch)),
					logpkg.Int("attempt", attempt))
				return nil
			}
			lastErr = fmt.Errorf("relay: hub returned status %d", status)
		} else {
			lastErr = fmt.Errorf("relay: post batch: %w", err)
		}

		if attempt == r.policy.MaxAttempts {
			break
		}
		delay := computeBackoff(r.policy, attempt)
		r.logger.Warn("batch send failed, retrying",
			logpkg.Str("batch_id", batchID),
			logpkg.Int("attempt", attempt),
			logpkg.Dur("backoff", delay),
			logpkg.Err(lastErr))
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Errorf("relay: batch %s undelivered after %d attempts: %w", batchID, r.policy.MaxAttempts, lastErr)
}
