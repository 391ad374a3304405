package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/iamnno/IES/internal/store"
	"github.com/iamnno/IES/internal/subscribe"
	tel "github.com/iamnno/IES/internal/telemetry"
	logpkg "github.com/iamnno/IES/pkg/log"
)

// ErrMalformedBatch rejects an ingest request before anything is stored.
var ErrMalformedBatch = errors.New("telemetry: malformed batch")

// Service binds the store and the subscriber registry behind the ingest
// contract.
type Service struct {
	store    store.Store
	registry *subscribe.Registry
	maxBatch int
	logger   logpkg.Logger

	mu       sync.Mutex
	ownerSeq map[int64]*sync.Mutex
}

// Options configures a Service.
type Options struct {
	Store    store.Store
	Registry *subscribe.Registry
	// MaxBatchRecords caps one ingest request. Zero means unlimited.
	MaxBatchRecords int
	Logger          logpkg.Logger
}

// NewService wires a Service from its dependencies.
func NewService(opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = logpkg.NewLogger()
	}
	return &Service{
		store:    opts.Store,
		registry: opts.Registry,
		maxBatch: opts.MaxBatchRecords,
		logger:   opts.Logger.With(logpkg.Component("telemetry")),
		ownerSeq: make(map[int64]*sync.Mutex),
	}
}

// ownerLock returns the ordering mutex for one owner, creating it on
// first use. Holding it across append and broadcast keeps per-owner
// delivery order equal to identity order under concurrent ingests.
func (s *Service) ownerLock(owner int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.ownerSeq[owner]
	if !ok {
		l = &sync.Mutex{}
		s.ownerSeq[owner] = l
	}
	return l
}

// Ingest validates batch as a whole, then appends and broadcasts each
// record in order. The returned identities correspond to the records
// appended so far; on a persistence error they cover the prefix that
// made it in.
func (s *Service) Ingest(ctx context.Context, batch []tel.WireRecord) ([]int64, error) {
	if len(batch) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrMalformedBatch)
	}
	if s.maxBatch > 0 && len(batch) > s.maxBatch {
		return nil, fmt.Errorf("%w: %d records exceeds limit %d", ErrMalformedBatch, len(batch), s.maxBatch)
	}
	for i, w := range batch {
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrMalformedBatch, i, err)
		}
	}

	ids := make([]int64, 0, len(batch))
	for i, w := range batch {
		rec := tel.RecordFromWire(w)
		lock := s.ownerLock(rec.UserID)
		lock.Lock()
		id, err := s.store.Append(ctx, rec)
		if err != nil {
			lock.Unlock()
			return ids, fmt.Errorf("telemetry: append record %d: %w", i, err)
		}
		rec.ID = id
		ids = append(ids, id)
		s.registry.Broadcast(rec.UserID, rec)
		lock.Unlock()
	}
	s.logger.Debug("batch ingested", logpkg.Int("records", len(ids)))
	return ids, nil
}

// Get returns one stored record by identity.
func (s *Service) Get(ctx context.Context, id int64) (tel.Record, error) {
	return s.store.Get(ctx, id)
}

// List returns every stored record in identity order.
func (s *Service) List(ctx context.Context) ([]tel.Record, error) {
	return s.store.List(ctx)
}

// Update replaces the payload of an existing record. The replacement is
// validated like an ingested record; updates do not fan out.
func (s *Service) Update(ctx context.Context, id int64, w tel.WireRecord) (tel.Record, error) {
	if err := w.Validate(); err != nil {
		return tel.Record{}, fmt.Errorf("%w: %v", ErrMalformedBatch, err)
	}
	return s.store.Update(ctx, id, tel.RecordFromWire(w))
}

// Delete removes a record and returns it.
func (s *Service) Delete(ctx context.Context, id int64) (tel.Record, error) {
	return s.store.Delete(ctx, id)
}

// PurgeOlderThan removes every record captured before cutoff and reports
// how many were removed.
func (s *Service) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	n, err := s.store.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("records purged", logpkg.Int("count", n), logpkg.Str("cutoff", cutoff.UTC().Format(time.RFC3339)))
	}
	return n, nil
}
