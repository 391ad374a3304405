package store

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/iamnno/IES/internal/telemetry"
)

// FsyncMode defines durability behavior for committed writes.
type FsyncMode int

const (
	// FsyncAlways requests a WAL fsync on each committed batch.
	FsyncAlways FsyncMode = iota
	// FsyncInterval lets Pebble coalesce WAL syncs within the configured
	// window, trading a little durability latency for throughput.
	FsyncInterval
	// FsyncNever leaves syncing entirely to Pebble's own policies.
	FsyncNever
)

// ParseFsyncMode maps the config/flag spelling to an FsyncMode.
func ParseFsyncMode(s string) (FsyncMode, error) {
	switch s {
	case "", "always":
		return FsyncAlways, nil
	case "interval":
		return FsyncInterval, nil
	case "never":
		return FsyncNever, nil
	default:
		return FsyncAlways, fmt.Errorf("store: invalid fsync mode %q (use always|interval|never)", s)
	}
}

// PebbleOptions configures the Pebble backend.
type PebbleOptions struct {
	DataDir       string
	Fsync         FsyncMode
	FsyncInterval time.Duration
}

// Pebble is the default Store backend.
type Pebble struct {
	db        *pebble.DB
	writeSync bool

	mu     sync.Mutex
	lastID int64
}

var _ Store = (*Pebble)(nil)

// OpenPebble creates or opens the Pebble database and restores the last
// assigned identity from metadata.
func OpenPebble(opts PebbleOptions) (*Pebble, error) {
	if opts.DataDir == "" {
		return nil, errors.New("store: PebbleOptions.DataDir is required")
	}
	po := &pebble.Options{}
	switch opts.Fsync {
	case FsyncInterval:
		interval := opts.FsyncInterval
		if interval <= 0 {
			interval = 5 * time.Millisecond
		}
		po.WALMinSyncInterval = func() time.Duration { return interval }
	case FsyncAlways, FsyncNever:
		// Sync behavior is decided per commit below.
	}

	db, err := pebble.Open(opts.DataDir, po)
	if err != nil {
		return nil, fmt.Errorf("store: open pebble: %w", err)
	}
	s := &Pebble{db: db, writeSync: opts.Fsync == FsyncAlways}

	if meta, closer, err := db.Get(keyLastID); err == nil {
		if len(meta) >= 8 {
			s.lastID = int64(binary.BigEndian.Uint64(meta[:8]))
		}
		_ = closer.Close()
	} else if !errors.Is(err, pebble.ErrNotFound) {
		_ = db.Close()
		return nil, fmt.Errorf("store: read last id: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Pebble) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Pebble) syncMode() *pebble.WriteOptions {
	if s.writeSync {
		return pebble.Sync
	}
	return pebble.NoSync
}

// Append implements Store. The entry and the identity metadata are written
// as one atomic batch; the in-memory counter only advances on success.
func (s *Pebble) Append(_ context.Context, rec telemetry.Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.lastID + 1
	rec.ID = next
	val, err := encodeRecord(rec)
	if err != nil {
		return 0, err
	}

	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Set(keyRecord(next), val, nil); err != nil {
		return 0, err
	}
	var meta [8]byte
	binary.BigEndian.PutUint64(meta[:], uint64(next))
	if err := b.Set(keyLastID, meta[:], nil); err != nil {
		return 0, err
	}
	if err := b.Commit(s.syncMode()); err != nil {
		return 0, fmt.Errorf("store: commit append: %w", err)
	}
	s.lastID = next
	return next, nil
}

// Get implements Store.
func (s *Pebble) Get(_ context.Context, id int64) (telemetry.Record, error) {
	val, closer, err := s.db.Get(keyRecord(id))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return telemetry.Record{}, ErrNotFound
		}
		return telemetry.Record{}, err
	}
	buf := append([]byte(nil), val...)
	_ = closer.Close()
	return decodeRecord(buf)
}

// List implements Store. Records come back in identity order because ids
// are big-endian in the key.
func (s *Pebble) List(_ context.Context) ([]telemetry.Record, error) {
	low, high := recKeyBounds()
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: high})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []telemetry.Record
	for iter.First(); iter.Valid(); iter.Next() {
		rec, err := decodeRecord(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("store: record %d: %w", recordIDFromKey(iter.Key()), err)
		}
		out = append(out, rec)
	}
	return out, iter.Error()
}

// Update implements Store.
func (s *Pebble) Update(ctx context.Context, id int64, rec telemetry.Record) (telemetry.Record, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return telemetry.Record{}, err
	}
	rec.ID = id
	val, err := encodeRecord(rec)
	if err != nil {
		return telemetry.Record{}, err
	}
	if err := s.db.Set(keyRecord(id), val, s.syncMode()); err != nil {
		return telemetry.Record{}, fmt.Errorf("store: update %d: %w", id, err)
	}
	return rec, nil
}

// Delete implements Store.
func (s *Pebble) Delete(ctx context.Context, id int64) (telemetry.Record, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return telemetry.Record{}, err
	}
	if err := s.db.Delete(keyRecord(id), s.syncMode()); err != nil {
		return telemetry.Record{}, fmt.Errorf("store: delete %d: %w", id, err)
	}
	return rec, nil
}

// PurgeOlderThan implements Store. Deletions are applied as one batch.
func (s *Pebble) PurgeOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	low, high := recKeyBounds()
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: low, UpperBound: high})
	if err != nil {
		return 0, err
	}

	b := s.db.NewBatch()
	defer b.Close()
	removed := 0
	for iter.First(); iter.Valid(); iter.Next() {
		rec, err := decodeRecord(iter.Value())
		if err != nil {
			continue // skip undecodable values rather than abort the sweep
		}
		if rec.Timestamp.Before(cutoff) {
			if err := b.Delete(append([]byte(nil), iter.Key()...), nil); err != nil {
				_ = iter.Close()
				return 0, err
			}
			removed++
		}
	}
	if err := iter.Close(); err != nil {
		return 0, err
	}
	if removed == 0 {
		return 0, nil
	}
	if err := b.Commit(s.syncMode()); err != nil {
		return 0, fmt.Errorf("store: commit purge: %w", err)
	}
	return removed, nil
}
