package store

import (
	"context"
	"errors"
	"time"

	"github.com/iamnno/IES/internal/telemetry"
)

// ErrNotFound reports that no record exists for the requested identity.
var ErrNotFound = errors.New("store: record not found")

// Store is the persistence contract for processed telemetry records.
// All operations are synchronous; Append completes durably before it
// returns, which is what allows broadcast-after-append ordering upstream.
type Store interface {
	// Append durably persists rec and returns its assigned identity.
	Append(ctx context.Context, rec telemetry.Record) (int64, error)
	// Get returns the record for id, or ErrNotFound.
	Get(ctx context.Context, id int64) (telemetry.Record, error)
	// List returns all records ordered by identity.
	List(ctx context.Context) ([]telemetry.Record, error)
	// Update replaces the record for id and returns the stored result,
	// or ErrNotFound.
	Update(ctx context.Context, id int64, rec telemetry.Record) (telemetry.Record, error)
	// Delete removes and returns the record for id, or ErrNotFound.
	Delete(ctx context.Context, id int64) (telemetry.Record, error)
	// PurgeOlderThan deletes records whose timestamp precedes cutoff and
	// reports how many were removed.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error)
	// Close releases backend resources.
	Close() error
}
