package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/iamnno/IES/internal/telemetry"
)

func newPebbleForTest(t *testing.T) Store {
	t.Helper()
	s, err := OpenPebble(PebbleOptions{DataDir: t.TempDir(), Fsync: FsyncAlways})
	if err != nil {
		t.Fatalf("open pebble: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newSQLiteForTest(t *testing.T) Store {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "tel.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func backends(t *testing.T) map[string]Store {
	t.Helper()
	return map[string]Store{
		"pebble": newPebbleForTest(t),
		"sqlite": newSQLiteForTest(t),
	}
}

func testRecord(user int64, when time.Time) telemetry.Record {
	return telemetry.Record{
		RoadState: "smooth",
		UserID:    user,
		X:         0.12, Y: -0.5, Z: 9.81,
		Latitude: 50.4501, Longitude: 30.5234,
		Timestamp: when,
	}
}

func TestAppendAssignsIncreasingIdentity(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			id1, err := s.Append(ctx, testRecord(1, time.Now().UTC()))
			if err != nil {
				t.Fatalf("append1: %v", err)
			}
			id2, err := s.Append(ctx, testRecord(1, time.Now().UTC()))
			if err != nil {
				t.Fatalf("append2: %v", err)
			}
			if !(id1 > 0 && id2 > id1) {
				t.Fatalf("expected increasing identities, got %d then %d", id1, id2)
			}
		})
	}
}

func TestRoundTripFieldEquality(t *testing.T) {
	when := time.Date(2024, 5, 1, 10, 0, 0, 123000000, time.UTC)
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			in := testRecord(7, when)
			id, err := s.Append(ctx, in)
			if err != nil {
				t.Fatalf("append: %v", err)
			}
			got, err := s.Get(ctx, id)
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			in.ID = id
			if got.ID != id || got.RoadState != in.RoadState || got.UserID != in.UserID ||
				got.X != in.X || got.Y != in.Y || got.Z != in.Z ||
				got.Latitude != in.Latitude || got.Longitude != in.Longitude ||
				!got.Timestamp.Equal(in.Timestamp) {
				t.Fatalf("round trip mismatch:\n in=%+v\nout=%+v", in, got)
			}
		})
	}
}

func TestGetUpdateDeleteNotFound(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := s.Get(ctx, 404); !errors.Is(err, ErrNotFound) {
				t.Fatalf("get: want ErrNotFound, got %v", err)
			}
			if _, err := s.Update(ctx, 404, testRecord(1, time.Now())); !errors.Is(err, ErrNotFound) {
				t.Fatalf("update: want ErrNotFound, got %v", err)
			}
			if _, err := s.Delete(ctx, 404); !errors.Is(err, ErrNotFound) {
				t.Fatalf("delete: want ErrNotFound, got %v", err)
			}
		})
	}
}

func TestUpdateReplacesFields(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			id, err := s.Append(ctx, testRecord(1, time.Now().UTC()))
			if err != nil {
				t.Fatalf("append: %v", err)
			}
			repl := testRecord(2, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
			repl.RoadState = "pothole"
			got, err := s.Update(ctx, id, repl)
			if err != nil {
				t.Fatalf("update: %v", err)
			}
			if got.ID != id || got.RoadState != "pothole" || got.UserID != 2 {
				t.Fatalf("update result mismatch: %+v", got)
			}
			back, err := s.Get(ctx, id)
			if err != nil || back.RoadState != "pothole" {
				t.Fatalf("updated record not stored: %+v err=%v", back, err)
			}
		})
	}
}

func TestDeleteReturnsRemovedRecord(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			id, err := s.Append(ctx, testRecord(3, time.Now().UTC()))
			if err != nil {
				t.Fatalf("append: %v", err)
			}
			old, err := s.Delete(ctx, id)
			if err != nil {
				t.Fatalf("delete: %v", err)
			}
			if old.UserID != 3 {
				t.Fatalf("delete must return the removed record: %+v", old)
			}
			if _, err := s.Get(ctx, id); !errors.Is(err, ErrNotFound) {
				t.Fatalf("record still present after delete")
			}
		})
	}
}

func TestListOrderedByIdentity(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < 5; i++ {
				if _, err := s.Append(ctx, testRecord(int64(i+1), time.Now().UTC())); err != nil {
					t.Fatalf("append %d: %v", i, err)
				}
			}
			recs, err := s.List(ctx)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(recs) != 5 {
				t.Fatalf("want 5 records, got %d", len(recs))
			}
			for i := 1; i < len(recs); i++ {
				if recs[i].ID <= recs[i-1].ID {
					t.Fatalf("list not ordered by identity: %d after %d", recs[i].ID, recs[i-1].ID)
				}
			}
		})
	}
}

func TestPurgeOlderThan(t *testing.T) {
	cutoff := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := s.Append(ctx, testRecord(1, cutoff.Add(-time.Hour))); err != nil {
				t.Fatalf("append old: %v", err)
			}
			if _, err := s.Append(ctx, testRecord(1, cutoff.Add(-time.Minute))); err != nil {
				t.Fatalf("append old: %v", err)
			}
			keepID, err := s.Append(ctx, testRecord(1, cutoff.Add(time.Hour)))
			if err != nil {
				t.Fatalf("append new: %v", err)
			}
			n, err := s.PurgeOlderThan(ctx, cutoff)
			if err != nil {
				t.Fatalf("purge: %v", err)
			}
			if n != 2 {
				t.Fatalf("want 2 purged, got %d", n)
			}
			recs, err := s.List(ctx)
			if err != nil || len(recs) != 1 || recs[0].ID != keepID {
				t.Fatalf("unexpected survivors: %+v err=%v", recs, err)
			}
		})
	}
}

func TestPebbleIdentityDurableAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenPebble(PebbleOptions{DataDir: dir, Fsync: FsyncAlways})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ctx := context.Background()
	id1, err := s.Append(ctx, testRecord(1, time.Now().UTC()))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2, err := OpenPebble(PebbleOptions{DataDir: dir, Fsync: FsyncAlways})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = s2.Close() })
	id2, err := s2.Append(ctx, testRecord(1, time.Now().UTC()))
	if err != nil {
		t.Fatalf("append after reopen: %v", err)
	}
	if id2 <= id1 {
		t.Fatalf("identity regressed across reopen: %d then %d", id1, id2)
	}
}

func TestCodecRejectsCorruptValue(t *testing.T) {
	val, err := encodeRecord(testRecord(1, time.Now().UTC()))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	val[0] ^= 0xFF
	if _, err := decodeRecord(val); err == nil {
		t.Fatalf("expected checksum error")
	}
}
