package source

import (
	"testing"
	"time"
)

func rowsOfLen(n int, width int, base float64) [][]float64 {
	rows := make([][]float64, n)
	for i := range rows {
		row := make([]float64, width)
		for j := range row {
			row[j] = base + float64(i)
		}
		rows[i] = row
	}
	return rows
}

func TestTickZeroFillsShortStreams(t *testing.T) {
	// Lengths 2, 3, 1 per the acc/gps/parking feeds.
	agg := NewAggregator(
		NewStream(rowsOfLen(2, 3, 10)),
		NewStream(rowsOfLen(3, 2, 20)),
		NewStream(rowsOfLen(1, 3, 30)),
	)

	// Tick 1: all real.
	s1, ok := agg.Tick()
	if !ok {
		t.Fatalf("tick 1 must produce")
	}
	if s1.Accelerometer.X != 10 || s1.Gps.Latitude != 20 || s1.Parking.SpotID != 30 {
		t.Fatalf("tick 1 mismatch: %+v", s1)
	}

	// Tick 2: parking drained, zero-filled; others real.
	s2, _ := agg.Tick()
	if s2.Accelerometer.X != 11 || s2.Gps.Latitude != 21 {
		t.Fatalf("tick 2 real fields mismatch: %+v", s2)
	}
	if s2.Parking.SpotID != 0 || s2.Parking.Gps.Latitude != 0 {
		t.Fatalf("tick 2 parking must be zero-filled: %+v", s2.Parking)
	}

	// Tick 3: only gps still real; stop latch must not fire at tick start.
	if agg.Stopped() {
		t.Fatalf("stopped too early")
	}
	s3, ok := agg.Tick()
	if !ok {
		t.Fatalf("tick 3 must produce")
	}
	if s3.Accelerometer.X != 0 || s3.Gps.Latitude != 22 {
		t.Fatalf("tick 3 mismatch: %+v", s3)
	}

	// Tick 4: trailing all-zero snapshot, after which the latch holds.
	s4, ok := agg.Tick()
	if !ok {
		t.Fatalf("tick 4 must still produce the trailing snapshot")
	}
	if s4.Gps.Latitude != 0 || s4.Accelerometer.Z != 0 || s4.Parking.SpotID != 0 {
		t.Fatalf("tick 4 must be all zero: %+v", s4)
	}
	if !agg.Stopped() {
		t.Fatalf("latch must be true after max(len)+1 ticks")
	}
	if _, ok := agg.Tick(); ok {
		t.Fatalf("ticks after the latch must be no-ops")
	}
}

func TestTickCountIsMaxLenPlusOne(t *testing.T) {
	agg := NewAggregator(
		NewStream(rowsOfLen(2, 3, 0)),
		NewStream(rowsOfLen(5, 2, 0)),
		NewStream(rowsOfLen(4, 3, 0)),
	)
	ticks := 0
	for {
		if _, ok := agg.Tick(); !ok {
			break
		}
		ticks++
	}
	if ticks != 6 { // max(2,5,4)+1
		t.Fatalf("want 6 productive ticks, got %d", ticks)
	}
}

func TestAllEmptyStreamsYieldOneZeroSnapshot(t *testing.T) {
	agg := NewAggregator(NewStream(nil), NewStream(nil), NewStream(nil))
	snap, ok := agg.Tick()
	if !ok {
		t.Fatalf("first tick must still produce one all-zero snapshot")
	}
	if snap.Accelerometer.X != 0 || snap.Gps.Latitude != 0 || snap.Parking.SpotID != 0 {
		t.Fatalf("snapshot must be zero-valued: %+v", snap)
	}
	if !agg.Stopped() {
		t.Fatalf("latch must fire right after the first tick")
	}
	if _, ok := agg.Tick(); ok {
		t.Fatalf("second tick must be a no-op")
	}
}

func TestSnapshotUsesAggregationClock(t *testing.T) {
	agg := NewAggregator(NewStream(rowsOfLen(1, 3, 0)), NewStream(nil), NewStream(nil))
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	agg.now = func() time.Time { return fixed }
	snap, _ := agg.Tick()
	if !snap.CapturedAt.Equal(fixed) {
		t.Fatalf("want aggregation clock %v, got %v", fixed, snap.CapturedAt)
	}
}
