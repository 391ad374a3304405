package source

import (
	"time"

	"github.com/iamnno/IES/internal/telemetry"
)

// Declared arity per feed: substituted placeholders must match the shape a
// real row would have had.
const (
	accArity     = 3
	gpsArity     = 2
	parkingArity = 3
)

// Aggregator combines the three sensor streams into one Snapshot per tick
// and owns the termination decision.
type Aggregator struct {
	acc     *Stream
	gps     *Stream
	parking *Stream
	stopped bool

	now func() time.Time
}

// NewAggregator wires the three streams. Snapshots are stamped with the
// wall clock at aggregation time.
func NewAggregator(acc, gps, parking *Stream) *Aggregator {
	return &Aggregator{acc: acc, gps: gps, parking: parking, now: time.Now}
}

// Tick produces the next Snapshot. A stream that has run out contributes
// zero-valued fields while the others continue with real data. The stop
// latch is recomputed after substitution, so the tick on which the last
// stream runs dry still yields a (possibly all-zero) snapshot; every call
// after the latch is a no-op returning ok=false.
func (a *Aggregator) Tick() (telemetry.Snapshot, bool) {
	if a.stopped {
		return telemetry.Snapshot{}, false
	}

	acc := take(a.acc, accArity)
	gps := take(a.gps, gpsArity)
	park := take(a.parking, parkingArity)

	snap := telemetry.Snapshot{
		Accelerometer: telemetry.Accelerometer{X: acc[0], Y: acc[1], Z: acc[2]},
		Gps:           telemetry.Gps{Latitude: gps[0], Longitude: gps[1]},
		CapturedAt:    a.now(),
		Parking: telemetry.Parking{
			SpotID: park[0],
			Gps:    telemetry.Gps{Latitude: park[1], Longitude: park[2]},
		},
	}

	a.stopped = a.acc.Exhausted() && a.gps.Exhausted() && a.parking.Exhausted()
	return snap, true
}

// Stopped reports whether all three streams are exhausted and the
// aggregator has latched its terminal state.
func (a *Aggregator) Stopped() bool { return a.stopped }

// take pops one row from s, padding or truncating to arity; an exhausted
// stream yields an all-zero row of the declared arity.
func take(s *Stream, arity int) []float64 {
	out := make([]float64, arity)
	if row, ok := s.Next(); ok {
		copy(out, row)
	}
	return out
}
