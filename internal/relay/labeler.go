package relay

import (
	"math"

	"github.com/iamnno/IES/internal/telemetry"
)

// Labeler assigns a road-state label to one snapshot.
type Labeler interface {
	Label(snap telemetry.Snapshot) string
}

// gravity is the resting vertical acceleration in m/s².
const gravity = 9.81

// ThresholdLabeler classifies on the vertical-axis deviation from rest:
// at or above Pothole it reports "pothole", at or above Bump it reports
// "bump", otherwise "smooth".
type ThresholdLabeler struct {
	Bump    float64
	Pothole float64
}

// DefaultLabeler returns the threshold labeler with stock cutoffs.
func DefaultLabeler() ThresholdLabeler {
	return ThresholdLabeler{Bump: 2.0, Pothole: 5.0}
}

func (l ThresholdLabeler) Label(snap telemetry.Snapshot) string {
	dev := math.Abs(snap.Accelerometer.Z - gravity)
	switch {
	case dev >= l.Pothole:
		return "pothole"
	case dev >= l.Bump:
		return "bump"
	default:
		return "smooth"
	}
}
