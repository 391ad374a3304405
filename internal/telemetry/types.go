package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Accelerometer is one three-axis accelerometer reading.
type Accelerometer struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Gps is one position fix.
type Gps struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Parking is one parking-spot observation: the spot id and its location.
type Parking struct {
	SpotID float64 `json:"spot_id"`
	Gps    Gps     `json:"gps"`
}

// Snapshot is one synchronized composite reading across the three feeds.
// CapturedAt is the wall-clock time of aggregation, not any recorded
// source timestamp.
type Snapshot struct {
	Accelerometer Accelerometer `json:"accelerometer"`
	Gps           Gps           `json:"gps"`
	CapturedAt    time.Time     `json:"captured_at"`
	Parking       Parking       `json:"parking"`
}

// Timestamp is a time.Time that unmarshals from ISO-8601 strings with or
// without a zone offset, matching what field agents actually emit.
type Timestamp struct {
	time.Time
}

// timestampLayouts are tried in order; the bare layouts cover agents that
// emit local time without an offset.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("telemetry: timestamp must be a JSON string: %w", err)
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("telemetry: invalid ISO-8601 timestamp %q", s)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}

// AgentData is the nested sensor block of a wire record.
type AgentData struct {
	UserID        int64         `json:"user_id"`
	Accelerometer Accelerometer `json:"accelerometer"`
	Gps           Gps           `json:"gps"`
	Timestamp     Timestamp     `json:"timestamp"`
}

// WireRecord is one element of an ingest batch.
type WireRecord struct {
	RoadState string    `json:"road_state"`
	AgentData AgentData `json:"agent_data"`
}

// Validate checks the fields the ingest contract requires. Timestamp format
// errors are caught earlier, during JSON decoding.
func (w WireRecord) Validate() error {
	if w.RoadState == "" {
		return errors.New("telemetry: missing road_state")
	}
	if w.AgentData.UserID <= 0 {
		return fmt.Errorf("telemetry: invalid user_id %d", w.AgentData.UserID)
	}
	if w.AgentData.Timestamp.IsZero() {
		return errors.New("telemetry: missing timestamp")
	}
	return nil
}

// Record is the flattened persisted shape. ID is zero until the store
// assigns it at append time.
type Record struct {
	ID        int64     `json:"id"`
	RoadState string    `json:"road_state"`
	UserID    int64     `json:"user_id"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Z         float64   `json:"z"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// RecordFromWire flattens a validated wire record for persistence.
func RecordFromWire(w WireRecord) Record {
	return Record{
		RoadState: w.RoadState,
		UserID:    w.AgentData.UserID,
		X:         w.AgentData.Accelerometer.X,
		Y:         w.AgentData.Accelerometer.Y,
		Z:         w.AgentData.Accelerometer.Z,
		Latitude:  w.AgentData.Gps.Latitude,
		Longitude: w.AgentData.Gps.Longitude,
		Timestamp: w.AgentData.Timestamp.Time,
	}
}
