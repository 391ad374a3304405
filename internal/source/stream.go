package source

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// Stream is a finite pop-front producer of numeric rows from one sensor CSV.
// It is not safe for concurrent use; the aggregator is its only driver.
type Stream struct {
	rows      [][]float64
	exhausted bool
}

// OpenCSV loads a sensor CSV. The first row is a header and is never
// returned as data. Field values must parse as floats; a malformed file
// fails at open, not mid-replay.
func OpenCSV(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("source: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	raw, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("source: read %s: %w", path, err)
	}
	if len(raw) > 0 {
		raw = raw[1:] // drop header
	}

	rows := make([][]float64, 0, len(raw))
	for i, rec := range raw {
		if len(rec) == 0 || (len(rec) == 1 && rec[0] == "") {
			continue // trailing blank line
		}
		row := make([]float64, len(rec))
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("source: %s row %d field %d: %w", path, i+2, j+1, err)
			}
			row[j] = v
		}
		rows = append(rows, row)
	}
	return &Stream{rows: rows}, nil
}

// NewStream builds a Stream from in-memory rows. Used by the aggregator
// tests and anywhere replay data does not live in a file.
func NewStream(rows [][]float64) *Stream {
	return &Stream{rows: rows}
}

// Next removes and returns the earliest remaining row. Once the backing
// rows are consumed it returns (nil, false) and latches exhausted;
// further calls are no-ops.
func (s *Stream) Next() ([]float64, bool) {
	if len(s.rows) == 0 {
		s.exhausted = true
		return nil, false
	}
	row := s.rows[0]
	s.rows = s.rows[1:]
	return row, true
}

// Exhausted reports whether Next has observed the end of the backing rows.
func (s *Stream) Exhausted() bool { return s.exhausted }

// Remaining reports how many data rows are left.
func (s *Stream) Remaining() int { return len(s.rows) }
