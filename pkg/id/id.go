package id

import (
	"encoding/binary"
	"encoding/hex"
	"math"
	"sync"
	"time"
)

// ID is a 128-bit sortable identifier.
type ID [16]byte

// String returns the lower-case hex form.
func (i ID) String() string { return hex.EncodeToString(i[:]) }

// Compare returns -1, 0, or 1 by byte-wise comparison.
func (i ID) Compare(other ID) int {
	for idx := 0; idx < len(i); idx++ {
		switch {
		case i[idx] < other[idx]:
			return -1
		case i[idx] > other[idx]:
			return 1
		}
	}
	return 0
}

// Generator mints monotonically increasing IDs for one process.
type Generator struct {
	mu       sync.Mutex
	lastMs   int64
	sequence uint64
}

// NewGenerator returns a ready Generator.
func NewGenerator() *Generator { return &Generator{} }

// NowMs returns the current wall clock in Unix milliseconds. Swapped in tests.
var NowMs = func() int64 { return time.Now().UnixMilli() }

// Next mints the next ID.
func (g *Generator) Next() ID {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := NowMs()
	if ms < g.lastMs {
		ms = g.lastMs
	}

	if ms == g.lastMs {
		if g.sequence == math.MaxUint64 {
			for {
				ms = NowMs()
				if ms > g.lastMs {
					break
				}
				time.Sleep(time.Millisecond / 8)
			}
			g.sequence = 0
		} else {
			g.sequence++
		}
	} else {
		g.sequence = 0
	}

	g.lastMs = ms

	var out ID
	binary.BigEndian.PutUint64(out[0:8], uint64(ms))
	binary.BigEndian.PutUint64(out[8:16], g.sequence)
	return out
}
