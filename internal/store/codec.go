package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"

	"github.com/iamnno/IES/internal/telemetry"
)

// Value layout: json(record) | crc32c(json) (4 bytes big-endian).
// The trailer catches torn or corrupted values on read.

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

func encodeRecord(rec telemetry.Record) ([]byte, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("store: encode record: %w", err)
	}
	out := make([]byte, 0, len(payload)+4)
	out = append(out, payload...)
	var crcb [4]byte
	binary.BigEndian.PutUint32(crcb[:], crc32.Checksum(payload, castagnoli))
	return append(out, crcb[:]...), nil
}

func decodeRecord(b []byte) (telemetry.Record, error) {
	if len(b) < 4 {
		return telemetry.Record{}, fmt.Errorf("store: value too short (%d bytes)", len(b))
	}
	payload := b[:len(b)-4]
	expect := binary.BigEndian.Uint32(b[len(b)-4:])
	if crc32.Checksum(payload, castagnoli) != expect {
		return telemetry.Record{}, fmt.Errorf("store: value checksum mismatch")
	}
	var rec telemetry.Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return telemetry.Record{}, fmt.Errorf("store: decode record: %w", err)
	}
	return rec, nil
}
