package store

import (
	"encoding/binary"
)

// Pebble keyspace (byte-wise, lexicographically sortable):
//   tel/rec/{id_be8}    record values, ordered by identity
//   tel/meta/last_id    last assigned identity (8 bytes big-endian)

var (
	recPrefix  = []byte("tel/rec/")
	keyLastID  = []byte("tel/meta/last_id")
	recKeySize = len(recPrefix) + 8
)

// keyRecord builds the entry key with a big-endian id for proper ordering.
func keyRecord(id int64) []byte {
	k := make([]byte, 0, recKeySize)
	k = append(k, recPrefix...)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return append(k, b[:]...)
}

// recordIDFromKey extracts the identity from an entry key.
func recordIDFromKey(k []byte) int64 {
	if len(k) != recKeySize {
		return 0
	}
	return int64(binary.BigEndian.Uint64(k[len(recPrefix):]))
}

// recKeyBounds returns the [low, high) iteration bounds over all records.
func recKeyBounds() (low, high []byte) {
	low = keyRecord(0)
	high = append(keyRecord(int64(^uint64(0)>>1)), 0x00)
	return low, high
}
