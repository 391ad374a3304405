// Package id provides a 128-bit, lexicographically sortable identifier.
//
// The ID is 16 bytes big-endian: [8 bytes ms_timestamp][8 bytes sequence],
// so byte-wise comparison preserves chronological order and IDs minted
// within the same millisecond remain strictly increasing by sequence.
//
// The Generator is monotonic per process: a regressing system clock pins to
// the last seen millisecond, and a sequence overflow within one millisecond
// waits for the next millisecond before emitting.
//
// IES uses these ids to tag relay batches so a batch can be correlated
// between agent logs and hub logs.
package id
