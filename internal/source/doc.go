// Package source implements the agent-side replay simulator.
//
// A Stream is a finite, order-preserving producer of rows loaded once from
// a CSV file; the header row is skipped and Next pops the earliest
// remaining data row. After the backing rows are consumed every Next
// returns no row and the stream latches exhausted.
//
// The Aggregator drives the three streams (accelerometer, gps, parking) in
// lock-step and emits one Snapshot per Tick, zero-filling any stream that
// ran out early so the composite keeps flowing until every feed is drained.
// The stop latch is recomputed after substitution on every tick, so three
// empty files still yield exactly one all-zero snapshot before stopping.
package source
