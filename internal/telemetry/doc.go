// Package telemetry defines the data model shared across the pipeline.
//
// Three shapes move through the system:
//
//   - Snapshot: one synchronized composite reading built by the agent's
//     aggregator from the three sensor feeds. Snapshots are immutable after
//     creation and handed off stage to stage, never aliased.
//   - WireRecord: the JSON shape the relay sends to the hub ingest endpoint,
//     a road-state label around nested agent data (original relational
//     schema kept intact: accelerometer, gps, owner id, ISO-8601 timestamp).
//   - Record: the flattened, persisted shape. Identity is assigned by the
//     store at append time; records are immutable afterwards except through
//     explicit update/delete.
package telemetry
