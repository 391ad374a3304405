// Package agentrun exposes a shared Run entrypoint used by the CLI to
// replay recorded sensor CSVs against a hub: the aggregator produces
// synchronized snapshots at a fixed interval and the relay labels,
// batches and forwards them until the recordings are exhausted or the
// context is cancelled.
package agentrun
