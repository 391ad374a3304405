// Package relay is the agent-side forwarder: it labels aggregated
// snapshots, wraps them in the hub's wire schema for one owner, batches
// them, and POSTs each batch to the hub ingest endpoint with exponential
// backoff on failure. A batch is never dropped silently; once retries
// are exhausted the error surfaces to the caller.
package relay
