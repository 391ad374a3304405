// Package telemetry implements the hub's ingest path: a validated batch
// is persisted record by record, and each durably stored record is then
// fanned out to the owner's live subscribers.
//
// Validation is all-or-nothing: any malformed record rejects the whole
// batch before the first append. Persistence and fan-out are per record;
// a failed append surfaces immediately and suppresses that record's
// broadcast, while fan-out failures never surface to the producer.
package telemetry
