// Package store persists processed telemetry records and assigns identity.
//
// Two backends implement the Store interface:
//
//   - Pebble (default): records live under tel/rec/{id_be8} with values
//     framed by a crc32c trailer; the last assigned identity is kept in a
//     metadata key so ids survive restarts. Appends are atomic batches
//     committed under the configured fsync policy.
//   - SQLite: a processed_agent_data table mirroring the relational schema
//     the hub originally wrote to, for deployments that want SQL access to
//     the stored records.
//
// The append contract is the part the pipeline depends on: Append durably
// persists the record and returns its identity before the caller may
// broadcast it.
package store
