// Package subscribe maintains the live fan-out state of the hub.
//
// A Registry maps an owner id to the set of currently connected
// subscribers. Subscribe and Unsubscribe are idempotent and safe to call
// while broadcasts for the same owner are in flight. Broadcast snapshots
// the membership, then delivers the record to each subscriber
// independently: a subscriber that cannot accept the delivery within the
// bounded attempt is disconnected and removed, and never blocks or fails
// delivery to the others.
//
// A subscriber has exactly two states: connected, then disconnected
// (terminal). Disconnection affects only future deliveries for that
// subscriber; persistence and other subscribers are untouched.
//
// Subscribers may carry an optional CEL filter evaluated per record;
// records failing the filter are skipped for that subscriber only.
package subscribe
