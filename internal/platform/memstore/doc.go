// Package memstore provides the authoritative in-memory implementations of
// the store interfaces. All reads and writes are served from process memory;
// a write-behind persister is notified of mutations and snapshots dirty
// collections to durable storage in the background.
//
// Stores hand out copies, never their internal records, so callers can
// mutate results freely and commit them back through Save. Map access is
// guarded per store; read-modify-write atomicity across calls is the
// responsibility of the service layer, which serializes per user through
// UserLocks.
package memstore
