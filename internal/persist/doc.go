// Package persist connects the in-memory stores to durable storage. The
// stores mark collections dirty as they mutate; the Persister coalesces
// those marks and writes whole-collection snapshots after a debounce
// window, on a schedule, and at shutdown. Hydrate runs the opposite
// direction once at startup, loading persisted snapshots back into the
// memory stores before the server accepts traffic.
//
// A failed snapshot write keeps its mark, so the next flush retries it.
// Between flushes the memory stores remain the single source of truth.
package persist
