// Package sqldb is the durable side of the storage split: the in-memory
// stores stay authoritative at runtime, and this package writes their
// contents through to SQL as snapshots and loads them back at startup.
//
// Two dialects are supported behind the same code path: an embedded SQLite
// file (the default) and PostgreSQL via the pgx stdlib driver. Queries are
// written with ? placeholders and rebound per dialect by sqlx.
//
// The primary components are:
//   - Open: connects and tunes the pool for the chosen driver
//   - RunMigrations: applies the embedded goose migrations
//   - SnapshotStore: per-user collection replacement inside a transaction,
//     conflict-ignoring appends for the immutable tables, and the Load
//     methods hydration reads everything back through
package sqldb
