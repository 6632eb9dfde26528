// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing business rules to remain
// independent of specific database technologies or persistence details.
//
// The authoritative implementations live in platform/memstore; the
// platform/sqldb package persists durable snapshots behind them.
package store
