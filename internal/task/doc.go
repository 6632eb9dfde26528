// Package task runs the periodic background jobs: autosaving dirty state to
// the snapshot store, reaping expired review sessions, refreshing the
// accuracy ranking, and reporting activity derived from the event log. It
// also records emitted domain events into the durable log.
package task
