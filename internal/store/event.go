package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/lexibird/lexibird-api/internal/events"
)

// EventStore defines the interface for the append-only domain event log.
// Rescue statistics and periodic reports are derived by replaying this
// log rather than from running counters.
type EventStore interface {
	// Append adds an event to the log. Events are immutable once appended.
	Append(ctx context.Context, event events.Event) error

	// ListByUser retrieves all events for the given user in append order.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]events.Event, error)

	// ListByType retrieves the user's events whose type matches any of the
	// given types, in append order. Returns an empty slice when no types
	// are given.
	ListByType(ctx context.Context, userID uuid.UUID, types ...events.EventType) ([]events.Event, error)
}
