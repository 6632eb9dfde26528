package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType names the kind of domain event that occurred.
type EventType string

// Event types published by the core services.
const (
	EventRescueModeTriggered    EventType = "rescue_mode_triggered"
	EventRescueModeUserImproved EventType = "rescue_mode_user_improved"
	EventRescueModeExited       EventType = "rescue_mode_exited"
	EventReviewSessionCreated   EventType = "review_session_created"
	EventReviewSessionCompleted EventType = "review_session_completed"
)

// Event represents a single domain event with a flat key/value payload.
// Events are published to subscribed consumers (analytics, the durable
// event log) without the publishing service knowing who listens.
type Event struct {
	// ID is a unique identifier for this event
	ID uuid.UUID `json:"id"`

	// Type names the kind of event
	Type EventType `json:"type"`

	// UserID identifies the user the event belongs to
	UserID uuid.UUID `json:"user_id"`

	// Payload carries event-specific details as flat string pairs
	Payload map[string]string `json:"payload"`

	// OccurredAt is the timestamp when the event was created
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent creates a new Event of the given type for the given user.
// A nil payload is replaced with an empty map.
func NewEvent(eventType EventType, userID uuid.UUID, payload map[string]string) Event {
	if payload == nil {
		payload = map[string]string{}
	}
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		UserID:     userID,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	}
}

// Handler defines an interface for components that consume events.
type Handler interface {
	// HandleEvent processes the given event within the provided context.
	// Returns an error if the event cannot be handled successfully.
	HandleEvent(ctx context.Context, event Event) error
}

// Emitter defines an interface for components that publish events.
// Delivery is fire-and-forget: Emit never blocks the caller, and handler
// failures are logged rather than surfaced to the publishing service.
type Emitter interface {
	// Emit publishes the given event to all subscribed handlers.
	Emit(event Event)
}
