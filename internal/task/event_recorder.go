package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lexibird/lexibird-api/internal/events"
	"github.com/lexibird/lexibird-api/internal/store"
)

// EventRecorder implements the events.Handler interface to append every
// emitted domain event to the durable event log. Rescue statistics and the
// periodic activity report replay that log, so the recorder must be
// subscribed before any service starts emitting.
type EventRecorder struct {
	eventLog store.EventStore
	logger   *slog.Logger
}

// NewEventRecorder creates a new EventRecorder writing to the given log.
func NewEventRecorder(eventLog store.EventStore, logger *slog.Logger) *EventRecorder {
	if eventLog == nil {
		panic("event log cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	return &EventRecorder{
		eventLog: eventLog,
		logger:   logger.With(slog.String("component", "event_recorder")),
	}
}

// HandleEvent appends the event to the log. The emitter already logs handler
// failures, but the error is also surfaced here so callers invoking the
// recorder directly see it.
func (r *EventRecorder) HandleEvent(ctx context.Context, event events.Event) error {
	if err := r.eventLog.Append(ctx, event); err != nil {
		r.logger.Error("failed to record event",
			"error", err,
			"event_type", event.Type,
			"event_id", event.ID)
		return fmt.Errorf("failed to record event: %w", err)
	}

	r.logger.Debug("event recorded",
		"event_type", event.Type,
		"event_id", event.ID,
		"user_id", event.UserID)
	return nil
}

// Ensure EventRecorder implements events.Handler
var _ events.Handler = (*EventRecorder)(nil)
