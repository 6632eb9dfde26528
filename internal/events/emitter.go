package events

import (
	"context"
	"log/slog"
	"sync"
)

// DefaultBufferSize is the capacity of the emitter's event channel.
const DefaultBufferSize = 256

// ChannelEmitter is an Emitter backed by a buffered channel. Emit publishes
// without blocking; a single dispatcher goroutine fans each event out to the
// subscribed handlers in publish order. Events emitted while the buffer is
// full are dropped and logged.
type ChannelEmitter struct {
	ch      chan Event
	logger  *slog.Logger
	done    chan struct{}
	stopped chan struct{}

	mu       sync.RWMutex
	handlers []Handler

	closeOnce sync.Once
}

var _ Emitter = (*ChannelEmitter)(nil)

// NewChannelEmitter creates a ChannelEmitter with the given buffer capacity
// and starts its dispatcher. A non-positive buffer falls back to
// DefaultBufferSize. Call Close to drain buffered events and stop the
// dispatcher.
func NewChannelEmitter(logger *slog.Logger, buffer int) *ChannelEmitter {
	if buffer <= 0 {
		buffer = DefaultBufferSize
	}
	e := &ChannelEmitter{
		ch:      make(chan Event, buffer),
		logger:  logger.With("component", "channel_event_emitter"),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go e.dispatch()
	return e
}

// Subscribe adds a handler that will receive every event dispatched after
// the call.
func (e *ChannelEmitter) Subscribe(handler Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
	e.logger.Debug("subscribed new event handler", "handler_count", len(e.handlers))
}

// Emit publishes the event without blocking. If the buffer is full the
// event is dropped and a warning is logged.
func (e *ChannelEmitter) Emit(event Event) {
	select {
	case e.ch <- event:
	default:
		e.logger.Warn("event buffer full, dropping event",
			"event_id", event.ID,
			"event_type", event.Type)
	}
}

// Close stops the dispatcher after it has delivered every buffered event.
// It is safe to call more than once; subsequent Emit calls are silently
// discarded.
func (e *ChannelEmitter) Close() {
	e.closeOnce.Do(func() { close(e.done) })
	<-e.stopped
}

func (e *ChannelEmitter) dispatch() {
	defer close(e.stopped)
	for {
		select {
		case event := <-e.ch:
			e.deliver(event)
		case <-e.done:
			for {
				select {
				case event := <-e.ch:
					e.deliver(event)
				default:
					return
				}
			}
		}
	}
}

// deliver fans one event out to a snapshot of the subscribed handlers.
// If any handler returns an error, the event is still sent to all other
// handlers and the failure is logged.
func (e *ChannelEmitter) deliver(event Event) {
	e.mu.RLock()
	handlers := make([]Handler, len(e.handlers))
	copy(handlers, e.handlers)
	e.mu.RUnlock()

	if len(handlers) == 0 {
		e.logger.Warn("no handlers subscribed for event",
			"event_id", event.ID,
			"event_type", event.Type)
		return
	}

	for i, handler := range handlers {
		if err := handler.HandleEvent(context.Background(), event); err != nil {
			e.logger.Error("handler failed to process event",
				"error", err,
				"handler_index", i,
				"event_id", event.ID,
				"event_type", event.Type)
		}
	}
}
