package memstore

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/lexibird/lexibird-api/internal/events"
	"github.com/lexibird/lexibird-api/internal/store"
)

// MemoryEventStore implements the store.EventStore interface with per-user
// append-only slices as the storage backend.
type MemoryEventStore struct {
	mu       sync.RWMutex
	log      map[uuid.UUID][]events.Event
	notifier Notifier
	logger   *slog.Logger
}

// NewMemoryEventStore creates a new in-memory implementation of the
// EventStore interface. A nil notifier disables persister marks; a nil
// logger falls back to the default logger.
func NewMemoryEventStore(notifier Notifier, logger *slog.Logger) *MemoryEventStore {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryEventStore{
		log:      make(map[uuid.UUID][]events.Event),
		notifier: notifier,
		logger:   logger.With(slog.String("component", "memory_event_store")),
	}
}

// Ensure MemoryEventStore implements store.EventStore interface
var _ store.EventStore = (*MemoryEventStore)(nil)

// Append implements store.EventStore.Append
func (s *MemoryEventStore) Append(ctx context.Context, event events.Event) error {
	s.mu.Lock()
	s.log[event.UserID] = append(s.log[event.UserID], cloneEvent(event))
	s.mu.Unlock()

	s.notifier.MarkDirty(CollectionEvents, event.UserID)
	return nil
}

// ListByUser implements store.EventStore.ListByUser
func (s *MemoryEventStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]events.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.log[userID]
	out := make([]events.Event, 0, len(stored))
	for _, event := range stored {
		out = append(out, cloneEvent(event))
	}
	return out, nil
}

// ListByType implements store.EventStore.ListByType
func (s *MemoryEventStore) ListByType(ctx context.Context, userID uuid.UUID, types ...events.EventType) ([]events.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]events.Event, 0)
	for _, event := range s.log[userID] {
		for _, t := range types {
			if event.Type == t {
				out = append(out, cloneEvent(event))
				break
			}
		}
	}
	return out, nil
}

// Hydrate replaces the store contents with events loaded from durable
// storage, preserving their order. Called once at startup; loaded rows are
// not marked dirty.
func (s *MemoryEventStore) Hydrate(loaded []events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log = make(map[uuid.UUID][]events.Event)
	for _, event := range loaded {
		s.log[event.UserID] = append(s.log[event.UserID], cloneEvent(event))
	}
	s.logger.Debug("hydrated events", slog.Int("count", len(loaded)))
}

// cloneEvent copies an event and detaches its payload map.
func cloneEvent(event events.Event) events.Event {
	copied := event
	copied.Payload = make(map[string]string, len(event.Payload))
	for k, v := range event.Payload {
		copied.Payload[k] = v
	}
	return copied
}
