package memstore

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/lexibird/lexibird-api/internal/domain"
	"github.com/lexibird/lexibird-api/internal/platform/logger"
	"github.com/lexibird/lexibird-api/internal/store"
)

// MemoryRescueStore implements the store.RescueStore interface with an
// in-memory map keyed by user ID as the storage backend.
type MemoryRescueStore struct {
	mu       sync.RWMutex
	states   map[uuid.UUID]*domain.RescueModeState
	notifier Notifier
	logger   *slog.Logger
}

// NewMemoryRescueStore creates a new in-memory implementation of the
// RescueStore interface. A nil notifier disables persister marks; a nil
// logger falls back to the default logger.
func NewMemoryRescueStore(notifier Notifier, logger *slog.Logger) *MemoryRescueStore {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryRescueStore{
		states:   make(map[uuid.UUID]*domain.RescueModeState),
		notifier: notifier,
		logger:   logger.With(slog.String("component", "memory_rescue_store")),
	}
}

// Ensure MemoryRescueStore implements store.RescueStore interface
var _ store.RescueStore = (*MemoryRescueStore)(nil)

// Get implements store.RescueStore.Get
func (s *MemoryRescueStore) Get(ctx context.Context, userID uuid.UUID) (*domain.RescueModeState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[userID]
	if !ok {
		return nil, store.ErrRescueStateNotFound
	}
	return state.Clone(), nil
}

// Save implements store.RescueStore.Save
func (s *MemoryRescueStore) Save(ctx context.Context, state *domain.RescueModeState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		log.Warn("rescue state validation failed during save",
			slog.String("error", err.Error()),
			slog.String("user_id", state.UserID.String()))
		return err
	}

	s.mu.Lock()
	s.states[state.UserID] = state.Clone()
	s.mu.Unlock()

	s.notifier.MarkDirty(CollectionRescue, state.UserID)
	return nil
}

// Hydrate replaces the store contents with states loaded from durable
// storage. Called once at startup; loaded rows are not marked dirty.
func (s *MemoryRescueStore) Hydrate(states []*domain.RescueModeState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states = make(map[uuid.UUID]*domain.RescueModeState, len(states))
	for _, state := range states {
		s.states[state.UserID] = state.Clone()
	}
	s.logger.Debug("hydrated rescue states", slog.Int("count", len(states)))
}
