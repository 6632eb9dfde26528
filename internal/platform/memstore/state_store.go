package memstore

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lexibird/lexibird-api/internal/domain"
	"github.com/lexibird/lexibird-api/internal/platform/logger"
	"github.com/lexibird/lexibird-api/internal/store"
)

// MemoryStateStore implements the store.StateStore interface with nested
// in-memory maps (user ID, then keyword ID) as the storage backend.
type MemoryStateStore struct {
	mu       sync.RWMutex
	states   map[uuid.UUID]map[uuid.UUID]*domain.KeywordSRSState
	notifier Notifier
	logger   *slog.Logger
}

// NewMemoryStateStore creates a new in-memory implementation of the
// StateStore interface. A nil notifier disables persister marks; a nil
// logger falls back to the default logger.
func NewMemoryStateStore(notifier Notifier, logger *slog.Logger) *MemoryStateStore {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryStateStore{
		states:   make(map[uuid.UUID]map[uuid.UUID]*domain.KeywordSRSState),
		notifier: notifier,
		logger:   logger.With(slog.String("component", "memory_state_store")),
	}
}

// Ensure MemoryStateStore implements store.StateStore interface
var _ store.StateStore = (*MemoryStateStore)(nil)

// Get implements store.StateStore.Get
func (s *MemoryStateStore) Get(ctx context.Context, userID, keywordID uuid.UUID) (*domain.KeywordSRSState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[userID][keywordID]
	if !ok {
		return nil, store.ErrStateNotFound
	}
	copied := *state
	return &copied, nil
}

// Save implements store.StateStore.Save
func (s *MemoryStateStore) Save(ctx context.Context, state *domain.KeywordSRSState) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := state.Validate(); err != nil {
		log.Warn("srs state validation failed during save",
			slog.String("error", err.Error()),
			slog.String("user_id", state.UserID.String()),
			slog.String("keyword_id", state.KeywordID.String()))
		return err
	}

	s.mu.Lock()
	byKeyword, ok := s.states[state.UserID]
	if !ok {
		byKeyword = make(map[uuid.UUID]*domain.KeywordSRSState)
		s.states[state.UserID] = byKeyword
	}
	copied := *state
	byKeyword[copied.KeywordID] = &copied
	s.mu.Unlock()

	s.notifier.MarkDirty(CollectionStates, state.UserID)
	return nil
}

// ListByUser implements store.StateStore.ListByUser
func (s *MemoryStateStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.KeywordSRSState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	states := make([]*domain.KeywordSRSState, 0, len(s.states[userID]))
	for _, state := range s.states[userID] {
		copied := *state
		states = append(states, &copied)
	}
	sortStatesByKeyword(states)
	return states, nil
}

// ListDue implements store.StateStore.ListDue
func (s *MemoryStateStore) ListDue(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.KeywordSRSState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	states := make([]*domain.KeywordSRSState, 0)
	for _, state := range s.states[userID] {
		if state.IsDue(now) {
			copied := *state
			states = append(states, &copied)
		}
	}
	sortStatesByDue(states)
	return states, nil
}

// Hydrate replaces the store contents with states loaded from durable
// storage. Called once at startup; loaded rows are not marked dirty.
func (s *MemoryStateStore) Hydrate(states []*domain.KeywordSRSState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states = make(map[uuid.UUID]map[uuid.UUID]*domain.KeywordSRSState)
	for _, state := range states {
		byKeyword, ok := s.states[state.UserID]
		if !ok {
			byKeyword = make(map[uuid.UUID]*domain.KeywordSRSState)
			s.states[state.UserID] = byKeyword
		}
		copied := *state
		byKeyword[copied.KeywordID] = &copied
	}
	s.logger.Debug("hydrated keyword srs states", slog.Int("count", len(states)))
}
