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

// MemorySessionStore implements the store.SessionStore interface with an
// in-memory map keyed by session ID as the storage backend.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*domain.ReviewSession
	notifier Notifier
	logger   *slog.Logger
}

// NewMemorySessionStore creates a new in-memory implementation of the
// SessionStore interface. A nil notifier disables persister marks; a nil
// logger falls back to the default logger.
func NewMemorySessionStore(notifier Notifier, logger *slog.Logger) *MemorySessionStore {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MemorySessionStore{
		sessions: make(map[uuid.UUID]*domain.ReviewSession),
		notifier: notifier,
		logger:   logger.With(slog.String("component", "memory_session_store")),
	}
}

// Ensure MemorySessionStore implements store.SessionStore interface
var _ store.SessionStore = (*MemorySessionStore)(nil)

// Create implements store.SessionStore.Create
func (s *MemorySessionStore) Create(ctx context.Context, session *domain.ReviewSession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		log.Warn("session validation failed during create",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return err
	}

	s.mu.Lock()
	if _, exists := s.sessions[session.ID]; exists {
		s.mu.Unlock()
		return store.ErrDuplicate
	}
	s.sessions[session.ID] = session.Clone()
	s.mu.Unlock()

	s.notifier.MarkDirty(CollectionSessions, session.UserID)

	log.Debug("session created",
		slog.String("session_id", session.ID.String()),
		slog.String("user_id", session.UserID.String()),
		slog.Int("item_count", len(session.Items)))
	return nil
}

// GetByID implements store.SessionStore.GetByID
func (s *MemorySessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReviewSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, store.ErrSessionNotFound
	}
	return session.Clone(), nil
}

// Save implements store.SessionStore.Save
func (s *MemorySessionStore) Save(ctx context.Context, session *domain.ReviewSession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		log.Warn("session validation failed during save",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return err
	}

	s.mu.Lock()
	if _, exists := s.sessions[session.ID]; !exists {
		s.mu.Unlock()
		return store.ErrSessionNotFound
	}
	s.sessions[session.ID] = session.Clone()
	s.mu.Unlock()

	s.notifier.MarkDirty(CollectionSessions, session.UserID)
	return nil
}

// ListByUser implements store.SessionStore.ListByUser
func (s *MemorySessionStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ReviewSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*domain.ReviewSession, 0)
	for _, session := range s.sessions {
		if session.UserID == userID {
			sessions = append(sessions, session.Clone())
		}
	}
	sortSessionsByStart(sessions)
	return sessions, nil
}

// ListAll implements store.SessionStore.ListAll
func (s *MemorySessionStore) ListAll(ctx context.Context) ([]*domain.ReviewSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*domain.ReviewSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session.Clone())
	}
	sortSessionsByStart(sessions)
	return sessions, nil
}

// Delete implements store.SessionStore.Delete
func (s *MemorySessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	session, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return store.ErrSessionNotFound
	}
	userID := session.UserID
	delete(s.sessions, id)
	s.mu.Unlock()

	s.notifier.MarkDirty(CollectionSessions, userID)

	s.logger.Debug("session deleted",
		slog.String("session_id", id.String()),
		slog.String("user_id", userID.String()))
	return nil
}

// Hydrate replaces the store contents with sessions loaded from durable
// storage. Called once at startup; loaded rows are not marked dirty.
func (s *MemorySessionStore) Hydrate(sessions []*domain.ReviewSession) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = make(map[uuid.UUID]*domain.ReviewSession, len(sessions))
	for _, session := range sessions {
		s.sessions[session.ID] = session.Clone()
	}
	s.logger.Debug("hydrated review sessions", slog.Int("count", len(sessions)))
}
