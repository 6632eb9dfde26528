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

// MemoryUserStore implements the store.UserStore interface with in-memory
// maps as the storage backend.
type MemoryUserStore struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]*domain.User
	byDevice map[string]uuid.UUID
	notifier Notifier
	logger   *slog.Logger
}

// NewMemoryUserStore creates a new in-memory implementation of the UserStore
// interface. A nil notifier disables persister marks; a nil logger falls
// back to the default logger.
func NewMemoryUserStore(notifier Notifier, logger *slog.Logger) *MemoryUserStore {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryUserStore{
		users:    make(map[uuid.UUID]*domain.User),
		byDevice: make(map[string]uuid.UUID),
		notifier: notifier,
		logger:   logger.With(slog.String("component", "memory_user_store")),
	}
}

// Ensure MemoryUserStore implements store.UserStore interface
var _ store.UserStore = (*MemoryUserStore)(nil)

// Create implements store.UserStore.Create
func (s *MemoryUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return err
	}

	s.mu.Lock()
	if _, exists := s.byDevice[user.DeviceID]; exists {
		s.mu.Unlock()
		log.Debug("device already registered")
		return store.ErrDeviceExists
	}
	if _, exists := s.users[user.ID]; exists {
		s.mu.Unlock()
		return store.ErrDuplicate
	}
	copied := *user
	s.users[copied.ID] = &copied
	s.byDevice[copied.DeviceID] = copied.ID
	s.mu.Unlock()

	s.notifier.MarkDirty(CollectionUsers, user.ID)

	log.Debug("user created", slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID
func (s *MemoryUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

// GetByDeviceID implements store.UserStore.GetByDeviceID
func (s *MemoryUserStore) GetByDeviceID(ctx context.Context, deviceID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byDevice[deviceID]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *s.users[id]
	return &copied, nil
}

// ListAll returns every registered user. The persister snapshots users
// through this method.
func (s *MemoryUserStore) ListAll(ctx context.Context) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*domain.User, 0, len(s.users))
	for _, user := range s.users {
		copied := *user
		users = append(users, &copied)
	}
	sortUsers(users)
	return users, nil
}

// Hydrate replaces the store contents with users loaded from durable
// storage. Called once at startup, before the store serves traffic; loaded
// rows are not marked dirty.
func (s *MemoryUserStore) Hydrate(users []*domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make(map[uuid.UUID]*domain.User, len(users))
	s.byDevice = make(map[string]uuid.UUID, len(users))
	for _, user := range users {
		copied := *user
		s.users[copied.ID] = &copied
		s.byDevice[copied.DeviceID] = copied.ID
	}
	s.logger.Debug("hydrated users", slog.Int("count", len(users)))
}
