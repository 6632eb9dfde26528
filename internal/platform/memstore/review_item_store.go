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

// MemoryReviewItemStore implements the store.ReviewItemStore interface with
// nested in-memory maps (user ID, then keyword ID) as the storage backend.
type MemoryReviewItemStore struct {
	mu       sync.RWMutex
	items    map[uuid.UUID]map[uuid.UUID]*domain.ReviewItem
	notifier Notifier
	logger   *slog.Logger
}

// NewMemoryReviewItemStore creates a new in-memory implementation of the
// ReviewItemStore interface. A nil notifier disables persister marks; a nil
// logger falls back to the default logger.
func NewMemoryReviewItemStore(notifier Notifier, logger *slog.Logger) *MemoryReviewItemStore {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryReviewItemStore{
		items:    make(map[uuid.UUID]map[uuid.UUID]*domain.ReviewItem),
		notifier: notifier,
		logger:   logger.With(slog.String("component", "memory_review_item_store")),
	}
}

// Ensure MemoryReviewItemStore implements store.ReviewItemStore interface
var _ store.ReviewItemStore = (*MemoryReviewItemStore)(nil)

// Get implements store.ReviewItemStore.Get
func (s *MemoryReviewItemStore) Get(ctx context.Context, userID, keywordID uuid.UUID) (*domain.ReviewItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[userID][keywordID]
	if !ok {
		return nil, store.ErrReviewItemNotFound
	}
	copied := *item
	return &copied, nil
}

// Save implements store.ReviewItemStore.Save
func (s *MemoryReviewItemStore) Save(ctx context.Context, item *domain.ReviewItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := item.Validate(); err != nil {
		log.Warn("review item validation failed during save",
			slog.String("error", err.Error()),
			slog.String("user_id", item.UserID.String()),
			slog.String("keyword_id", item.KeywordID.String()))
		return err
	}

	s.mu.Lock()
	byKeyword, ok := s.items[item.UserID]
	if !ok {
		byKeyword = make(map[uuid.UUID]*domain.ReviewItem)
		s.items[item.UserID] = byKeyword
	}
	copied := *item
	byKeyword[copied.KeywordID] = &copied
	s.mu.Unlock()

	s.notifier.MarkDirty(CollectionItems, item.UserID)
	return nil
}

// ListByUser implements store.ReviewItemStore.ListByUser
func (s *MemoryReviewItemStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ReviewItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]*domain.ReviewItem, 0, len(s.items[userID]))
	for _, item := range s.items[userID] {
		copied := *item
		items = append(items, &copied)
	}
	sortItemsByKeyword(items)
	return items, nil
}

// Hydrate replaces the store contents with items loaded from durable
// storage. Called once at startup; loaded rows are not marked dirty.
func (s *MemoryReviewItemStore) Hydrate(items []*domain.ReviewItem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[uuid.UUID]map[uuid.UUID]*domain.ReviewItem)
	for _, item := range items {
		byKeyword, ok := s.items[item.UserID]
		if !ok {
			byKeyword = make(map[uuid.UUID]*domain.ReviewItem)
			s.items[item.UserID] = byKeyword
		}
		copied := *item
		byKeyword[copied.KeywordID] = &copied
	}
	s.logger.Debug("hydrated review items", slog.Int("count", len(items)))
}
