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

// MemoryKeywordStore implements the store.KeywordStore interface with an
// in-memory map as the storage backend. The keyword catalog is global, so
// mutations are marked dirty under uuid.Nil.
type MemoryKeywordStore struct {
	mu       sync.RWMutex
	keywords map[uuid.UUID]*domain.Keyword
	notifier Notifier
	logger   *slog.Logger
}

// NewMemoryKeywordStore creates a new in-memory implementation of the
// KeywordStore interface. A nil notifier disables persister marks; a nil
// logger falls back to the default logger.
func NewMemoryKeywordStore(notifier Notifier, logger *slog.Logger) *MemoryKeywordStore {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryKeywordStore{
		keywords: make(map[uuid.UUID]*domain.Keyword),
		notifier: notifier,
		logger:   logger.With(slog.String("component", "memory_keyword_store")),
	}
}

// Ensure MemoryKeywordStore implements store.KeywordStore interface
var _ store.KeywordStore = (*MemoryKeywordStore)(nil)

// Create implements store.KeywordStore.Create
func (s *MemoryKeywordStore) Create(ctx context.Context, keyword *domain.Keyword) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := keyword.Validate(); err != nil {
		log.Warn("keyword validation failed during create",
			slog.String("error", err.Error()),
			slog.String("keyword_id", keyword.ID.String()))
		return err
	}

	s.mu.Lock()
	if _, exists := s.keywords[keyword.ID]; exists {
		s.mu.Unlock()
		log.Debug("keyword already exists", slog.String("keyword_id", keyword.ID.String()))
		return store.ErrKeywordExists
	}
	copied := *keyword
	s.keywords[copied.ID] = &copied
	s.mu.Unlock()

	s.notifier.MarkDirty(CollectionKeywords, uuid.Nil)

	log.Debug("keyword created",
		slog.String("keyword_id", keyword.ID.String()),
		slog.String("topic", keyword.Topic))
	return nil
}

// GetByID implements store.KeywordStore.GetByID
func (s *MemoryKeywordStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Keyword, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keyword, ok := s.keywords[id]
	if !ok {
		return nil, store.ErrKeywordNotFound
	}
	copied := *keyword
	return &copied, nil
}

// ListByTopic implements store.KeywordStore.ListByTopic
func (s *MemoryKeywordStore) ListByTopic(ctx context.Context, topic string) ([]*domain.Keyword, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keywords := make([]*domain.Keyword, 0)
	for _, keyword := range s.keywords {
		if keyword.Topic == topic {
			copied := *keyword
			keywords = append(keywords, &copied)
		}
	}
	sortKeywords(keywords)
	return keywords, nil
}

// ListAll implements store.KeywordStore.ListAll
func (s *MemoryKeywordStore) ListAll(ctx context.Context) ([]*domain.Keyword, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keywords := make([]*domain.Keyword, 0, len(s.keywords))
	for _, keyword := range s.keywords {
		copied := *keyword
		keywords = append(keywords, &copied)
	}
	sortKeywords(keywords)
	return keywords, nil
}

// Hydrate replaces the store contents with keywords loaded from durable
// storage. Called once at startup; loaded rows are not marked dirty.
func (s *MemoryKeywordStore) Hydrate(keywords []*domain.Keyword) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keywords = make(map[uuid.UUID]*domain.Keyword, len(keywords))
	for _, keyword := range keywords {
		copied := *keyword
		s.keywords[copied.ID] = &copied
	}
	s.logger.Debug("hydrated keywords", slog.Int("count", len(keywords)))
}
