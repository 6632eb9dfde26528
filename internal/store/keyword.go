package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/lexibird/lexibird-api/internal/domain"
)

// KeywordStore defines the interface for keyword catalog persistence.
// Version: 1.0
type KeywordStore interface {
	// Create saves a new keyword to the store.
	// Returns ErrKeywordExists if a keyword with the same ID already exists.
	// Returns validation errors from the domain Keyword if data is invalid.
	Create(ctx context.Context, keyword *domain.Keyword) error

	// GetByID retrieves a keyword by its unique ID.
	// Returns ErrKeywordNotFound if the keyword does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Keyword, error)

	// ListByTopic retrieves all keywords belonging to the given topic.
	// Returns an empty slice if no keywords match.
	ListByTopic(ctx context.Context, topic string) ([]*domain.Keyword, error)

	// ListAll retrieves every keyword in the catalog.
	ListAll(ctx context.Context) ([]*domain.Keyword, error)
}
