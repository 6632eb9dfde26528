package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/lexibird/lexibird-api/internal/domain"
)

// ReviewItemStore defines the interface for review item persistence.
// A review item carries the SM-2 schedule for one user and keyword.
type ReviewItemStore interface {
	// Get retrieves the review item for the given user and keyword.
	// Returns ErrReviewItemNotFound if no item has been recorded.
	Get(ctx context.Context, userID, keywordID uuid.UUID) (*domain.ReviewItem, error)

	// Save inserts or replaces the review item for its user and keyword.
	// Returns validation errors from the domain item if data is invalid.
	Save(ctx context.Context, item *domain.ReviewItem) error

	// ListByUser retrieves all review items belonging to the given user.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ReviewItem, error)
}
