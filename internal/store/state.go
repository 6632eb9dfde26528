package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lexibird/lexibird-api/internal/domain"
)

// StateStore defines the interface for keyword SRS state persistence.
// Each state tracks one user's mastery progress for one keyword.
type StateStore interface {
	// Get retrieves the SRS state for the given user and keyword.
	// Returns ErrStateNotFound if no state has been recorded.
	Get(ctx context.Context, userID, keywordID uuid.UUID) (*domain.KeywordSRSState, error)

	// Save inserts or replaces the SRS state for its user and keyword.
	// Returns validation errors from the domain state if data is invalid.
	Save(ctx context.Context, state *domain.KeywordSRSState) error

	// ListByUser retrieves all SRS states belonging to the given user.
	// Returns an empty slice if the user has no recorded states.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.KeywordSRSState, error)

	// ListDue retrieves the user's states that are due for review at the
	// given time: states past not_started whose NextReviewAt is not after
	// now. Results are ordered by NextReviewAt ascending, with keyword ID
	// as the tie-break.
	ListDue(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.KeywordSRSState, error)
}
