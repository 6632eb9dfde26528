package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/lexibird/lexibird-api/internal/domain"
)

// RescueStore defines the interface for rescue mode state persistence.
// There is at most one rescue state per user.
type RescueStore interface {
	// Get retrieves the rescue mode state for the given user.
	// Returns ErrRescueStateNotFound if the user has no recorded state.
	Get(ctx context.Context, userID uuid.UUID) (*domain.RescueModeState, error)

	// Save inserts or replaces the rescue mode state for its user.
	// Returns validation errors from the domain state if data is invalid.
	Save(ctx context.Context, state *domain.RescueModeState) error
}
