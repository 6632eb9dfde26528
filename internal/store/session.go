package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/lexibird/lexibird-api/internal/domain"
)

// SessionStore defines the interface for review session persistence.
type SessionStore interface {
	// Create saves a new review session to the store.
	// Returns ErrDuplicate if a session with the same ID already exists.
	// Returns validation errors from the domain session if data is invalid.
	Create(ctx context.Context, session *domain.ReviewSession) error

	// GetByID retrieves a session by its unique ID.
	// Returns ErrSessionNotFound if the session does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ReviewSession, error)

	// Save replaces an existing session.
	// Returns ErrSessionNotFound if the session does not exist.
	Save(ctx context.Context, session *domain.ReviewSession) error

	// ListByUser retrieves all sessions belonging to the given user.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.ReviewSession, error)

	// ListAll retrieves every stored session. Used by the stale-session
	// reaper, which scans across users.
	ListAll(ctx context.Context) ([]*domain.ReviewSession, error)

	// Delete removes a session from the store by its ID.
	// Returns ErrSessionNotFound if the session does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}
