package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/lexibird/lexibird-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store.
	// Returns ErrDeviceExists if the device ID is already registered.
	// Returns validation errors from the domain User if data is invalid.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByDeviceID retrieves a user by their registered device ID.
	// Returns ErrUserNotFound if no user has registered the device.
	GetByDeviceID(ctx context.Context, deviceID string) (*domain.User, error)

	// ListAll retrieves every registered user. Used by the ranking job,
	// which aggregates across users.
	ListAll(ctx context.Context) ([]*domain.User, error)
}
