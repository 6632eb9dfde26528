package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	// This is a generic version of the entity-specific not found errors
	// (e.g., ErrUserNotFound, ErrKeywordNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a user with the same device ID).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed is returned when an update operation fails, for example
	// because the entity does not exist or the update violates constraints.
	ErrUpdateFailed = errors.New("update failed")

	// ErrDeleteFailed is returned when a delete operation fails, for example
	// because the entity does not exist or is referenced by other entities.
	ErrDeleteFailed = errors.New("delete failed")

	// ErrTransactionFailed is returned when a database transaction fails
	// to commit or when an operation within a transaction fails.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrUserNotFound indicates that the requested user does not exist in the store.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrKeywordNotFound indicates that the requested keyword does not exist in the store.
	ErrKeywordNotFound = fmt.Errorf("%w: keyword", ErrNotFound)

	// ErrStateNotFound indicates that the requested keyword SRS state does not exist in the store.
	ErrStateNotFound = fmt.Errorf("%w: keyword srs state", ErrNotFound)

	// ErrReviewItemNotFound indicates that the requested review item does not exist in the store.
	ErrReviewItemNotFound = fmt.Errorf("%w: review item", ErrNotFound)

	// ErrSessionNotFound indicates that the requested review session does not exist in the store.
	ErrSessionNotFound = fmt.Errorf("%w: review session", ErrNotFound)

	// ErrRescueStateNotFound indicates that the requested rescue mode state does not exist in the store.
	ErrRescueStateNotFound = fmt.Errorf("%w: rescue mode state", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrDeviceExists indicates that a user with the given device ID already exists.
	// This is returned when attempting to register a device that's already in use.
	ErrDeviceExists = fmt.Errorf("%w: device", ErrDuplicate)

	// ErrKeywordExists indicates that a keyword with the given ID already exists.
	ErrKeywordExists = fmt.Errorf("%w: keyword", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
// This includes the generic ErrNotFound and all entity-specific not found errors.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrKeywordNotFound) ||
		errors.Is(err, ErrStateNotFound) ||
		errors.Is(err, ErrReviewItemNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrRescueStateNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
// This includes the generic ErrDuplicate and all entity-specific duplicate errors.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate) ||
		errors.Is(err, ErrDeviceExists) ||
		errors.Is(err, ErrKeywordExists)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "user", "keyword")
	Operation string // The operation that failed (e.g., "create", "save")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
