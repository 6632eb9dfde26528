package service

import "fmt"

// ServiceError wraps errors from the application services with operation
// context. Consumers differentiate failures with errors.Is/errors.As through
// Unwrap instead of string matching; the API layer maps the wrapped
// sentinels to HTTP status codes.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "create_session",
	// "record_attempt").
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewError creates a new ServiceError for the given operation.
func NewError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
