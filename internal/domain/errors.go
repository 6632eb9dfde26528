// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidReviewResult is returned when a review result is not valid.
	ErrInvalidReviewResult = errors.New("invalid review result")

	// ErrInvalidSelfAssessment is returned when a self-assessment value is not valid.
	ErrInvalidSelfAssessment = errors.New("invalid self-assessment")

	// ErrInvalidLearningPhase is returned when a learning phase is not valid.
	ErrInvalidLearningPhase = errors.New("invalid learning phase")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)
