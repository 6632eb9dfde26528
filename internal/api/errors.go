package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/lexibird/lexibird-api/internal/api/shared"
	"github.com/lexibird/lexibird-api/internal/domain"
	"github.com/lexibird/lexibird-api/internal/domain/srs"
	"github.com/lexibird/lexibird-api/internal/service/auth"
	"github.com/lexibird/lexibird-api/internal/service/review"
	"github.com/lexibird/lexibird-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Not found errors
	case store.IsNotFoundError(err):
		return http.StatusNotFound

	// Conflict errors
	case store.IsDuplicateError(err):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, srs.ErrInvalidResult),
		errors.Is(err, srs.ErrInvalidAssessment),
		errors.Is(err, domain.ErrInvalidReviewResult),
		errors.Is(err, domain.ErrInvalidSelfAssessment),
		errors.Is(err, domain.ErrInvalidLearningPhase),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest

	// An empty due queue is not a failure of the request itself
	case errors.Is(err, review.ErrNoDueKeywords):
		return http.StatusUnprocessableEntity

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid token"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Operation not permitted"

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrKeywordNotFound):
		return "Keyword not found"

	case errors.Is(err, store.ErrSessionNotFound):
		return "Session not found"

	case errors.Is(err, store.ErrStateNotFound),
		errors.Is(err, store.ErrReviewItemNotFound):
		return "Review record not found"

	case errors.Is(err, store.ErrRescueStateNotFound):
		return "Rescue state not found"

	// Conflict errors
	case errors.Is(err, store.ErrDeviceExists):
		return "Device already registered"

	case errors.Is(err, store.ErrKeywordExists):
		return "Keyword already exists"

	// Bad request errors
	case errors.Is(err, srs.ErrInvalidResult),
		errors.Is(err, domain.ErrInvalidReviewResult):
		return "Invalid review result"

	case errors.Is(err, srs.ErrInvalidAssessment),
		errors.Is(err, domain.ErrInvalidSelfAssessment):
		return "Invalid self-assessment"

	case errors.Is(err, domain.ErrInvalidLearningPhase):
		return "Invalid learning phase"

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation):
		return "Invalid entity data"

	case errors.Is(err, domain.ErrInvalidID):
		return "Invalid ID format"

	case errors.Is(err, review.ErrNoDueKeywords):
		return "No keywords due for review"

	default:
		return "An unexpected error occurred"
	}
}

// RespondWithServiceError maps the error to a status code and safe message,
// logs the redacted details, and writes the sanitized JSON error response.
func RespondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := MapErrorToStatusCode(err)
	shared.RespondWithErrorAndLog(w, r, status, GetSafeErrorMessage(err), err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example format: "Key: 'RegisterRequest.DeviceID' Error:Field validation for 'DeviceID' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "url":
		return "invalid URL format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "gte":
		return "too small"
	case "lte":
		return "too large"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
