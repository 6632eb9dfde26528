package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lexibird/lexibird-api/internal/store"
)

func TestServiceError_Error(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		message  string
		err      error
		expected string
	}{
		{
			name:     "with underlying error",
			op:       "create_session",
			message:  "failed to save session",
			err:      errors.New("database connection failed"),
			expected: "create_session operation failed: failed to save session: database connection failed",
		},
		{
			name:     "without underlying error",
			op:       "record_attempt",
			message:  "failed to save state",
			err:      nil,
			expected: "record_attempt operation failed: failed to save state",
		},
		{
			name:     "with sentinel error",
			op:       "get_session",
			message:  "failed to get session",
			err:      store.ErrSessionNotFound,
			expected: "get_session operation failed: failed to get session: entity not found: review session",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svcErr := NewError(tc.op, tc.message, tc.err)
			assert.Equal(t, tc.expected, svcErr.Error())
		})
	}
}

func TestServiceError_Unwrap(t *testing.T) {
	t.Run("exposes the wrapped error", func(t *testing.T) {
		underlying := store.ErrKeywordNotFound
		svcErr := NewError("enroll_keyword", "failed to get keyword", underlying)

		assert.ErrorIs(t, svcErr, store.ErrKeywordNotFound)
		assert.ErrorIs(t, svcErr, store.ErrNotFound)
	})

	t.Run("nil wrapped error", func(t *testing.T) {
		svcErr := NewError("exit_rescue", "failed to deactivate", nil)
		assert.Nil(t, errors.Unwrap(svcErr))
	})

	t.Run("errors.As finds the service error", func(t *testing.T) {
		var svcErr *ServiceError
		wrapped := error(NewError("record_failure", "failed to save rescue state", errors.New("disk full")))

		assert.True(t, errors.As(wrapped, &svcErr))
		assert.Equal(t, "record_failure", svcErr.Operation)
	})
}
