// Package logger_test contains tests for the logger package
package logger_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexibird/lexibird-api/internal/config"
	"github.com/lexibird/lexibird-api/internal/platform/logger"
)

func TestSetupLevels(t *testing.T) {
	// Setup replaces the process default logger; put it back afterwards.
	original := slog.Default()
	defer slog.SetDefault(original)

	tests := []struct {
		name         string
		logLevel     string
		debugEnabled bool
		infoEnabled  bool
		warnEnabled  bool
	}{
		{"debug_level", "debug", true, true, true},
		{"info_level", "info", false, true, true},
		{"warn_level", "warn", false, false, true},
		{"error_level", "error", false, false, false},
		{"mixed_case", "WARN", false, false, true},
		{"invalid_falls_back_to_info", "verbose", false, true, true},
		{"empty_falls_back_to_info", "", false, true, true},
	}

	ctx := context.Background()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := logger.Setup(config.ServerConfig{Port: 8080, LogLevel: tt.logLevel})
			require.NoError(t, err)
			require.NotNil(t, log, "Setup should return the configured logger")

			assert.Equal(t, tt.debugEnabled, log.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tt.infoEnabled, log.Enabled(ctx, slog.LevelInfo))
			assert.Equal(t, tt.warnEnabled, log.Enabled(ctx, slog.LevelWarn))
			assert.True(t, log.Enabled(ctx, slog.LevelError), "error level is always enabled")
		})
	}
}

func TestSetupSetsDefaultLogger(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	log, err := logger.Setup(config.ServerConfig{Port: 8080, LogLevel: "warn"})
	require.NoError(t, err)

	assert.Equal(t, log, slog.Default(), "Setup should install the logger as the process default")
}

func TestFromContextOrDefault(t *testing.T) {
	defaultLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	customLogger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name     string
		ctx      context.Context
		expected *slog.Logger
	}{
		{
			name:     "nil_context_returns_default",
			ctx:      nil,
			expected: defaultLogger,
		},
		{
			name:     "context_without_logger_returns_default",
			ctx:      context.Background(),
			expected: defaultLogger,
		},
		{
			name:     "context_with_logger_returns_context_logger",
			ctx:      logger.WithLogger(context.Background(), customLogger),
			expected: customLogger,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := logger.FromContextOrDefault(tt.ctx, defaultLogger)
			assert.Equal(t, tt.expected, result)
		})
	}

	t.Run("nil_default_falls_back_to_process_default", func(t *testing.T) {
		result := logger.FromContextOrDefault(context.Background(), nil)
		assert.Equal(t, slog.Default(), result)
	})
}

func TestWithLogger(t *testing.T) {
	t.Run("valid_logger", func(t *testing.T) {
		customLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
		ctx := logger.WithLogger(context.Background(), customLogger)

		// Verify the logger was stored in the context
		retrievedLogger := logger.FromContext(ctx)
		assert.Equal(t, customLogger, retrievedLogger)
	})

	t.Run("nil_logger_panics", func(t *testing.T) {
		assert.Panics(t, func() {
			logger.WithLogger(context.Background(), nil)
		})
	})

	t.Run("absent_logger_returns_nil", func(t *testing.T) {
		assert.Nil(t, logger.FromContext(context.Background()))
		assert.Nil(t, logger.FromContext(nil))
	})
}

func TestWithRequestID(t *testing.T) {
	ctx := logger.WithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", logger.RequestIDFromContext(ctx))

	assert.Equal(t, "", logger.RequestIDFromContext(context.Background()))
	assert.Equal(t, "", logger.RequestIDFromContext(nil))
}

func TestGetTestLogger(t *testing.T) {
	log, buffer := logger.GetTestLogger(t)
	require.NotNil(t, log)
	require.NotNil(t, buffer)

	log.Info("test logger message", slog.String("component", "logger_test"))

	output := buffer.String()
	assert.Contains(t, output, "test logger message")

	entries, err := buffer.GetLogEntries()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "logger_test", entries[0]["component"])

	logger.AssertLogContains(t, buffer, "test logger message")
	logger.AssertLogField(t, buffer, "component", "logger_test")

	buffer.Reset()
	assert.Empty(t, buffer.String())
}

func TestCaptureLogs(t *testing.T) {
	output := logger.CaptureLogs(t, func(log *slog.Logger) {
		log.Debug("captured at debug level")
	})

	assert.Contains(t, output, "captured at debug level")
}
