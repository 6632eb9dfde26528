package sqldb

import (
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexibird/lexibird-api/internal/domain"
	"github.com/lexibird/lexibird-api/internal/events"
)

func TestNewSnapshotStore(t *testing.T) {
	t.Parallel()

	t.Run("nil_db_panics", func(t *testing.T) {
		t.Parallel()

		assert.Panics(t, func() {
			NewSnapshotStore(nil, slog.Default())
		})
	})

	t.Run("valid_db_with_logger", func(t *testing.T) {
		t.Parallel()

		s := NewSnapshotStore(&sqlx.DB{}, slog.Default())
		assert.NotNil(t, s)
		assert.NotNil(t, s.db)
		assert.NotNil(t, s.logger)
	})

	t.Run("nil_logger_uses_default", func(t *testing.T) {
		t.Parallel()

		s := NewSnapshotStore(&sqlx.DB{}, nil)
		assert.NotNil(t, s)
		assert.NotNil(t, s.logger)
	})
}

func TestUserRowRoundTrip(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	user := &domain.User{
		ID:        uuid.New(),
		DeviceID:  "device-abc-123",
		CreatedAt: created,
		UpdatedAt: created.Add(time.Hour),
	}

	got := userToRow(user).toDomain()
	assert.Equal(t, user, got)
}

func TestKeywordRowRoundTrip(t *testing.T) {
	t.Parallel()

	keyword, err := domain.NewKeyword(
		"animals",
		"elephant",
		"https://cdn.example.com/elephant.png",
		"https://cdn.example.com/elephant.mp3",
	)
	require.NoError(t, err)

	got := keywordToRow(keyword).toDomain()
	assert.Equal(t, keyword, got)
}

func TestStateRowRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	state := &domain.KeywordSRSState{
		UserID:             uuid.New(),
		KeywordID:          uuid.New(),
		Level:              4,
		Status:             domain.KeywordStatusLearning,
		ConsecutiveCorrect: 1,
		Attempts:           9,
		Correct:            7,
		LastResult:         domain.ReviewResultCorrect,
		LastReviewedAt:     now,
		NextReviewAt:       now.Add(48 * time.Hour),
		CreatedAt:          now.Add(-30 * 24 * time.Hour),
		UpdatedAt:          now,
	}

	got := stateToRow(state).toDomain()
	assert.Equal(t, state, got)
}

func TestItemRowRoundTrip(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	item := &domain.ReviewItem{
		UserID:       uuid.New(),
		KeywordID:    uuid.New(),
		IntervalDays: 6,
		EaseFactor:   2.36,
		ReviewCount:  2,
		NextReviewAt: now.Add(6 * 24 * time.Hour),
		CreatedAt:    now.Add(-7 * 24 * time.Hour),
		UpdatedAt:    now,
	}

	got := itemToRow(item).toDomain()
	assert.Equal(t, item, got)
}

func TestSessionRowRoundTrip(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	items := []domain.SessionItem{
		{
			KeywordID:       uuid.New(),
			Word:            "elephant",
			CorrectImageURL: "https://cdn.example.com/elephant.png",
			AudioURL:        "https://cdn.example.com/elephant.mp3",
			Options: []string{
				"https://cdn.example.com/elephant.png",
				"https://cdn.example.com/giraffe.png",
				"https://cdn.example.com/zebra.png",
			},
			Answered:       true,
			Selection:      "https://cdn.example.com/elephant.png",
			IsCorrect:      true,
			SelfAssessment: domain.SelfAssessmentInstantlyGotIt,
			ResponseTimeMs: 2300,
		},
		{
			KeywordID:       uuid.New(),
			Word:            "giraffe",
			CorrectImageURL: "https://cdn.example.com/giraffe.png",
			Options: []string{
				"https://cdn.example.com/giraffe.png",
				"https://cdn.example.com/elephant.png",
				"https://cdn.example.com/zebra.png",
			},
		},
	}

	t.Run("in_progress_session", func(t *testing.T) {
		t.Parallel()

		session, err := domain.NewReviewSession(userID, items)
		require.NoError(t, err)

		row, err := sessionToRow(session)
		require.NoError(t, err)
		assert.False(t, row.CompletedAt.Valid)

		got, err := row.toDomain()
		require.NoError(t, err)

		// StartedAt passes through the millisecond duration columns untouched;
		// sub-millisecond precision only matters for the durations themselves,
		// which sessions record in whole milliseconds.
		assert.Equal(t, session.ID, got.ID)
		assert.Equal(t, session.UserID, got.UserID)
		assert.Equal(t, session.Items, got.Items)
		assert.Equal(t, session.TargetDuration, got.TargetDuration)
		assert.Equal(t, session.Status, got.Status)
		assert.True(t, session.StartedAt.Equal(got.StartedAt))
		assert.Nil(t, got.CompletedAt)
	})

	t.Run("completed_session", func(t *testing.T) {
		t.Parallel()

		session, err := domain.NewReviewSession(userID, items)
		require.NoError(t, err)

		completedAt := session.StartedAt.Add(37 * time.Second)
		session.Status = domain.SessionStatusCompleted
		session.CompletedAt = &completedAt
		session.ActualDuration = 37 * time.Second
		session.CompletedItems = 2
		session.CorrectAnswers = 1
		session.InstantlyGotIt = 1
		session.Forgot = 1

		row, err := sessionToRow(session)
		require.NoError(t, err)
		assert.True(t, row.CompletedAt.Valid)
		assert.Equal(t, int64(37000), row.ActualDurationMs)

		got, err := row.toDomain()
		require.NoError(t, err)

		assert.Equal(t, domain.SessionStatusCompleted, got.Status)
		require.NotNil(t, got.CompletedAt)
		assert.True(t, completedAt.Equal(*got.CompletedAt))
		assert.Equal(t, 37*time.Second, got.ActualDuration)
		assert.Equal(t, 2, got.CompletedItems)
		assert.Equal(t, 1, got.CorrectAnswers)
		assert.Equal(t, 1, got.InstantlyGotIt)
		assert.Equal(t, 1, got.Forgot)
	})

	t.Run("malformed_items_column", func(t *testing.T) {
		t.Parallel()

		row := sessionRow{ID: uuid.New(), Items: "not json"}
		_, err := row.toDomain()
		assert.Error(t, err)
	})
}

func TestRescueRowRoundTrip(t *testing.T) {
	t.Parallel()

	t.Run("inactive_state", func(t *testing.T) {
		t.Parallel()

		state, err := domain.NewRescueModeState(uuid.New())
		require.NoError(t, err)
		state.ConsecutiveFailures = 2
		state.TotalAttempts = 11
		state.LearningPhase = domain.LearningPhasePronunciation

		row := rescueToRow(state)
		assert.False(t, row.TriggeredAt.Valid)

		got := row.toDomain()
		assert.Equal(t, state, got)
	})

	t.Run("active_state", func(t *testing.T) {
		t.Parallel()

		state, err := domain.NewRescueModeState(uuid.New())
		require.NoError(t, err)
		state.ConsecutiveFailures = 3
		now := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
		require.NoError(t, state.Activate("Tough word! Let's make this round a bit friendlier.", now))

		row := rescueToRow(state)
		assert.True(t, row.TriggeredAt.Valid)

		got := row.toDomain()
		assert.Equal(t, state, got)
	})
}

func TestEventRowRoundTrip(t *testing.T) {
	t.Parallel()

	t.Run("with_payload", func(t *testing.T) {
		t.Parallel()

		event := events.NewEvent(events.EventRescueModeTriggered, uuid.New(), map[string]string{
			"consecutive_failures": "3",
			"learning_phase":       "pronunciation_training",
		})
		event.OccurredAt = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

		row, err := eventToRow(event)
		require.NoError(t, err)

		got, err := row.toDomain()
		require.NoError(t, err)
		assert.Equal(t, event, got)
	})

	t.Run("empty_payload", func(t *testing.T) {
		t.Parallel()

		event := events.NewEvent(events.EventReviewSessionCreated, uuid.New(), nil)
		event.OccurredAt = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

		row, err := eventToRow(event)
		require.NoError(t, err)
		assert.Equal(t, "{}", row.Payload)

		got, err := row.toDomain()
		require.NoError(t, err)
		assert.Equal(t, event, got)
	})

	t.Run("malformed_payload_column", func(t *testing.T) {
		t.Parallel()

		row := eventRow{ID: uuid.New(), Payload: "not json"}
		_, err := row.toDomain()
		assert.Error(t, err)
	})
}

func TestGooseDialect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		driver  string
		want    string
		wantErr bool
	}{
		{driver: DriverSQLite, want: "sqlite3"},
		{driver: DriverPostgres, want: "postgres"},
		{driver: "mysql", wantErr: true},
		{driver: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run("driver_"+tt.driver, func(t *testing.T) {
			t.Parallel()

			got, err := gooseDialect(tt.driver)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	t.Parallel()

	db, err := Open("oracle", "some-dsn")
	assert.Error(t, err)
	assert.Nil(t, db)
}
