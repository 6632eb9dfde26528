package sqldb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lexibird/lexibird-api/internal/domain"
	"github.com/lexibird/lexibird-api/internal/events"
)

// Row types mirror the snapshot tables. Domain types stay free of db tags;
// the converters below are the only place the two shapes meet.

type userRow struct {
	ID        uuid.UUID `db:"id"`
	DeviceID  string    `db:"device_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func userToRow(user *domain.User) userRow {
	return userRow{
		ID:        user.ID,
		DeviceID:  user.DeviceID,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func (r userRow) toDomain() *domain.User {
	return &domain.User{
		ID:        r.ID,
		DeviceID:  r.DeviceID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type keywordRow struct {
	ID        uuid.UUID `db:"id"`
	Topic     string    `db:"topic"`
	Word      string    `db:"word"`
	ImageURL  string    `db:"image_url"`
	AudioURL  string    `db:"audio_url"`
	CreatedAt time.Time `db:"created_at"`
}

func keywordToRow(keyword *domain.Keyword) keywordRow {
	return keywordRow{
		ID:        keyword.ID,
		Topic:     keyword.Topic,
		Word:      keyword.Word,
		ImageURL:  keyword.ImageURL,
		AudioURL:  keyword.AudioURL,
		CreatedAt: keyword.CreatedAt,
	}
}

func (r keywordRow) toDomain() *domain.Keyword {
	return &domain.Keyword{
		ID:        r.ID,
		Topic:     r.Topic,
		Word:      r.Word,
		ImageURL:  r.ImageURL,
		AudioURL:  r.AudioURL,
		CreatedAt: r.CreatedAt,
	}
}

type stateRow struct {
	UserID             uuid.UUID `db:"user_id"`
	KeywordID          uuid.UUID `db:"keyword_id"`
	Level              int       `db:"level"`
	Status             string    `db:"status"`
	ConsecutiveCorrect int       `db:"consecutive_correct"`
	Attempts           int       `db:"attempts"`
	Correct            int       `db:"correct"`
	LastResult         string    `db:"last_result"`
	LastReviewedAt     time.Time `db:"last_reviewed_at"`
	NextReviewAt       time.Time `db:"next_review_at"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

func stateToRow(state *domain.KeywordSRSState) stateRow {
	return stateRow{
		UserID:             state.UserID,
		KeywordID:          state.KeywordID,
		Level:              state.Level,
		Status:             string(state.Status),
		ConsecutiveCorrect: state.ConsecutiveCorrect,
		Attempts:           state.Attempts,
		Correct:            state.Correct,
		LastResult:         string(state.LastResult),
		LastReviewedAt:     state.LastReviewedAt,
		NextReviewAt:       state.NextReviewAt,
		CreatedAt:          state.CreatedAt,
		UpdatedAt:          state.UpdatedAt,
	}
}

func (r stateRow) toDomain() *domain.KeywordSRSState {
	return &domain.KeywordSRSState{
		UserID:             r.UserID,
		KeywordID:          r.KeywordID,
		Level:              r.Level,
		Status:             domain.KeywordStatus(r.Status),
		ConsecutiveCorrect: r.ConsecutiveCorrect,
		Attempts:           r.Attempts,
		Correct:            r.Correct,
		LastResult:         domain.ReviewResult(r.LastResult),
		LastReviewedAt:     r.LastReviewedAt,
		NextReviewAt:       r.NextReviewAt,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

type itemRow struct {
	UserID       uuid.UUID `db:"user_id"`
	KeywordID    uuid.UUID `db:"keyword_id"`
	IntervalDays int       `db:"interval_days"`
	EaseFactor   float64   `db:"ease_factor"`
	ReviewCount  int       `db:"review_count"`
	NextReviewAt time.Time `db:"next_review_at"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func itemToRow(item *domain.ReviewItem) itemRow {
	return itemRow{
		UserID:       item.UserID,
		KeywordID:    item.KeywordID,
		IntervalDays: item.IntervalDays,
		EaseFactor:   item.EaseFactor,
		ReviewCount:  item.ReviewCount,
		NextReviewAt: item.NextReviewAt,
		CreatedAt:    item.CreatedAt,
		UpdatedAt:    item.UpdatedAt,
	}
}

func (r itemRow) toDomain() *domain.ReviewItem {
	return &domain.ReviewItem{
		UserID:       r.UserID,
		KeywordID:    r.KeywordID,
		IntervalDays: r.IntervalDays,
		EaseFactor:   r.EaseFactor,
		ReviewCount:  r.ReviewCount,
		NextReviewAt: r.NextReviewAt,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type sessionRow struct {
	ID               uuid.UUID    `db:"id"`
	UserID           uuid.UUID    `db:"user_id"`
	Items            string       `db:"items"`
	CurrentItemIndex int          `db:"current_item_index"`
	CompletedItems   int          `db:"completed_items"`
	CorrectAnswers   int          `db:"correct_answers"`
	InstantlyGotIt   int          `db:"instantly_got_it"`
	HadToThink       int          `db:"had_to_think"`
	Forgot           int          `db:"forgot"`
	TargetDurationMs int64        `db:"target_duration_ms"`
	Status           string       `db:"status"`
	StartedAt        time.Time    `db:"started_at"`
	CompletedAt      sql.NullTime `db:"completed_at"`
	ActualDurationMs int64        `db:"actual_duration_ms"`
}

func sessionToRow(session *domain.ReviewSession) (sessionRow, error) {
	items, err := json.Marshal(session.Items)
	if err != nil {
		return sessionRow{}, fmt.Errorf("failed to encode session items: %w", err)
	}

	row := sessionRow{
		ID:               session.ID,
		UserID:           session.UserID,
		Items:            string(items),
		CurrentItemIndex: session.CurrentItemIndex,
		CompletedItems:   session.CompletedItems,
		CorrectAnswers:   session.CorrectAnswers,
		InstantlyGotIt:   session.InstantlyGotIt,
		HadToThink:       session.HadToThink,
		Forgot:           session.Forgot,
		TargetDurationMs: session.TargetDuration.Milliseconds(),
		Status:           string(session.Status),
		StartedAt:        session.StartedAt,
		ActualDurationMs: session.ActualDuration.Milliseconds(),
	}
	if session.CompletedAt != nil {
		row.CompletedAt = sql.NullTime{Time: *session.CompletedAt, Valid: true}
	}
	return row, nil
}

func (r sessionRow) toDomain() (*domain.ReviewSession, error) {
	var items []domain.SessionItem
	if err := json.Unmarshal([]byte(r.Items), &items); err != nil {
		return nil, fmt.Errorf("failed to decode session items: %w", err)
	}

	session := &domain.ReviewSession{
		ID:               r.ID,
		UserID:           r.UserID,
		Items:            items,
		CurrentItemIndex: r.CurrentItemIndex,
		CompletedItems:   r.CompletedItems,
		CorrectAnswers:   r.CorrectAnswers,
		InstantlyGotIt:   r.InstantlyGotIt,
		HadToThink:       r.HadToThink,
		Forgot:           r.Forgot,
		TargetDuration:   time.Duration(r.TargetDurationMs) * time.Millisecond,
		Status:           domain.SessionStatus(r.Status),
		StartedAt:        r.StartedAt,
		ActualDuration:   time.Duration(r.ActualDurationMs) * time.Millisecond,
	}
	if r.CompletedAt.Valid {
		completedAt := r.CompletedAt.Time
		session.CompletedAt = &completedAt
	}
	return session, nil
}

type rescueRow struct {
	UserID              uuid.UUID    `db:"user_id"`
	IsActive            bool         `db:"is_active"`
	ConsecutiveFailures int          `db:"consecutive_failures"`
	TotalAttempts       int          `db:"total_attempts"`
	TriggeredAt         sql.NullTime `db:"triggered_at"`
	SupportiveMessage   string       `db:"supportive_message"`
	LearningPhase       string       `db:"learning_phase"`
	CreatedAt           time.Time    `db:"created_at"`
	UpdatedAt           time.Time    `db:"updated_at"`
}

func rescueToRow(state *domain.RescueModeState) rescueRow {
	row := rescueRow{
		UserID:              state.UserID,
		IsActive:            state.IsActive,
		ConsecutiveFailures: state.ConsecutiveFailures,
		TotalAttempts:       state.TotalAttempts,
		SupportiveMessage:   state.SupportiveMessage,
		LearningPhase:       string(state.LearningPhase),
		CreatedAt:           state.CreatedAt,
		UpdatedAt:           state.UpdatedAt,
	}
	if state.TriggeredAt != nil {
		row.TriggeredAt = sql.NullTime{Time: *state.TriggeredAt, Valid: true}
	}
	return row
}

func (r rescueRow) toDomain() *domain.RescueModeState {
	state := &domain.RescueModeState{
		UserID:              r.UserID,
		IsActive:            r.IsActive,
		ConsecutiveFailures: r.ConsecutiveFailures,
		TotalAttempts:       r.TotalAttempts,
		SupportiveMessage:   r.SupportiveMessage,
		LearningPhase:       domain.LearningPhase(r.LearningPhase),
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
	if r.TriggeredAt.Valid {
		triggeredAt := r.TriggeredAt.Time
		state.TriggeredAt = &triggeredAt
	}
	return state
}

type eventRow struct {
	ID         uuid.UUID `db:"id"`
	UserID     uuid.UUID `db:"user_id"`
	Type       string    `db:"type"`
	Payload    string    `db:"payload"`
	OccurredAt time.Time `db:"occurred_at"`
}

func eventToRow(event events.Event) (eventRow, error) {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return eventRow{}, fmt.Errorf("failed to encode event payload: %w", err)
	}

	return eventRow{
		ID:         event.ID,
		UserID:     event.UserID,
		Type:       string(event.Type),
		Payload:    string(payload),
		OccurredAt: event.OccurredAt,
	}, nil
}

func (r eventRow) toDomain() (events.Event, error) {
	var payload map[string]string
	if err := json.Unmarshal([]byte(r.Payload), &payload); err != nil {
		return events.Event{}, fmt.Errorf("failed to decode event payload: %w", err)
	}

	return events.Event{
		ID:         r.ID,
		UserID:     r.UserID,
		Type:       events.EventType(r.Type),
		Payload:    payload,
		OccurredAt: r.OccurredAt,
	}, nil
}
