package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MinEaseFactor is the floor the SM-2 algorithm never lets an ease factor cross.
const MinEaseFactor = 1.3

// Common validation errors for ReviewItem
var (
	ErrEmptyItemUserID    = errors.New("review item user ID cannot be empty")
	ErrEmptyItemKeywordID = errors.New("review item keyword ID cannot be empty")
	ErrNegativeInterval   = errors.New("interval must be greater than or equal to 0")
	ErrEaseFactorTooLow   = errors.New("ease factor must be at least 1.3")
)

// ReviewItem holds the SM-2 scheduling state for a user and keyword.
// It is mutated only through review-session answers, never by the ongoing
// mastery tracking, and is deliberately distinct numeric state from
// KeywordSRSState even though both describe how soon to review a keyword.
type ReviewItem struct {
	UserID       uuid.UUID `json:"user_id"`
	KeywordID    uuid.UUID `json:"keyword_id"`
	IntervalDays int       `json:"interval_days"`
	EaseFactor   float64   `json:"ease_factor"`
	ReviewCount  int       `json:"review_count"`
	NextReviewAt time.Time `json:"next_review_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewReviewItem creates SM-2 state for a user and keyword with default values.
// New items start with the standard 2.5 ease factor and are due immediately.
func NewReviewItem(userID, keywordID uuid.UUID) (*ReviewItem, error) {
	now := time.Now().UTC()
	item := &ReviewItem{
		UserID:       userID,
		KeywordID:    keywordID,
		IntervalDays: 0,
		EaseFactor:   2.5,
		ReviewCount:  0,
		NextReviewAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := item.Validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Validate checks if the ReviewItem has valid data.
// Returns an error if any field fails validation.
func (i *ReviewItem) Validate() error {
	if i.UserID == uuid.Nil {
		return ErrEmptyItemUserID
	}

	if i.KeywordID == uuid.Nil {
		return ErrEmptyItemKeywordID
	}

	if i.IntervalDays < 0 {
		return ErrNegativeInterval
	}

	if i.EaseFactor < MinEaseFactor {
		return ErrEaseFactorTooLow
	}

	return nil
}
