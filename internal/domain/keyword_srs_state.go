package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ReviewResult represents the outcome of a single keyword attempt.
type ReviewResult string

// Possible review result values
const (
	ReviewResultCorrect   ReviewResult = "correct"
	ReviewResultIncorrect ReviewResult = "incorrect"
	ReviewResultPartial   ReviewResult = "partial"
)

// KeywordStatus represents how far a user has taken a keyword.
type KeywordStatus string

// Possible keyword status values. Keywords with StatusNotStarted are
// excluded from due queries until the first attempt moves them to learning.
const (
	KeywordStatusNotStarted KeywordStatus = "not_started"
	KeywordStatusLearning   KeywordStatus = "learning"
	KeywordStatusMastered   KeywordStatus = "mastered"
)

// Level bounds for the level-table scheduling algorithm.
const (
	MinSRSLevel = 0
	MaxSRSLevel = 8
)

// Common validation errors for KeywordSRSState
var (
	ErrEmptyStateUserID     = errors.New("srs state user ID cannot be empty")
	ErrEmptyStateKeywordID  = errors.New("srs state keyword ID cannot be empty")
	ErrLevelOutOfRange      = errors.New("srs level must be between 0 and 8")
	ErrInvalidKeywordStatus = errors.New("invalid keyword status")
	ErrCorrectExceedsTotal  = errors.New("correct count cannot exceed attempt count")
)

// KeywordSRSState tracks a user's long-term mastery of a single keyword.
// The level-table scheduling algorithm mutates it on every recorded attempt.
type KeywordSRSState struct {
	UserID             uuid.UUID     `json:"user_id"`
	KeywordID          uuid.UUID     `json:"keyword_id"`
	Level              int           `json:"level"`
	Status             KeywordStatus `json:"status"`
	ConsecutiveCorrect int           `json:"consecutive_correct"`
	Attempts           int           `json:"attempts"`
	Correct            int           `json:"correct"`
	LastResult         ReviewResult  `json:"last_result,omitempty"`
	LastReviewedAt     time.Time     `json:"last_reviewed_at"`
	NextReviewAt       time.Time     `json:"next_review_at"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// NewKeywordSRSState creates the initial state for a user and keyword.
// New keywords start at level 0 with StatusNotStarted and are immediately
// schedulable once the first attempt moves them out of not_started.
func NewKeywordSRSState(userID, keywordID uuid.UUID) (*KeywordSRSState, error) {
	now := time.Now().UTC()
	state := &KeywordSRSState{
		UserID:             userID,
		KeywordID:          keywordID,
		Level:              MinSRSLevel,
		Status:             KeywordStatusNotStarted,
		ConsecutiveCorrect: 0,
		Attempts:           0,
		Correct:            0,
		LastReviewedAt:     time.Time{},
		NextReviewAt:       now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := state.Validate(); err != nil {
		return nil, err
	}

	return state, nil
}

// Validate checks if the KeywordSRSState has valid data.
// Returns an error if any field fails validation.
func (s *KeywordSRSState) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrEmptyStateUserID
	}

	if s.KeywordID == uuid.Nil {
		return ErrEmptyStateKeywordID
	}

	if s.Level < MinSRSLevel || s.Level > MaxSRSLevel {
		return ErrLevelOutOfRange
	}

	if !isValidKeywordStatus(s.Status) {
		return ErrInvalidKeywordStatus
	}

	if s.Correct > s.Attempts {
		return ErrCorrectExceedsTotal
	}

	if s.LastResult != "" && !IsValidReviewResult(s.LastResult) {
		return ErrInvalidReviewResult
	}

	return nil
}

// Accuracy returns the ratio of correct attempts, 0 when nothing was attempted.
func (s *KeywordSRSState) Accuracy() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Attempts)
}

// IsDue reports whether the keyword is schedulable for review at the given time.
// Keywords never attempted (not_started) are not due regardless of timestamps.
func (s *KeywordSRSState) IsDue(now time.Time) bool {
	return s.Status != KeywordStatusNotStarted && !s.NextReviewAt.After(now)
}

// RecordResult updates the bookkeeping that sits outside the scheduling
// algorithm: tallies, last result, status transitions, and review timestamps.
// Scheduling fields (level, streak, next review time) are owned by the
// srs strategies and applied separately.
func (s *KeywordSRSState) RecordResult(result ReviewResult, now time.Time) error {
	if !IsValidReviewResult(result) {
		return ErrInvalidReviewResult
	}

	if result == ReviewResultCorrect {
		s.Correct++
	}
	s.LastResult = result
	s.LastReviewedAt = now
	s.UpdatedAt = now

	if s.Status == KeywordStatusNotStarted {
		s.Status = KeywordStatusLearning
	}
	if s.Level >= MaxSRSLevel {
		s.Status = KeywordStatusMastered
	} else if s.Status == KeywordStatusMastered {
		// A demotion below the cap puts the keyword back into learning.
		s.Status = KeywordStatusLearning
	}

	return nil
}

// IsValidReviewResult checks if the given result is a valid ReviewResult.
func IsValidReviewResult(result ReviewResult) bool {
	switch result {
	case ReviewResultCorrect, ReviewResultIncorrect, ReviewResultPartial:
		return true
	default:
		return false
	}
}

// isValidKeywordStatus checks if the given status is a valid KeywordStatus.
func isValidKeywordStatus(status KeywordStatus) bool {
	switch status {
	case KeywordStatusNotStarted, KeywordStatusLearning, KeywordStatusMastered:
		return true
	default:
		return false
	}
}
