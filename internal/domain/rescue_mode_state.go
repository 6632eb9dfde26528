package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// LearningPhase identifies which practice loop produced a pronunciation
// attempt. Only failures from the pronunciation-training phase count toward
// rescue mode; the context-guessing phase never does.
type LearningPhase string

// Possible learning phase values
const (
	LearningPhasePronunciation   LearningPhase = "pronunciation_training"
	LearningPhaseContextGuessing LearningPhase = "context_guessing"
)

// Common validation errors for RescueModeState
var (
	ErrEmptyRescueUserID    = errors.New("rescue state user ID cannot be empty")
	ErrNegativeAttemptCount = errors.New("attempt counters cannot be negative")
	ErrRescueAlreadyActive  = errors.New("rescue mode is already active")
	ErrRescueNotActive      = errors.New("rescue mode is not active")
)

// RescueModeState is the per-user state machine that tracks consecutive
// pronunciation failures and records whether the relaxed pass bar is in
// effect. Trigger thresholds and bonus values are policy, injected by the
// rescue service from configuration, not stored on the record.
type RescueModeState struct {
	UserID              uuid.UUID     `json:"user_id"`
	IsActive            bool          `json:"is_active"`
	ConsecutiveFailures int           `json:"consecutive_failures"`
	TotalAttempts       int           `json:"total_attempts"`
	TriggeredAt         *time.Time    `json:"triggered_at,omitempty"`
	SupportiveMessage   string        `json:"supportive_message,omitempty"`
	LearningPhase       LearningPhase `json:"learning_phase,omitempty"`
	CreatedAt           time.Time     `json:"created_at"`
	UpdatedAt           time.Time     `json:"updated_at"`
}

// NewRescueModeState creates the initial inactive state for a user.
func NewRescueModeState(userID uuid.UUID) (*RescueModeState, error) {
	now := time.Now().UTC()
	state := &RescueModeState{
		UserID:    userID,
		IsActive:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := state.Validate(); err != nil {
		return nil, err
	}

	return state, nil
}

// Validate checks if the RescueModeState has valid data.
// Returns an error if any field fails validation.
func (s *RescueModeState) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrEmptyRescueUserID
	}

	if s.ConsecutiveFailures < 0 || s.TotalAttempts < 0 {
		return ErrNegativeAttemptCount
	}

	if s.IsActive && s.TriggeredAt == nil {
		return errors.New("active rescue state must carry a trigger time")
	}

	if s.LearningPhase != "" && !IsValidLearningPhase(s.LearningPhase) {
		return ErrInvalidLearningPhase
	}

	return nil
}

// Activate transitions the state machine to active. The caller supplies the
// supportive message it picked from the configured pool.
// Returns ErrRescueAlreadyActive when already active; re-entrant failures
// must not reset the trigger time.
func (s *RescueModeState) Activate(message string, now time.Time) error {
	if s.IsActive {
		return ErrRescueAlreadyActive
	}

	s.IsActive = true
	s.TriggeredAt = &now
	s.SupportiveMessage = message
	s.UpdatedAt = now

	return nil
}

// Deactivate transitions the state machine back to inactive and clears the
// trigger bookkeeping. Returns ErrRescueNotActive when already inactive.
func (s *RescueModeState) Deactivate(now time.Time) error {
	if !s.IsActive {
		return ErrRescueNotActive
	}

	s.IsActive = false
	s.TriggeredAt = nil
	s.SupportiveMessage = ""
	s.UpdatedAt = now

	return nil
}

// TimeInRescue returns how long rescue mode has been active, zero when inactive.
func (s *RescueModeState) TimeInRescue(now time.Time) time.Duration {
	if !s.IsActive || s.TriggeredAt == nil {
		return 0
	}
	return now.Sub(*s.TriggeredAt)
}

// Clone returns a copy of the state that can be mutated independently.
func (s *RescueModeState) Clone() *RescueModeState {
	copied := *s
	if s.TriggeredAt != nil {
		at := *s.TriggeredAt
		copied.TriggeredAt = &at
	}
	return &copied
}

// IsValidLearningPhase checks if the given phase is a valid LearningPhase.
func IsValidLearningPhase(phase LearningPhase) bool {
	switch phase {
	case LearningPhasePronunciation, LearningPhaseContextGuessing:
		return true
	default:
		return false
	}
}
