package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// SelfAssessment is the user-reported recall-difficulty signal captured for
// each answered session item. The SM-2 strategy maps it to a quality score.
type SelfAssessment string

// Possible self-assessment values
const (
	SelfAssessmentInstantlyGotIt SelfAssessment = "instantly_got_it"
	SelfAssessmentHadToThink     SelfAssessment = "had_to_think"
	SelfAssessmentForgot         SelfAssessment = "forgot"
)

// SessionStatus represents the lifecycle state of a review session.
type SessionStatus string

// Possible session status values
const (
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
)

// Target-duration policy for review sessions: 15 seconds per item,
// capped at two minutes.
const (
	TargetDurationPerItem = 15 * time.Second
	TargetDurationCap     = 120 * time.Second
)

// Common validation errors for ReviewSession
var (
	ErrEmptySessionID      = errors.New("session ID cannot be empty")
	ErrEmptySessionUserID  = errors.New("session user ID cannot be empty")
	ErrSessionItemsEmpty   = errors.New("session must contain at least one item")
	ErrInvalidSessionState = errors.New("invalid session status")
	ErrSessionCompleted    = errors.New("session is already completed")
	ErrItemIndexOutOfRange = errors.New("item index is out of range")
)

// SessionItem is one presented exercise inside a review session: the word,
// its correct image/audio pairing, and the shuffled image options the user
// chooses from (the correct image plus up to two same-topic distractors).
type SessionItem struct {
	KeywordID       uuid.UUID      `json:"keyword_id"`
	Word            string         `json:"word"`
	CorrectImageURL string         `json:"correct_image_url"`
	AudioURL        string         `json:"audio_url"`
	Options         []string       `json:"options"`
	Answered        bool           `json:"answered"`
	Selection       string         `json:"selection,omitempty"`
	IsCorrect       bool           `json:"is_correct"`
	SelfAssessment  SelfAssessment `json:"self_assessment,omitempty"`
	ResponseTimeMs  int            `json:"response_time_ms"`

	// Prior holds the SRS records as they stood before this item's first
	// answer. A resubmitted answer recomputes from these instead of
	// compounding on its own earlier effect.
	Prior *PriorSchedules `json:"prior,omitempty"`
}

// PriorSchedules is the pre-answer snapshot of the two SRS records a
// session answer mutates.
type PriorSchedules struct {
	State KeywordSRSState `json:"state"`
	Item  ReviewItem      `json:"item"`
}

// ReviewSession is a bounded run of review exercises built from due keywords.
// Identity is immutable; items and counters mutate as answers arrive, and the
// session freezes permanently once completed.
type ReviewSession struct {
	ID               uuid.UUID     `json:"id"`
	UserID           uuid.UUID     `json:"user_id"`
	Items            []SessionItem `json:"items"`
	CurrentItemIndex int           `json:"current_item_index"`
	CompletedItems   int           `json:"completed_items"`
	CorrectAnswers   int           `json:"correct_answers"`
	InstantlyGotIt   int           `json:"instantly_got_it"`
	HadToThink       int           `json:"had_to_think"`
	Forgot           int           `json:"forgot"`
	TargetDuration   time.Duration `json:"target_duration"`
	Status           SessionStatus `json:"status"`
	StartedAt        time.Time     `json:"started_at"`
	CompletedAt      *time.Time    `json:"completed_at,omitempty"`
	ActualDuration   time.Duration `json:"actual_duration"`
}

// SessionSummary is the result produced when a session completes.
type SessionSummary struct {
	SessionID      uuid.UUID     `json:"session_id"`
	ItemCount      int           `json:"item_count"`
	CompletedItems int           `json:"completed_items"`
	CorrectAnswers int           `json:"correct_answers"`
	Accuracy       float64       `json:"accuracy"`
	InstantlyGotIt int           `json:"instantly_got_it"`
	HadToThink     int           `json:"had_to_think"`
	Forgot         int           `json:"forgot"`
	TargetDuration time.Duration `json:"target_duration"`
	ActualDuration time.Duration `json:"actual_duration"`
}

// TargetDurationFor returns the target session length for the given item
// count: 15 seconds per item, capped at 120 seconds.
func TargetDurationFor(itemCount int) time.Duration {
	d := time.Duration(itemCount) * TargetDurationPerItem
	if d > TargetDurationCap {
		return TargetDurationCap
	}
	return d
}

// NewReviewSession creates an in-progress session over the given items.
// Returns an error if the item list is empty; session construction is the
// one place an empty due list is a hard failure.
func NewReviewSession(userID uuid.UUID, items []SessionItem) (*ReviewSession, error) {
	session := &ReviewSession{
		ID:             uuid.New(),
		UserID:         userID,
		Items:          items,
		TargetDuration: TargetDurationFor(len(items)),
		Status:         SessionStatusInProgress,
		StartedAt:      time.Now().UTC(),
	}

	if err := session.Validate(); err != nil {
		return nil, err
	}

	return session, nil
}

// Validate checks if the ReviewSession has valid data.
// Returns an error if any field fails validation.
func (s *ReviewSession) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySessionID
	}

	if s.UserID == uuid.Nil {
		return ErrEmptySessionUserID
	}

	if len(s.Items) == 0 {
		return ErrSessionItemsEmpty
	}

	if !isValidSessionStatus(s.Status) {
		return ErrInvalidSessionState
	}

	return nil
}

// IsCompleted reports whether the session has been frozen.
func (s *ReviewSession) IsCompleted() bool {
	return s.Status == SessionStatusCompleted
}

// RecordAnswer applies one answer to the item at index. Re-answering an
// already-answered index overwrites the prior result: the previous tallies
// are backed out first so retries never double-count.
// Returns ErrSessionCompleted or ErrItemIndexOutOfRange when the answer
// cannot apply; callers treat those as no-ops.
func (s *ReviewSession) RecordAnswer(
	index int,
	selection string,
	assessment SelfAssessment,
	responseTimeMs int,
) error {
	if s.IsCompleted() {
		return ErrSessionCompleted
	}

	if index < 0 || index >= len(s.Items) {
		return ErrItemIndexOutOfRange
	}

	if !IsValidSelfAssessment(assessment) {
		return ErrInvalidSelfAssessment
	}

	item := &s.Items[index]
	if item.Answered {
		s.CompletedItems--
		if item.IsCorrect {
			s.CorrectAnswers--
		}
		s.addAssessmentTally(item.SelfAssessment, -1)
	}

	item.Selection = selection
	item.IsCorrect = selection == item.CorrectImageURL
	item.SelfAssessment = assessment
	item.ResponseTimeMs = responseTimeMs
	item.Answered = true

	s.CompletedItems++
	if item.IsCorrect {
		s.CorrectAnswers++
	}
	s.addAssessmentTally(assessment, 1)

	// Advance past the contiguous answered prefix.
	for s.CurrentItemIndex < len(s.Items) && s.Items[s.CurrentItemIndex].Answered {
		s.CurrentItemIndex++
	}

	return nil
}

// Complete freezes the session and stamps its actual duration.
// Returns ErrSessionCompleted when called on an already-completed session.
func (s *ReviewSession) Complete(now time.Time) error {
	if s.IsCompleted() {
		return ErrSessionCompleted
	}

	s.Status = SessionStatusCompleted
	s.CompletedAt = &now
	s.ActualDuration = now.Sub(s.StartedAt)

	return nil
}

// Summary derives the session result from the current counters. Accuracy is
// computed over answered items; an untouched session reports zero.
func (s *ReviewSession) Summary() SessionSummary {
	accuracy := 0.0
	if s.CompletedItems > 0 {
		accuracy = float64(s.CorrectAnswers) / float64(s.CompletedItems)
	}

	return SessionSummary{
		SessionID:      s.ID,
		ItemCount:      len(s.Items),
		CompletedItems: s.CompletedItems,
		CorrectAnswers: s.CorrectAnswers,
		Accuracy:       accuracy,
		InstantlyGotIt: s.InstantlyGotIt,
		HadToThink:     s.HadToThink,
		Forgot:         s.Forgot,
		TargetDuration: s.TargetDuration,
		ActualDuration: s.ActualDuration,
	}
}

// Clone returns a deep copy of the session, including its items and their
// option slices, so the copy can be mutated independently.
func (s *ReviewSession) Clone() *ReviewSession {
	copied := *s
	copied.Items = make([]SessionItem, len(s.Items))
	copy(copied.Items, s.Items)
	for i := range copied.Items {
		if s.Items[i].Options != nil {
			copied.Items[i].Options = append([]string(nil), s.Items[i].Options...)
		}
		if s.Items[i].Prior != nil {
			prior := *s.Items[i].Prior
			copied.Items[i].Prior = &prior
		}
	}
	if s.CompletedAt != nil {
		at := *s.CompletedAt
		copied.CompletedAt = &at
	}
	return &copied
}

// addAssessmentTally adjusts the bucket matching the assessment by delta.
func (s *ReviewSession) addAssessmentTally(assessment SelfAssessment, delta int) {
	switch assessment {
	case SelfAssessmentInstantlyGotIt:
		s.InstantlyGotIt += delta
	case SelfAssessmentHadToThink:
		s.HadToThink += delta
	case SelfAssessmentForgot:
		s.Forgot += delta
	}
}

// IsValidSelfAssessment checks if the given value is a valid SelfAssessment.
func IsValidSelfAssessment(assessment SelfAssessment) bool {
	switch assessment {
	case SelfAssessmentInstantlyGotIt, SelfAssessmentHadToThink, SelfAssessmentForgot:
		return true
	default:
		return false
	}
}

// isValidSessionStatus checks if the given status is a valid SessionStatus.
func isValidSessionStatus(status SessionStatus) bool {
	switch status {
	case SessionStatusInProgress, SessionStatusCompleted:
		return true
	default:
		return false
	}
}
