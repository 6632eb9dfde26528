package srs

import (
	"errors"
	"time"

	"github.com/lexibird/lexibird-api/internal/domain"
)

// Common errors
var (
	ErrInvalidResult     = errors.New("invalid review result")
	ErrInvalidAssessment = errors.New("invalid self-assessment")
)

// Schedule is the scheduling state a strategy reads and writes. It is the
// union of the two record shapes: the level/streak fields mirror
// KeywordSRSState, the interval/ease-factor fields mirror ReviewItem.
// Each strategy touches only its own fields and leaves the rest unchanged.
type Schedule struct {
	// Level-table fields
	Level              int
	ConsecutiveCorrect int

	// SM-2 fields
	IntervalDays int
	EaseFactor   float64

	// Shared fields
	ReviewCount  int
	NextReviewAt time.Time
}

// Outcome carries one observed review result into a strategy. The level
// table reads Result; SM-2 reads Assessment.
type Outcome struct {
	Result     domain.ReviewResult
	Assessment domain.SelfAssessment
}

// Strategy is the common contract both scheduling algorithms implement:
// record one outcome, produce the next schedule. Implementations never
// mutate the input; they return an updated copy. Which strategy runs is a
// call-site decision (ongoing mastery tracking vs. quick review session),
// not a property of the keyword.
type Strategy interface {
	Apply(schedule Schedule, outcome Outcome, now time.Time) (Schedule, error)
}
