package review

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lexibird/lexibird-api/internal/domain"
)

// Common error types for ReviewService
var (
	// ErrNoDueKeywords indicates that the user has no keywords due for review,
	// so no session can be built. This is the one hard business error of
	// session creation; everything else degrades gracefully.
	ErrNoDueKeywords = errors.New("no keywords due for review")
)

// ReviewAnswer is one submitted answer to a session item: which image the
// user picked and how hard they say the recall was.
type ReviewAnswer struct {
	ItemIndex      int                   `json:"item_index"`
	Selection      string                `json:"selection"`
	SelfAssessment domain.SelfAssessment `json:"self_assessment"`
	ResponseTimeMs int                   `json:"response_time_ms"`
}

// ReviewService manages the review-session lifecycle: building sessions
// from due keywords, recording answers through the SM-2 scheduler, and
// producing completion summaries.
//
// Mutating calls degrade gracefully against stale client state: an unknown
// or foreign session ID is a logged no-op returning (nil, nil), an answer
// against a completed session or an out-of-range item returns the session
// unchanged. A client holding a stale ID can always resynchronize with Get.
type ReviewService interface {
	// Create builds a session from the user's due keywords: one item per
	// keyword with the correct image/audio pairing plus two distractor
	// images drawn from other keywords of the same topic (other topics when
	// the topic is too small). Item and option order are shuffled.
	// Returns ErrNoDueKeywords when nothing is due.
	Create(ctx context.Context, userID uuid.UUID) (*domain.ReviewSession, error)

	// CreateFromKeywords builds a session from an explicit keyword list
	// instead of the due queue. Unknown keyword IDs are skipped with a log
	// entry; returns ErrNoDueKeywords when none remain.
	CreateFromKeywords(ctx context.Context, userID uuid.UUID, keywordIDs []uuid.UUID) (*domain.ReviewSession, error)

	// Get retrieves a session owned by the user.
	// Returns store.ErrSessionNotFound when the session does not exist or
	// belongs to another user.
	Get(ctx context.Context, userID, sessionID uuid.UUID) (*domain.ReviewSession, error)

	// SubmitAnswer records one answer: the session counters, the keyword's
	// SM-2 review item, and its mastery state all update from the outcome.
	// Resubmitting an item recomputes from the item's pre-answer snapshot,
	// so retries never compound. Returns the updated session.
	// Returns domain.ErrInvalidSelfAssessment when the assessment is not a
	// valid value.
	SubmitAnswer(ctx context.Context, userID, sessionID uuid.UUID, answer ReviewAnswer) (*domain.ReviewSession, error)

	// Complete freezes the session and returns its summary. Completing an
	// already-completed session returns the same summary without side
	// effects.
	Complete(ctx context.Context, userID, sessionID uuid.UUID) (*domain.SessionSummary, error)
}
