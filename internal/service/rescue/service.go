// Package rescue implements the rescue mode controller, a per-user state
// machine layered over pronunciation scoring. Repeated pronunciation
// failures trigger a relaxed pass bar and a supportive message; the mode
// clears when the user passes under the relaxed bar, or on manual exit.
// Thresholds, the bonus, and the message pool are policy injected from
// configuration, never stored on the state record.
package rescue

import (
	"context"

	"github.com/google/uuid"

	"github.com/lexibird/lexibird-api/internal/domain"
)

// Stats summarizes a user's history with rescue mode. The numbers are
// derived by replaying the user's rescue events from the event log, so
// they survive state resets.
type Stats struct {
	Triggers            int     `json:"triggers"`
	Improvements        int     `json:"improvements"`
	ManualExits         int     `json:"manual_exits"`
	SuccessRate         float64 `json:"success_rate"`
	AvgSecondsToImprove float64 `json:"avg_seconds_to_improve"`
}

// RescueService tracks consecutive pronunciation failures per user and
// controls the relaxed pass bar.
//
// Only failures from the pronunciation-training phase count; other phases
// are logged no-ops. Improvement and exit calls for users with no rescue
// record are logged no-ops returning (nil, nil). Invalid learning phases
// are rejected with domain.ErrInvalidLearningPhase.
type RescueService interface {
	// RecordFailure registers a failed pronunciation attempt. Reaching the
	// configured threshold of consecutive failures while inactive activates
	// rescue mode with a supportive message and emits a trigger event.
	// Failures while already active count but never re-trigger.
	RecordFailure(ctx context.Context, userID, keywordID, sessionID uuid.UUID, score int, phase domain.LearningPhase) (*domain.RescueModeState, error)

	// RecordImprovement registers a passed pronunciation attempt. The
	// consecutive failure streak always resets. When rescue mode is active
	// and the pass happened under the relaxed bar, the mode deactivates and
	// an improvement event carrying the time spent in rescue is emitted.
	RecordImprovement(ctx context.Context, userID uuid.UUID, score int, passedWithRescue bool) (*domain.RescueModeState, error)

	// CurrentPassThreshold returns the pass bar in effect for the user:
	// the lowered threshold while rescue mode is active, the normal one
	// otherwise.
	CurrentPassThreshold(ctx context.Context, userID uuid.UUID) (int, error)

	// ApplyScoreBonus returns the score after the rescue bonus. While
	// rescue mode is active and the bonus is enabled, the configured bonus
	// is added and the result capped at 100; otherwise the raw score is
	// returned unchanged.
	ApplyScoreBonus(ctx context.Context, userID uuid.UUID, rawScore int) (int, error)

	// Exit deactivates rescue mode on the user's request and emits an exit
	// event. Calling it while inactive changes nothing.
	Exit(ctx context.Context, userID uuid.UUID) (*domain.RescueModeState, error)

	// State returns the user's rescue mode state. Users with no recorded
	// state get a fresh inactive one, which is not persisted.
	State(ctx context.Context, userID uuid.UUID) (*domain.RescueModeState, error)

	// Stats replays the user's rescue events and aggregates trigger,
	// improvement, and manual exit counts, the improvement rate, and the
	// average seconds from trigger to improvement.
	Stats(ctx context.Context, userID uuid.UUID) (*Stats, error)
}
