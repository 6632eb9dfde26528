package progress

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lexibird/lexibird-api/internal/domain"
)

// DueKeyword is one entry of a user's ordered review queue: a keyword whose
// next review time has arrived.
type DueKeyword struct {
	KeywordID    uuid.UUID `json:"keyword_id"`
	Level        int       `json:"level"`
	NextReviewAt time.Time `json:"next_review_at"`
}

// Overview aggregates a user's mastery records for the progress screen.
type Overview struct {
	TrackedKeywords int     `json:"tracked_keywords"`
	NotStarted      int     `json:"not_started"`
	Learning        int     `json:"learning"`
	Mastered        int     `json:"mastered"`
	TotalAttempts   int     `json:"total_attempts"`
	TotalCorrect    int     `json:"total_correct"`
	Accuracy        float64 `json:"accuracy"`
	DueNow          int     `json:"due_now"`
}

// RankingEntry is one user's position in the accuracy ranking.
type RankingEntry struct {
	Rank     int       `json:"rank"`
	UserID   uuid.UUID `json:"user_id"`
	Accuracy float64   `json:"accuracy"`
	Mastered int       `json:"mastered"`
	Attempts int       `json:"attempts"`
}

// RankingSnapshot is the ranking as of its generation time. Snapshots are
// immutable once built; callers must not modify the entries.
type RankingSnapshot struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Entries     []RankingEntry `json:"entries"`
}

// ProgressService tracks keyword mastery: it owns the catalog writes, the
// per-user SRS states driven by the level-table scheduler, the due queue,
// and the cross-user accuracy ranking.
type ProgressService interface {
	// AddKeyword registers a new keyword in the content catalog.
	AddKeyword(ctx context.Context, topic, word, imageURL, audioURL string) (*domain.Keyword, error)

	// EnrollKeyword creates the initial not_started SRS state for the user
	// and keyword. Enrolling an already-tracked keyword returns the existing
	// state unchanged. An unknown keyword ID is a logged no-op returning
	// (nil, nil).
	EnrollKeyword(ctx context.Context, userID, keywordID uuid.UUID) (*domain.KeywordSRSState, error)

	// RecordAttempt records one review outcome against the keyword's mastery
	// state through the level-table scheduler, creating the state on first
	// attempt. An unknown keyword ID is a logged no-op returning (nil, nil).
	// Returns srs.ErrInvalidResult when the result is not a valid outcome.
	RecordAttempt(ctx context.Context, userID, keywordID uuid.UUID, result domain.ReviewResult) (*domain.KeywordSRSState, error)

	// DueKeywords returns the user's due queue ordered by next review time
	// ascending, keyword ID as the tie-break. Keywords never attempted are
	// excluded.
	DueKeywords(ctx context.Context, userID uuid.UUID) ([]DueKeyword, error)

	// Overview aggregates the user's mastery records.
	Overview(ctx context.Context, userID uuid.UUID) (*Overview, error)

	// ValidateIntegrity checks every stored invariant of the user's records:
	// level bounds, tally consistency, ease-factor floor, and session counter
	// consistency. Violations are logged; the return value reports only
	// whether all checks passed.
	ValidateIntegrity(ctx context.Context, userID uuid.UUID) (bool, error)

	// Ranking returns the current ranking snapshot, building it on first use.
	Ranking(ctx context.Context) (*RankingSnapshot, error)

	// RefreshRanking recomputes the ranking snapshot from the stored states.
	// The ranking job calls this on its schedule.
	RefreshRanking(ctx context.Context) (*RankingSnapshot, error)
}
