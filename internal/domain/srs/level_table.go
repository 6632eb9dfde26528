package srs

import (
	"time"

	"github.com/lexibird/lexibird-api/internal/domain"
)

// levelTableStrategy schedules reviews from a discrete level table. Levels
// climb after repeated correct answers and fall on any incorrect answer;
// the next review is always now plus the interval the new level indexes.
type levelTableStrategy struct {
	params *Params
}

var _ Strategy = (*levelTableStrategy)(nil)

// NewLevelTableStrategy creates the level-table strategy with the given
// parameters, falling back to defaults when params is nil.
func NewLevelTableStrategy(params *Params) Strategy {
	if params == nil {
		params = NewDefaultParams()
	}
	return &levelTableStrategy{params: params}
}

// Apply records one attempt against the level table.
//
// Every attempt increments the review count. A correct answer extends the
// streak, and a full streak raises the level by one (capped) and resets the
// streak. An incorrect answer resets the streak and lowers the level by one
// (floored at 0). A partial answer resets the streak but leaves the level
// where it is. The next review time is recomputed from the resulting level
// on every attempt, so a demotion to level 0 makes the keyword immediately
// due again.
func (s *levelTableStrategy) Apply(schedule Schedule, outcome Outcome, now time.Time) (Schedule, error) {
	if !domain.IsValidReviewResult(outcome.Result) {
		return Schedule{}, ErrInvalidResult
	}

	next := schedule
	next.ReviewCount++

	switch outcome.Result {
	case domain.ReviewResultCorrect:
		next.ConsecutiveCorrect++
		if next.ConsecutiveCorrect >= s.params.PromotionStreak {
			if next.Level < s.params.MaxLevel {
				next.Level++
			}
			next.ConsecutiveCorrect = 0
		}
	case domain.ReviewResultIncorrect:
		next.ConsecutiveCorrect = 0
		if next.Level > 0 {
			next.Level--
		}
	case domain.ReviewResultPartial:
		next.ConsecutiveCorrect = 0
	}

	next.NextReviewAt = now.Add(s.intervalFor(next.Level))

	return next, nil
}

// intervalFor returns the level's interval, clamping levels outside the
// table to its last entry.
func (s *levelTableStrategy) intervalFor(level int) time.Duration {
	if level < 0 {
		return s.params.LevelIntervals[0]
	}
	if level >= len(s.params.LevelIntervals) {
		return s.params.LevelIntervals[len(s.params.LevelIntervals)-1]
	}
	return s.params.LevelIntervals[level]
}
