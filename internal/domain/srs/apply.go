package srs

import (
	"time"

	"github.com/lexibird/lexibird-api/internal/domain"
)

// ApplyToState records one attempt on a keyword's mastery state. The
// strategy computes the new scheduling fields (level, streak, attempt
// count, next review time); the state then records its own bookkeeping.
// Scheduling must land first: the status transition to mastered reads the
// updated level.
func ApplyToState(
	strategy Strategy,
	state *domain.KeywordSRSState,
	result domain.ReviewResult,
	now time.Time,
) error {
	schedule := Schedule{
		Level:              state.Level,
		ConsecutiveCorrect: state.ConsecutiveCorrect,
		ReviewCount:        state.Attempts,
		NextReviewAt:       state.NextReviewAt,
	}

	next, err := strategy.Apply(schedule, Outcome{Result: result}, now)
	if err != nil {
		return err
	}

	state.Level = next.Level
	state.ConsecutiveCorrect = next.ConsecutiveCorrect
	state.Attempts = next.ReviewCount
	state.NextReviewAt = next.NextReviewAt

	return state.RecordResult(result, now)
}

// ApplyToItem records one self-assessed review on a review item.
func ApplyToItem(
	strategy Strategy,
	item *domain.ReviewItem,
	assessment domain.SelfAssessment,
	now time.Time,
) error {
	schedule := Schedule{
		IntervalDays: item.IntervalDays,
		EaseFactor:   item.EaseFactor,
		ReviewCount:  item.ReviewCount,
		NextReviewAt: item.NextReviewAt,
	}

	next, err := strategy.Apply(schedule, Outcome{Assessment: assessment}, now)
	if err != nil {
		return err
	}

	item.IntervalDays = next.IntervalDays
	item.EaseFactor = next.EaseFactor
	item.ReviewCount = next.ReviewCount
	item.NextReviewAt = next.NextReviewAt
	item.UpdatedAt = now

	return nil
}
