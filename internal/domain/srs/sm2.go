package srs

import (
	"math"
	"time"
)

// sm2Strategy schedules reviews with the SM-2 ease-factor algorithm, driven
// by the user's self-assessment rather than a graded answer.
type sm2Strategy struct {
	params *Params
}

var _ Strategy = (*sm2Strategy)(nil)

// NewSM2Strategy creates the SM-2 strategy with the given parameters,
// falling back to defaults when params is nil.
func NewSM2Strategy(params *Params) Strategy {
	if params == nil {
		params = NewDefaultParams()
	}
	return &sm2Strategy{params: params}
}

// Apply records one self-assessed review against the SM-2 state.
//
// The assessment maps to a quality score (instantly_got_it → 5,
// had_to_think → 4, forgot → 0). The ease factor is always adjusted by
//
//	EF' = max(floor, EF + (0.1 − (5−q)×(0.08 + (5−q)×0.02)))
//
// and the review count always advances. A passing quality grows the
// interval: 1 day on the first review, 6 days on the second, then the
// previous interval times the new ease factor, rounded. A failing quality
// hard-resets the interval regardless of the ease factor.
func (s *sm2Strategy) Apply(schedule Schedule, outcome Outcome, now time.Time) (Schedule, error) {
	quality, ok := s.params.QualityScores[outcome.Assessment]
	if !ok {
		return Schedule{}, ErrInvalidAssessment
	}

	next := schedule

	q := float64(quality)
	easeFactor := schedule.EaseFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if easeFactor < s.params.MinEaseFactor {
		easeFactor = s.params.MinEaseFactor
	}
	next.EaseFactor = easeFactor

	if quality >= s.params.PassingQuality {
		switch schedule.ReviewCount {
		case 0:
			next.IntervalDays = s.params.FirstIntervalDays
		case 1:
			next.IntervalDays = s.params.SecondIntervalDays
		default:
			next.IntervalDays = int(math.Round(float64(schedule.IntervalDays) * easeFactor))
		}
	} else {
		next.IntervalDays = s.params.ResetIntervalDays
	}

	next.ReviewCount++
	next.NextReviewAt = now.AddDate(0, 0, next.IntervalDays)

	return next, nil
}
