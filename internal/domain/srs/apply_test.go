package srs

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lexibird/lexibird-api/internal/domain"
)

func TestApplyToState(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	strategy := NewLevelTableStrategy(nil)

	t.Run("first attempt moves state out of not_started", func(t *testing.T) {
		state, err := domain.NewKeywordSRSState(uuid.New(), uuid.New())
		if err != nil {
			t.Fatalf("NewKeywordSRSState() error = %v", err)
		}

		if err := ApplyToState(strategy, state, domain.ReviewResultCorrect, now); err != nil {
			t.Fatalf("ApplyToState() error = %v", err)
		}

		if state.Status != domain.KeywordStatusLearning {
			t.Errorf("Status = %s, want %s", state.Status, domain.KeywordStatusLearning)
		}
		if state.Attempts != 1 || state.Correct != 1 {
			t.Errorf("Attempts/Correct = %d/%d, want 1/1", state.Attempts, state.Correct)
		}
		if state.ConsecutiveCorrect != 1 {
			t.Errorf("ConsecutiveCorrect = %d, want 1", state.ConsecutiveCorrect)
		}
		if !state.NextReviewAt.Equal(now) {
			t.Errorf("NextReviewAt = %v, want %v (level 0 is immediately due)", state.NextReviewAt, now)
		}
		if !state.LastReviewedAt.Equal(now) {
			t.Errorf("LastReviewedAt = %v, want %v", state.LastReviewedAt, now)
		}
	})

	t.Run("promotion to the cap marks the keyword mastered", func(t *testing.T) {
		state, err := domain.NewKeywordSRSState(uuid.New(), uuid.New())
		if err != nil {
			t.Fatalf("NewKeywordSRSState() error = %v", err)
		}
		state.Level = domain.MaxSRSLevel - 1
		state.ConsecutiveCorrect = 1
		state.Status = domain.KeywordStatusLearning
		state.Attempts = 20
		state.Correct = 18

		if err := ApplyToState(strategy, state, domain.ReviewResultCorrect, now); err != nil {
			t.Fatalf("ApplyToState() error = %v", err)
		}

		if state.Level != domain.MaxSRSLevel {
			t.Errorf("Level = %d, want %d", state.Level, domain.MaxSRSLevel)
		}
		if state.Status != domain.KeywordStatusMastered {
			t.Errorf("Status = %s, want %s", state.Status, domain.KeywordStatusMastered)
		}
		if want := now.Add(1440 * time.Hour); !state.NextReviewAt.Equal(want) {
			t.Errorf("NextReviewAt = %v, want %v", state.NextReviewAt, want)
		}
	})

	t.Run("demotion off the cap returns the keyword to learning", func(t *testing.T) {
		state, err := domain.NewKeywordSRSState(uuid.New(), uuid.New())
		if err != nil {
			t.Fatalf("NewKeywordSRSState() error = %v", err)
		}
		state.Level = domain.MaxSRSLevel
		state.Status = domain.KeywordStatusMastered
		state.Attempts = 30
		state.Correct = 28

		if err := ApplyToState(strategy, state, domain.ReviewResultIncorrect, now); err != nil {
			t.Fatalf("ApplyToState() error = %v", err)
		}

		if state.Level != domain.MaxSRSLevel-1 {
			t.Errorf("Level = %d, want %d", state.Level, domain.MaxSRSLevel-1)
		}
		if state.Status != domain.KeywordStatusLearning {
			t.Errorf("Status = %s, want %s", state.Status, domain.KeywordStatusLearning)
		}
		if state.Correct != 28 {
			t.Errorf("Correct = %d, want unchanged 28", state.Correct)
		}
	})

	t.Run("invalid result leaves the state untouched", func(t *testing.T) {
		state, err := domain.NewKeywordSRSState(uuid.New(), uuid.New())
		if err != nil {
			t.Fatalf("NewKeywordSRSState() error = %v", err)
		}
		before := *state

		if err := ApplyToState(strategy, state, domain.ReviewResult("shrug"), now); err != ErrInvalidResult {
			t.Fatalf("ApplyToState() error = %v, want ErrInvalidResult", err)
		}
		if *state != before {
			t.Errorf("state mutated on invalid result: %+v", state)
		}
	})
}

func TestApplyToItem(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	strategy := NewSM2Strategy(nil)

	t.Run("first pass schedules one day out", func(t *testing.T) {
		item, err := domain.NewReviewItem(uuid.New(), uuid.New())
		if err != nil {
			t.Fatalf("NewReviewItem() error = %v", err)
		}

		if err := ApplyToItem(strategy, item, domain.SelfAssessmentInstantlyGotIt, now); err != nil {
			t.Fatalf("ApplyToItem() error = %v", err)
		}

		if item.IntervalDays != 1 {
			t.Errorf("IntervalDays = %d, want 1", item.IntervalDays)
		}
		if item.ReviewCount != 1 {
			t.Errorf("ReviewCount = %d, want 1", item.ReviewCount)
		}
		if want := now.AddDate(0, 0, 1); !item.NextReviewAt.Equal(want) {
			t.Errorf("NextReviewAt = %v, want %v", item.NextReviewAt, want)
		}
		if !item.UpdatedAt.Equal(now) {
			t.Errorf("UpdatedAt = %v, want %v", item.UpdatedAt, now)
		}
	})

	t.Run("forgot resets the interval and keeps the floor", func(t *testing.T) {
		item, err := domain.NewReviewItem(uuid.New(), uuid.New())
		if err != nil {
			t.Fatalf("NewReviewItem() error = %v", err)
		}
		item.IntervalDays = 30
		item.EaseFactor = 1.35
		item.ReviewCount = 7

		if err := ApplyToItem(strategy, item, domain.SelfAssessmentForgot, now); err != nil {
			t.Fatalf("ApplyToItem() error = %v", err)
		}

		if item.IntervalDays != 1 {
			t.Errorf("IntervalDays = %d, want 1", item.IntervalDays)
		}
		if item.EaseFactor != domain.MinEaseFactor {
			t.Errorf("EaseFactor = %v, want floor %v", item.EaseFactor, domain.MinEaseFactor)
		}
		if item.ReviewCount != 8 {
			t.Errorf("ReviewCount = %d, want 8", item.ReviewCount)
		}
	})

	t.Run("invalid assessment leaves the item untouched", func(t *testing.T) {
		item, err := domain.NewReviewItem(uuid.New(), uuid.New())
		if err != nil {
			t.Fatalf("NewReviewItem() error = %v", err)
		}
		before := *item

		if err := ApplyToItem(strategy, item, domain.SelfAssessment("meh"), now); err != ErrInvalidAssessment {
			t.Fatalf("ApplyToItem() error = %v, want ErrInvalidAssessment", err)
		}
		if *item != before {
			t.Errorf("item mutated on invalid assessment: %+v", item)
		}
	})
}
