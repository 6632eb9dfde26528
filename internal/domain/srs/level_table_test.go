package srs

import (
	"testing"
	"time"

	"github.com/lexibird/lexibird-api/internal/domain"
)

func TestLevelTableApply(t *testing.T) {
	t.Parallel() // Enable parallel execution
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	testCases := []struct {
		name        string
		start       Schedule
		result      domain.ReviewResult
		wantLevel   int
		wantStreak  int
		wantDueIn   time.Duration
		wantReviews int
	}{
		{
			name:        "first correct answer extends the streak without promoting",
			start:       Schedule{Level: 0, ConsecutiveCorrect: 0},
			result:      domain.ReviewResultCorrect,
			wantLevel:   0,
			wantStreak:  1,
			wantDueIn:   0,
			wantReviews: 1,
		},
		{
			name:        "completed streak promotes and resets",
			start:       Schedule{Level: 0, ConsecutiveCorrect: 1, ReviewCount: 1},
			result:      domain.ReviewResultCorrect,
			wantLevel:   1,
			wantStreak:  0,
			wantDueIn:   4 * time.Hour,
			wantReviews: 2,
		},
		{
			name:        "promotion into the middle of the table",
			start:       Schedule{Level: 4, ConsecutiveCorrect: 1},
			result:      domain.ReviewResultCorrect,
			wantLevel:   5,
			wantStreak:  0,
			wantDueIn:   168 * time.Hour,
			wantReviews: 1,
		},
		{
			name:        "completed streak at the cap stays at the cap",
			start:       Schedule{Level: 8, ConsecutiveCorrect: 1},
			result:      domain.ReviewResultCorrect,
			wantLevel:   8,
			wantStreak:  0,
			wantDueIn:   1440 * time.Hour,
			wantReviews: 1,
		},
		{
			name:        "incorrect answer demotes and resets the streak",
			start:       Schedule{Level: 3, ConsecutiveCorrect: 1},
			result:      domain.ReviewResultIncorrect,
			wantLevel:   2,
			wantStreak:  0,
			wantDueIn:   8 * time.Hour,
			wantReviews: 1,
		},
		{
			name:        "incorrect answer at the floor stays at the floor",
			start:       Schedule{Level: 0, ConsecutiveCorrect: 1},
			result:      domain.ReviewResultIncorrect,
			wantLevel:   0,
			wantStreak:  0,
			wantDueIn:   0,
			wantReviews: 1,
		},
		{
			name:        "partial answer resets the streak but keeps the level",
			start:       Schedule{Level: 5, ConsecutiveCorrect: 1},
			result:      domain.ReviewResultPartial,
			wantLevel:   5,
			wantStreak:  0,
			wantDueIn:   336 * time.Hour,
			wantReviews: 1,
		},
	}

	strategy := NewLevelTableStrategy(nil)

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := strategy.Apply(tc.start, Outcome{Result: tc.result}, now)

			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}

			if got.Level != tc.wantLevel {
				t.Errorf("Expected level %d, got %d", tc.wantLevel, got.Level)
			}

			if got.ConsecutiveCorrect != tc.wantStreak {
				t.Errorf("Expected streak %d, got %d", tc.wantStreak, got.ConsecutiveCorrect)
			}

			if got.ReviewCount != tc.wantReviews {
				t.Errorf("Expected review count %d, got %d", tc.wantReviews, got.ReviewCount)
			}

			wantDue := now.Add(tc.wantDueIn)
			if !got.NextReviewAt.Equal(wantDue) {
				t.Errorf("Expected next review at %v, got %v", wantDue, got.NextReviewAt)
			}
		})
	}
}

// TestLevelTableProgression walks one keyword through the promote-then-demote
// path: two corrects reach level 1 with a 4-hour interval, and the following
// incorrect answer drops it back to level 0, immediately due.
func TestLevelTableProgression(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	strategy := NewLevelTableStrategy(nil)

	schedule := Schedule{Level: 0, ConsecutiveCorrect: 0}

	schedule, err := strategy.Apply(schedule, Outcome{Result: domain.ReviewResultCorrect}, now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if schedule.Level != 0 || schedule.ConsecutiveCorrect != 1 {
		t.Fatalf("After one correct: level=%d streak=%d, want level=0 streak=1",
			schedule.Level, schedule.ConsecutiveCorrect)
	}

	schedule, err = strategy.Apply(schedule, Outcome{Result: domain.ReviewResultCorrect}, now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if schedule.Level != 1 || schedule.ConsecutiveCorrect != 0 {
		t.Errorf("After two corrects: level=%d streak=%d, want level=1 streak=0",
			schedule.Level, schedule.ConsecutiveCorrect)
	}
	if want := now.Add(4 * time.Hour); !schedule.NextReviewAt.Equal(want) {
		t.Errorf("Expected next review at %v, got %v", want, schedule.NextReviewAt)
	}

	schedule, err = strategy.Apply(schedule, Outcome{Result: domain.ReviewResultIncorrect}, now)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if schedule.Level != 0 {
		t.Errorf("After incorrect: level=%d, want 0", schedule.Level)
	}
	if !schedule.NextReviewAt.Equal(now) {
		t.Errorf("Expected keyword to be immediately due, got %v", schedule.NextReviewAt)
	}
}

func TestLevelTableInvalidResult(t *testing.T) {
	t.Parallel()
	strategy := NewLevelTableStrategy(nil)

	_, err := strategy.Apply(Schedule{}, Outcome{Result: "shrug"}, time.Now().UTC())
	if err != ErrInvalidResult {
		t.Errorf("Expected error %v, got %v", ErrInvalidResult, err)
	}
}

// Level bounds hold under any sequence of results.
func TestLevelTableBoundsInvariant(t *testing.T) {
	t.Parallel()
	now := time.Now().UTC()
	strategy := NewLevelTableStrategy(nil)

	results := []domain.ReviewResult{
		domain.ReviewResultCorrect, domain.ReviewResultCorrect, domain.ReviewResultCorrect,
		domain.ReviewResultIncorrect, domain.ReviewResultPartial, domain.ReviewResultIncorrect,
		domain.ReviewResultIncorrect, domain.ReviewResultIncorrect, domain.ReviewResultCorrect,
	}

	schedule := Schedule{}
	for round := 0; round < 30; round++ {
		result := results[round%len(results)]
		var err error
		schedule, err = strategy.Apply(schedule, Outcome{Result: result}, now)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if schedule.Level < domain.MinSRSLevel || schedule.Level > domain.MaxSRSLevel {
			t.Fatalf("Level %d escaped [0,8] after round %d", schedule.Level, round)
		}
	}
}
