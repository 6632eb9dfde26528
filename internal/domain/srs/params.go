package srs

import (
	"time"

	"github.com/lexibird/lexibird-api/internal/domain"
)

// Params defines all configurable parameters for the two scheduling algorithms.
type Params struct {
	// Level-table algorithm
	LevelIntervals  []time.Duration // next-review offset per level, index = level
	PromotionStreak int             // consecutive correct answers that raise the level
	MaxLevel        int

	// SM-2 algorithm
	QualityScores      map[domain.SelfAssessment]int
	PassingQuality     int // quality at or above which the interval grows
	FirstIntervalDays  int
	SecondIntervalDays int
	ResetIntervalDays  int // interval after a failed recall
	MinEaseFactor      float64
}

// ParamsConfig allows overriding the default parameters when creating a new Params instance.
type ParamsConfig struct {
	// Level-table overrides. The interval table must keep one entry per
	// level (levels 0 through 8); other lengths are ignored.
	LevelIntervalHours []int
	PromotionStreak    int

	// SM-2 overrides
	FirstIntervalDays  int
	SecondIntervalDays int
	ResetIntervalDays  int
	MinEaseFactor      float64
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		// 0h, 4h, 8h, 1d, 2d, 1w, 2w, 30d, 60d
		LevelIntervals: []time.Duration{
			0,
			4 * time.Hour,
			8 * time.Hour,
			24 * time.Hour,
			48 * time.Hour,
			168 * time.Hour,
			336 * time.Hour,
			720 * time.Hour,
			1440 * time.Hour,
		},
		PromotionStreak: 2,
		MaxLevel:        domain.MaxSRSLevel,

		QualityScores: map[domain.SelfAssessment]int{
			domain.SelfAssessmentInstantlyGotIt: 5,
			domain.SelfAssessmentHadToThink:     4,
			domain.SelfAssessmentForgot:         0,
		},
		PassingQuality:     3,
		FirstIntervalDays:  1,
		SecondIntervalDays: 6,
		ResetIntervalDays:  1,
		MinEaseFactor:      domain.MinEaseFactor,
	}
}

// NewParams creates a new Params instance with custom configuration.
// Zero-valued or out-of-shape overrides keep the defaults.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if len(config.LevelIntervalHours) == len(params.LevelIntervals) {
		intervals := make([]time.Duration, len(config.LevelIntervalHours))
		for i, hours := range config.LevelIntervalHours {
			intervals[i] = time.Duration(hours) * time.Hour
		}
		params.LevelIntervals = intervals
	}

	if config.PromotionStreak > 0 {
		params.PromotionStreak = config.PromotionStreak
	}

	if config.FirstIntervalDays > 0 {
		params.FirstIntervalDays = config.FirstIntervalDays
	}

	if config.SecondIntervalDays > 0 {
		params.SecondIntervalDays = config.SecondIntervalDays
	}

	if config.ResetIntervalDays > 0 {
		params.ResetIntervalDays = config.ResetIntervalDays
	}

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}

	return params
}
