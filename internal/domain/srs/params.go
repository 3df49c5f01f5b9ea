package srs

import (
	"github.com/JoannaMikul/10x-cards-sub002/internal/domain"
)

// Params defines all configurable parameters for the SRS algorithm.
type Params struct {
	// MinEaseFactor is the floor below which the ease factor never drops.
	MinEaseFactor float64

	// RelearnIntervalDays maps each failing outcome (grade < PassingGrade)
	// to the short interval used while relearning.
	RelearnIntervalDays map[domain.ReviewOutcome]int
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance. Zero values leave the corresponding default in place.
type ParamsConfig struct {
	MinEaseFactor float64

	AgainRelearnIntervalDays int
	FailRelearnIntervalDays  int
	HardRelearnIntervalDays  int
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor: 1.3,

		RelearnIntervalDays: map[domain.ReviewOutcome]int{
			domain.ReviewOutcomeAgain: 0, // Complete failure: due again immediately
			domain.ReviewOutcomeFail:  0,
			domain.ReviewOutcomeHard:  1,
		},
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) *Params {
	params := NewDefaultParams()

	if config.MinEaseFactor > 0 {
		params.MinEaseFactor = config.MinEaseFactor
	}

	if config.AgainRelearnIntervalDays > 0 {
		params.RelearnIntervalDays[domain.ReviewOutcomeAgain] = config.AgainRelearnIntervalDays
	}
	if config.FailRelearnIntervalDays > 0 {
		params.RelearnIntervalDays[domain.ReviewOutcomeFail] = config.FailRelearnIntervalDays
	}
	if config.HardRelearnIntervalDays > 0 {
		params.RelearnIntervalDays[domain.ReviewOutcomeHard] = config.HardRelearnIntervalDays
	}

	return params
}
