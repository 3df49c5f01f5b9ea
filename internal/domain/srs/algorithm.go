package srs

import (
	"math"

	"github.com/JoannaMikul/10x-cards-sub002/internal/domain"
)

// nextEaseFactor applies the SM-2 ease-factor recurrence for a successful
// recall. The adjustment depends on how far the grade fell short of perfect:
//
//	EF' = EF + (0.1 - (4-g)*(0.08 + (4-g)*0.02))
//
// so an "easy" review (grade 4) raises the ease factor by 0.1 and a "good"
// review (grade 3) leaves it unchanged. The result is clamped at
// params.MinEaseFactor so intervals never collapse toward zero growth.
func nextEaseFactor(currentEF float64, grade int, params *Params) float64 {
	shortfall := float64(domain.MaxGrade - grade)
	newEF := currentEF + (0.1 - shortfall*(0.08+shortfall*0.02))

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}

	return newEF
}

// advance computes the scheduling state that follows a review outcome.
//
// Behavior:
//   - grade < PassingGrade: the repetition streak resets to 0, the interval
//     shrinks to the configured relearning value, and the ease factor is
//     left untouched;
//   - grade >= PassingGrade: the streak increments, the ease factor is
//     adjusted by the SM-2 recurrence, and the new interval is the prior
//     interval multiplied by the adjusted ease factor, rounded to whole
//     days, with a minimum of one day once the streak is at least one.
func advance(state domain.MemoryState, outcome domain.ReviewOutcome, params *Params) domain.MemoryState {
	grade, err := outcome.Grade()
	if err != nil {
		// Callers validate the outcome first; an unknown outcome here is a
		// programming error and must not silently reschedule the card.
		panic("srs: advance called with invalid outcome")
	}

	if grade < domain.PassingGrade {
		return domain.MemoryState{
			IntervalDays:    params.RelearnIntervalDays[outcome],
			RepetitionCount: 0,
			EaseFactor:      state.EaseFactor,
		}
	}

	newEF := nextEaseFactor(state.EaseFactor, grade, params)
	newInterval := int(math.Round(float64(state.IntervalDays) * newEF))
	if newInterval < 1 {
		newInterval = 1
	}

	return domain.MemoryState{
		IntervalDays:    newInterval,
		RepetitionCount: state.RepetitionCount + 1,
		EaseFactor:      newEF,
	}
}
