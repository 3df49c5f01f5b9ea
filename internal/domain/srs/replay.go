package srs

import (
	"fmt"
	"time"

	"github.com/JoannaMikul/10x-cards-sub002/internal/domain"
)

// ReviewedOutcome is one event in a card's history as consumed by Replay:
// what happened and when.
type ReviewedOutcome struct {
	Outcome    domain.ReviewOutcome
	ReviewedAt time.Time
}

// ReplayResult summarizes a card's full review history after folding it
// through the scheduling algorithm. It carries everything a derived
// per-card stats row needs.
type ReplayResult struct {
	State          domain.MemoryState
	TotalReviews   int
	SuccessCount   int
	LastOutcome    domain.ReviewOutcome
	LastReviewedAt time.Time
	NextReviewAt   time.Time
	Aggregates     domain.StatsAggregates
}

// Replay folds a card's review history, oldest first, through the scheduling
// algorithm. The fold is the single source of truth for derived stats:
// nothing is patched incrementally, so the result is always consistent with
// the event stream. An empty history yields a zero result with TotalReviews
// of 0; callers decide whether that is an error.
func Replay(svc Service, history []ReviewedOutcome) (ReplayResult, error) {
	result := ReplayResult{State: domain.DefaultMemoryState()}

	var intervalSum int
	for i, review := range history {
		next, err := svc.Advance(result.State, review.Outcome)
		if err != nil {
			return ReplayResult{}, fmt.Errorf("replaying review %d: %w", i, err)
		}
		result.State = next

		result.TotalReviews++
		if review.Outcome.Success() {
			result.SuccessCount++
		}
		intervalSum += next.IntervalDays
		result.LastOutcome = review.Outcome
		result.LastReviewedAt = review.ReviewedAt
	}

	if result.TotalReviews == 0 {
		return result, nil
	}

	result.NextReviewAt = result.LastReviewedAt.Add(
		time.Duration(result.State.IntervalDays) * 24 * time.Hour)
	result.Aggregates = domain.StatsAggregates{
		AverageIntervalDays: float64(intervalSum) / float64(result.TotalReviews),
		SuccessRate:         float64(result.SuccessCount) / float64(result.TotalReviews),
		CurrentStreak:       result.State.RepetitionCount,
	}

	return result, nil
}
