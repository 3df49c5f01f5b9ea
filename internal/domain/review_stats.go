package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for ReviewStats
var (
	ErrEmptyStatsUserID  = errors.New("review stats user ID cannot be empty")
	ErrEmptyStatsCardID  = errors.New("review stats card ID cannot be empty")
	ErrInvalidInterval   = errors.New("interval must be greater than or equal to 0")
	ErrInvalidEaseFactor = errors.New("ease factor must be greater than 1.0")
)

// DefaultEaseFactor is the starting ease factor for a card that has never
// been reviewed.
const DefaultEaseFactor = 2.5

// MemoryState is the per-card scheduling state consumed and produced by the
// SRS algorithm: the current interval, the consecutive-success streak, and
// the ease factor multiplier.
type MemoryState struct {
	IntervalDays    int     `json:"interval_days"`
	RepetitionCount int     `json:"repetition_count"`
	EaseFactor      float64 `json:"ease_factor"`
}

// DefaultMemoryState returns the algorithmic defaults for a card with no
// prior review history.
func DefaultMemoryState() MemoryState {
	return MemoryState{
		IntervalDays:    0,
		RepetitionCount: 0,
		EaseFactor:      DefaultEaseFactor,
	}
}

// StatsAggregates is the small derived-aggregates structure stored alongside
// the per-card counters.
type StatsAggregates struct {
	AverageIntervalDays float64 `json:"average_interval_days"`
	SuccessRate         float64 `json:"success_rate"`
	CurrentStreak       int     `json:"current_streak"`
}

// ReviewStats is the derived per-(card, user) summary of the review event
// stream. It is owned by the storage layer's derivation mechanism and
// mutated only as a side effect of event insertion; the engine treats it as
// read-only input to scheduling.
type ReviewStats struct {
	UserID           uuid.UUID       `json:"user_id"`
	CardID           uuid.UUID       `json:"card_id"`
	TotalReviews     int             `json:"total_reviews"`
	SuccessCount     int             `json:"success_count"`
	Streak           int             `json:"streak"` // Consecutive successful recalls
	LastOutcome      ReviewOutcome   `json:"last_outcome"`
	LastIntervalDays int             `json:"last_interval_days"`
	EaseFactor       float64         `json:"ease_factor"`
	NextReviewAt     time.Time       `json:"next_review_at"`
	LastReviewedAt   time.Time       `json:"last_reviewed_at"`
	Aggregates       StatsAggregates `json:"aggregates"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// NewReviewStats creates a zero-history stats row for a user and card.
// Initial settings make the card available for review immediately.
func NewReviewStats(userID, cardID uuid.UUID) (*ReviewStats, error) {
	now := time.Now().UTC()
	stats := &ReviewStats{
		UserID:       userID,
		CardID:       cardID,
		EaseFactor:   DefaultEaseFactor,
		NextReviewAt: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := stats.Validate(); err != nil {
		return nil, err
	}

	return stats, nil
}

// Validate checks if the ReviewStats has valid data.
// Returns an error if any field fails validation.
func (s *ReviewStats) Validate() error {
	if s.UserID == uuid.Nil {
		return ErrEmptyStatsUserID
	}

	if s.CardID == uuid.Nil {
		return ErrEmptyStatsCardID
	}

	if s.LastIntervalDays < 0 {
		return ErrInvalidInterval
	}

	if s.EaseFactor <= 1.0 {
		return ErrInvalidEaseFactor
	}

	return nil
}

// MemoryState extracts the scheduling state embedded in the stats snapshot.
func (s *ReviewStats) MemoryState() MemoryState {
	return MemoryState{
		IntervalDays:    s.LastIntervalDays,
		RepetitionCount: s.Streak,
		EaseFactor:      s.EaseFactor,
	}
}
