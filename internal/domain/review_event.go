package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for ReviewEvent
var (
	ErrEmptyEventID           = errors.New("review event ID cannot be empty")
	ErrEmptyEventUserID       = errors.New("review event user ID cannot be empty")
	ErrEmptyEventCardID       = errors.New("review event card ID cannot be empty")
	ErrNegativeInterval       = errors.New("interval days must be greater than or equal to 0")
	ErrNegativeResponseTime   = errors.New("response time must be greater than or equal to 0")
	ErrZeroReviewedAt         = errors.New("review event timestamp cannot be zero")
	ErrInvalidGradeForOutcome = errors.New("grade does not match outcome")
)

// ReviewEvent records one outcome of reviewing one card at one moment.
// Events are append-only and immutable once written; no update or delete
// path exists anywhere in the engine.
type ReviewEvent struct {
	ID               uuid.UUID       `json:"id"`
	UserID           uuid.UUID       `json:"user_id"`
	CardID           uuid.UUID       `json:"card_id"`
	Outcome          ReviewOutcome   `json:"outcome"`
	Grade            int             `json:"grade"`
	ResponseTimeMs   *int            `json:"response_time_ms,omitempty"`
	PrevIntervalDays int             `json:"prev_interval_days"`
	NextIntervalDays int             `json:"next_interval_days"`
	IsLearningStep   bool            `json:"is_learning_step"`
	Payload          json.RawMessage `json:"payload,omitempty"` // Opaque caller-supplied context
	ReviewedAt       time.Time       `json:"reviewed_at"`       // Server-assigned
	CreatedAt        time.Time       `json:"created_at"`
}

// NewReviewEvent creates a review event for the given card and outcome.
// The grade is derived from the outcome, never supplied by the caller.
// ReviewedAt is assigned by the caller (the batch processor) so that events
// within one batch preserve submission order.
func NewReviewEvent(
	userID, cardID uuid.UUID,
	outcome ReviewOutcome,
	prevIntervalDays, nextIntervalDays int,
	reviewedAt time.Time,
) (*ReviewEvent, error) {
	grade, err := outcome.Grade()
	if err != nil {
		return nil, err
	}

	event := &ReviewEvent{
		ID:               uuid.New(),
		UserID:           userID,
		CardID:           cardID,
		Outcome:          outcome,
		Grade:            grade,
		PrevIntervalDays: prevIntervalDays,
		NextIntervalDays: nextIntervalDays,
		ReviewedAt:       reviewedAt,
		CreatedAt:        time.Now().UTC(),
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}

	return event, nil
}

// Validate checks if the ReviewEvent has valid data.
// Returns an error if any field fails validation.
func (e *ReviewEvent) Validate() error {
	if e.ID == uuid.Nil {
		return ErrEmptyEventID
	}

	if e.UserID == uuid.Nil {
		return ErrEmptyEventUserID
	}

	if e.CardID == uuid.Nil {
		return ErrEmptyEventCardID
	}

	if !e.Outcome.Valid() {
		return ErrInvalidReviewOutcome
	}

	grade, _ := e.Outcome.Grade()
	if e.Grade != grade {
		return ErrInvalidGradeForOutcome
	}

	if e.PrevIntervalDays < 0 || e.NextIntervalDays < 0 {
		return ErrNegativeInterval
	}

	if e.ResponseTimeMs != nil && *e.ResponseTimeMs < 0 {
		return ErrNegativeResponseTime
	}

	if e.ReviewedAt.IsZero() {
		return ErrZeroReviewedAt
	}

	return nil
}
