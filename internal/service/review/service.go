// Package review provides the application service for the review engine:
// batch submission of review outcomes and paginated access to the event log
// and derived per-card statistics.
package review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JoannaMikul/10x-cards-sub002/internal/domain"
)

// Pagination bounds for the listing operations.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// MaxBatchSize caps the number of reviews a single session may carry.
const MaxBatchSize = 100

// Common service errors - sentinel errors used across service implementations.
// Callers check these with errors.Is(); the API layer maps them to HTTP
// status codes.
var (
	// ErrInvalidInput indicates the submission or listing parameters failed
	// validation. The whole request is rejected; nothing was written.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCardsNotFound indicates at least one referenced card does not exist,
	// is soft-deleted, or belongs to another user. Ownership failures are
	// deliberately indistinguishable from missing cards.
	// API layer should map this to HTTP 404 Not Found.
	ErrCardsNotFound = errors.New("one or more cards not found")

	// ErrInvalidCursor indicates a pagination cursor could not be decoded.
	// API layer should map this to HTTP 400 Bad Request.
	ErrInvalidCursor = errors.New("invalid pagination cursor")
)

// CardsNotFoundError carries the IDs that failed the ownership check so the
// API layer can enumerate them for the caller.
type CardsNotFoundError struct {
	CardIDs []uuid.UUID
}

// Error implements the error interface for CardsNotFoundError.
func (e *CardsNotFoundError) Error() string {
	ids := make([]string, len(e.CardIDs))
	for i, id := range e.CardIDs {
		ids[i] = id.String()
	}
	return fmt.Sprintf("cards not found: %s", strings.Join(ids, ", "))
}

// Unwrap returns ErrCardsNotFound so errors.Is works on the sentinel.
func (e *CardsNotFoundError) Unwrap() error {
	return ErrCardsNotFound
}

// ReviewServiceError is a custom error type for unexpected review service
// failures.
type ReviewServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ReviewServiceError.
func (e *ReviewServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("review service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("review service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ReviewServiceError) Unwrap() error {
	return e.Err
}

// NewReviewServiceError creates a new ReviewServiceError.
func NewReviewServiceError(operation, message string, err error) *ReviewServiceError {
	return &ReviewServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// ReviewSubmission is one review outcome within a session batch. The caller
// reports what happened; all scheduling fields are computed server-side. A
// client-supplied next interval is accepted for telemetry but never trusted.
type ReviewSubmission struct {
	CardID         uuid.UUID
	Outcome        domain.ReviewOutcome
	ResponseTimeMs *int

	// PrevIntervalDays is the caller's record of the interval that preceded
	// this review. When set it is stored on the event in place of the last
	// known interval; it never influences scheduling.
	PrevIntervalDays *int

	NextIntervalDays *int // Advisory only; the scheduler's result wins
	IsLearningStep   bool
	Payload          json.RawMessage
}

// SessionSubmission is a batch of review outcomes from one study session.
// SessionID is opaque correlation metadata; it is logged but plays no role
// in deduplication or scheduling.
type SessionSubmission struct {
	SessionID   string
	StartedAt   *time.Time
	CompletedAt *time.Time
	Reviews     []ReviewSubmission
}

// ListEventsParams narrows and paginates an event log listing.
type ListEventsParams struct {
	CardID *uuid.UUID
	From   *time.Time
	To     *time.Time
	Limit  int
	Cursor string
}

// ListStatsParams narrows and paginates a stats listing.
type ListStatsParams struct {
	CardID    *uuid.UUID
	DueBefore *time.Time
	Limit     int
	Cursor    string
}

// EventPage is one page of the event log, newest first.
type EventPage struct {
	Events     []*domain.ReviewEvent
	NextCursor string
	HasMore    bool
}

// StatsPage is one page of per-card stats, soonest due first.
type StatsPage struct {
	Stats      []*domain.ReviewStats
	NextCursor string
	HasMore    bool
}

// ReviewService provides the review engine's operations.
type ReviewService interface {
	// SubmitSession validates and logs a batch of review outcomes in a
	// single transaction, advancing each card's schedule. Returns the number
	// of events logged. The batch is all-or-nothing: any invalid review or
	// unknown card rejects the whole session with nothing written. An empty
	// session succeeds and logs zero events.
	SubmitSession(ctx context.Context, userID uuid.UUID, session SessionSubmission) (int, error)

	// ListEvents returns a page of the caller's review events, newest first.
	ListEvents(ctx context.Context, userID uuid.UUID, params ListEventsParams) (*EventPage, error)

	// ListStats returns a page of the caller's per-card stats, ordered by
	// next review due time ascending.
	ListStats(ctx context.Context, userID uuid.UUID, params ListStatsParams) (*StatsPage, error)
}
