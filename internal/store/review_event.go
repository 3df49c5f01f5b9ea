package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/JoannaMikul/10x-cards-sub002/internal/domain"
)

// EventFilter narrows a review event listing. Nil fields are ignored.
type EventFilter struct {
	CardID *uuid.UUID
	From   *time.Time
	To     *time.Time

	// Before restricts results to events reviewed strictly before the given
	// instant. It carries the decoded pagination cursor.
	Before *time.Time
}

// ReviewEventStore defines the interface for review event persistence.
// The event log is append-only: no update or delete methods exist.
type ReviewEventStore interface {
	// CreateMultiple appends the given events to the log in a single bulk
	// write and, within the same transaction, recomputes the derived
	// ReviewStats row for every (user, card) pair the batch touches by
	// replaying that card's full event stream through the scheduling
	// algorithm. Callers never write stats themselves.
	//
	// IMPORTANT: this method MUST be run within a transaction for
	// atomicity; use WithTx together with store.RunInTransaction. All
	// events must be valid according to domain validation rules.
	CreateMultiple(ctx context.Context, events []*domain.ReviewEvent) error

	// List returns at most limit events belonging to the user that match
	// the filter, sorted newest-first by review timestamp. Callers
	// implement pagination by asking for one row more than they return.
	List(ctx context.Context, userID uuid.UUID, filter EventFilter, limit int) ([]*domain.ReviewEvent, error)

	// WithTx returns a new ReviewEventStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ReviewEventStore
}
