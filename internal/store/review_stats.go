package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/JoannaMikul/10x-cards-sub002/internal/domain"
)

// StatsFilter narrows a review stats listing. Nil fields are ignored.
type StatsFilter struct {
	CardID           *uuid.UUID
	NextReviewBefore *time.Time

	// After restricts results to rows sorting strictly after the pagination
	// boundary (next_review_at, then card_id as a tiebreak). Rows that tie
	// with the boundary timestamp but have a larger card id still appear, so
	// page concatenation stays exhaustive. AfterCardID is only consulted
	// when After is set.
	After       *time.Time
	AfterCardID *uuid.UUID
}

// ReviewStatsStore defines the interface for derived per-card review
// statistics. Rows are written exclusively by the storage layer's
// derivation mechanism (see ReviewEventStore.CreateMultiple); consumers of
// this interface only read.
type ReviewStatsStore interface {
	// GetForUpdateByCards retrieves the stats rows for the given cards with
	// row-level locks (SELECT ... FOR UPDATE), in a single read. Cards that
	// have never been reviewed simply have no row; the result may therefore
	// be shorter than the input. Must be called within a transaction.
	GetForUpdateByCards(ctx context.Context, userID uuid.UUID, cardIDs []uuid.UUID) ([]*domain.ReviewStats, error)

	// List returns at most limit stats rows belonging to the user that
	// match the filter, sorted soonest-due-first by next review timestamp.
	List(ctx context.Context, userID uuid.UUID, filter StatsFilter, limit int) ([]*domain.ReviewStats, error)

	// WithTx returns a new ReviewStatsStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) ReviewStatsStore
}
