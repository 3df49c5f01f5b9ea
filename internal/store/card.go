package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// CardStore defines the interface for card data persistence as seen by the
// review engine. Card creation and content management belong to the
// card-management subsystem; the engine only reads cards to confirm
// ownership before writing review events.
type CardStore interface {
	// FindOwnedIDs returns the subset of the given card IDs that exist,
	// belong to the user, and are not soft-deleted. The input should be
	// deduplicated by the caller; the check is a single read regardless of
	// input size. The result order is unspecified.
	//
	// When called within a transaction the read locks the matched card rows
	// (SELECT ... FOR UPDATE) until commit. The card row is the anchor for
	// per-card serialization: a stats row may not exist yet for a
	// never-reviewed card, so concurrent batches lock the cards themselves.
	//
	// A missing ID is not an error at this layer: callers compare the
	// returned set against their request to decide how to fail.
	FindOwnedIDs(ctx context.Context, userID uuid.UUID, cardIDs []uuid.UUID) ([]uuid.UUID, error)

	// WithTx returns a new CardStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) CardStore
}
