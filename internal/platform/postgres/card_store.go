package postgres

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JoannaMikul/10x-cards-sub002/internal/platform/logger"
	"github.com/JoannaMikul/10x-cards-sub002/internal/store"
)

// PostgresCardStore implements the store.CardStore interface
// using a PostgreSQL database as the storage backend.
type PostgresCardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCardStore creates a new PostgreSQL implementation of the CardStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *PostgresCardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCardStore{
		db:     db,
		logger: logger.With(slog.String("component", "card_store")),
	}
}

// Ensure PostgresCardStore implements store.CardStore interface
var _ store.CardStore = (*PostgresCardStore)(nil)

// FindOwnedIDs implements store.CardStore.FindOwnedIDs
// It returns the subset of cardIDs that exist, belong to the user, and are
// not soft-deleted. The whole check is one query regardless of input size.
// The matched rows are locked for the surrounding transaction so concurrent
// batches touching the same cards serialize here, before any stats row
// exists. Locking in id order keeps two overlapping batches from deadlocking
// on each other.
func (s *PostgresCardStore) FindOwnedIDs(
	ctx context.Context,
	userID uuid.UUID,
	cardIDs []uuid.UUID,
) ([]uuid.UUID, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(cardIDs) == 0 {
		return []uuid.UUID{}, nil
	}

	log.Debug("checking card ownership",
		slog.String("user_id", userID.String()),
		slog.Int("card_count", len(cardIDs)))

	query := `
		SELECT id
		FROM cards
		WHERE user_id = $1
		  AND id = ANY($2::uuid[])
		  AND deleted_at IS NULL
		ORDER BY id
		FOR UPDATE
	`

	rows, err := s.db.QueryContext(ctx, query, userID, uuidStrings(cardIDs))
	if err != nil {
		log.Error("failed to query owned cards",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err, "card", "find_owned_ids")
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	owned := make([]uuid.UUID, 0, len(cardIDs))
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			log.Error("failed to scan card ID row",
				slog.String("error", err.Error()))
			return nil, MapError(err, "card", "find_owned_ids")
		}
		owned = append(owned, id)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, MapError(err, "card", "find_owned_ids")
	}

	log.Debug("card ownership check complete",
		slog.String("user_id", userID.String()),
		slog.Int("requested", len(cardIDs)),
		slog.Int("owned", len(owned)))
	return owned, nil
}

// WithTx implements store.CardStore.WithTx
// It returns a new CardStore instance that uses the provided transaction.
func (s *PostgresCardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &PostgresCardStore{
		db:     tx,
		logger: s.logger,
	}
}
