package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/JoannaMikul/10x-cards-sub002/internal/domain"
	"github.com/JoannaMikul/10x-cards-sub002/internal/platform/logger"
	"github.com/JoannaMikul/10x-cards-sub002/internal/store"
)

// statsColumns is the canonical column list for review_stats reads.
const statsColumns = `user_id, card_id, total_reviews, success_count, streak,
	last_outcome, last_interval_days, ease_factor, next_review_at,
	last_reviewed_at, aggregates, created_at, updated_at`

// PostgresReviewStatsStore implements the store.ReviewStatsStore interface
// using a PostgreSQL database as the storage backend. The store is read-only
// by contract; rows are written by the event store's derivation step.
type PostgresReviewStatsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresReviewStatsStore creates a new PostgreSQL implementation of the
// ReviewStatsStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresReviewStatsStore(db store.DBTX, logger *slog.Logger) *PostgresReviewStatsStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewStatsStore{
		db:     db,
		logger: logger.With(slog.String("component", "review_stats_store")),
	}
}

// Ensure PostgresReviewStatsStore implements store.ReviewStatsStore interface
var _ store.ReviewStatsStore = (*PostgresReviewStatsStore)(nil)

// GetForUpdateByCards implements store.ReviewStatsStore.GetForUpdateByCards
// It locks the stats rows for the given cards for the duration of the
// surrounding transaction. Cards without history produce no row, so the
// result may be shorter than the input.
func (s *PostgresReviewStatsStore) GetForUpdateByCards(
	ctx context.Context,
	userID uuid.UUID,
	cardIDs []uuid.UUID,
) ([]*domain.ReviewStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(cardIDs) == 0 {
		return []*domain.ReviewStats{}, nil
	}

	log.Debug("locking review stats rows",
		slog.String("user_id", userID.String()),
		slog.Int("card_count", len(cardIDs)))

	query := fmt.Sprintf(`
		SELECT %s
		FROM review_stats
		WHERE user_id = $1
		  AND card_id = ANY($2::uuid[])
		FOR UPDATE
	`, statsColumns)

	rows, err := s.db.QueryContext(ctx, query, userID, uuidStrings(cardIDs))
	if err != nil {
		log.Error("failed to lock review stats rows",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err, "review_stats", "get_for_update_by_cards")
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	stats, err := scanReviewStatsRows(rows)
	if err != nil {
		log.Error("failed to scan review stats rows",
			slog.String("error", err.Error()))
		return nil, MapError(err, "review_stats", "get_for_update_by_cards")
	}

	log.Debug("locked review stats rows",
		slog.String("user_id", userID.String()),
		slog.Int("locked", len(stats)))
	return stats, nil
}

// List implements store.ReviewStatsStore.List
// Rows are returned soonest-due-first. The filter's nil fields are skipped
// when building the WHERE clause.
func (s *PostgresReviewStatsStore) List(
	ctx context.Context,
	userID uuid.UUID,
	filter store.StatsFilter,
	limit int,
) ([]*domain.ReviewStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}

	if filter.CardID != nil {
		args = append(args, *filter.CardID)
		conditions = append(conditions, fmt.Sprintf("card_id = $%d", len(args)))
	}
	if filter.NextReviewBefore != nil {
		args = append(args, *filter.NextReviewBefore)
		conditions = append(conditions, fmt.Sprintf("next_review_at <= $%d", len(args)))
	}
	if filter.After != nil {
		args = append(args, *filter.After)
		tsArg := len(args)
		if filter.AfterCardID != nil {
			// Row comparison keeps rows that tie on the boundary timestamp
			// but sort after it by card id.
			args = append(args, *filter.AfterCardID)
			conditions = append(conditions,
				fmt.Sprintf("(next_review_at, card_id) > ($%d, $%d)", tsArg, len(args)))
		} else {
			conditions = append(conditions, fmt.Sprintf("next_review_at > $%d", tsArg))
		}
	}

	args = append(args, limit)
	query := fmt.Sprintf(`
		SELECT %s
		FROM review_stats
		WHERE %s
		ORDER BY next_review_at ASC, card_id ASC
		LIMIT $%d
	`, statsColumns, strings.Join(conditions, " AND "), len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query review stats",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err, "review_stats", "list")
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	stats, err := scanReviewStatsRows(rows)
	if err != nil {
		log.Error("failed to scan review stats rows",
			slog.String("error", err.Error()))
		return nil, MapError(err, "review_stats", "list")
	}

	log.Debug("listed review stats",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(stats)))
	return stats, nil
}

// scanReviewStatsRows drains the result set into domain objects.
func scanReviewStatsRows(rows *sql.Rows) ([]*domain.ReviewStats, error) {
	stats := []*domain.ReviewStats{}
	for rows.Next() {
		var row domain.ReviewStats
		var outcomeStr string
		var aggregates []byte

		err := rows.Scan(
			&row.UserID,
			&row.CardID,
			&row.TotalReviews,
			&row.SuccessCount,
			&row.Streak,
			&outcomeStr,
			&row.LastIntervalDays,
			&row.EaseFactor,
			&row.NextReviewAt,
			&row.LastReviewedAt,
			&aggregates,
			&row.CreatedAt,
			&row.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		row.LastOutcome = domain.ReviewOutcome(outcomeStr)
		if len(aggregates) > 0 {
			if err := json.Unmarshal(aggregates, &row.Aggregates); err != nil {
				return nil, fmt.Errorf("unmarshaling stats aggregates: %w", err)
			}
		}

		stats = append(stats, &row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

// WithTx implements store.ReviewStatsStore.WithTx
// It returns a new ReviewStatsStore instance that uses the provided transaction.
func (s *PostgresReviewStatsStore) WithTx(tx *sql.Tx) store.ReviewStatsStore {
	return &PostgresReviewStatsStore{
		db:     tx,
		logger: s.logger,
	}
}
