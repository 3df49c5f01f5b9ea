package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JoannaMikul/10x-cards-sub002/internal/domain"
	"github.com/JoannaMikul/10x-cards-sub002/internal/domain/srs"
	"github.com/JoannaMikul/10x-cards-sub002/internal/platform/logger"
	"github.com/JoannaMikul/10x-cards-sub002/internal/store"
)

// eventColumns is the canonical column list for review_events reads.
const eventColumns = `id, user_id, card_id, outcome, grade, response_time_ms,
	prev_interval_days, next_interval_days, is_learning_step, payload,
	reviewed_at, created_at`

// PostgresReviewEventStore implements the store.ReviewEventStore interface
// using a PostgreSQL database as the storage backend. It owns the derivation
// of review_stats rows: every successful event insertion recomputes the
// affected cards' stats within the same transaction.
type PostgresReviewEventStore struct {
	db         store.DBTX
	logger     *slog.Logger
	srsService srs.Service
}

// NewPostgresReviewEventStore creates a new PostgreSQL implementation of the
// ReviewEventStore interface. The srsService is used to replay event streams
// when deriving stats; it must be the same service the submission path uses
// so replayed state matches scheduled state.
// If logger is nil, a default logger will be used.
func NewPostgresReviewEventStore(
	db store.DBTX,
	srsService srs.Service,
	logger *slog.Logger,
) *PostgresReviewEventStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresReviewEventStore{
		db:         db,
		logger:     logger.With(slog.String("component", "review_event_store")),
		srsService: srsService,
	}
}

// Ensure PostgresReviewEventStore implements store.ReviewEventStore interface
var _ store.ReviewEventStore = (*PostgresReviewEventStore)(nil)

// CreateMultiple implements store.ReviewEventStore.CreateMultiple
// It appends all events in one multi-row INSERT and then recomputes the
// derived stats row for every card the batch touched. Both steps run on the
// store's DBTX, so when that is a transaction the whole operation is atomic.
func (s *PostgresReviewEventStore) CreateMultiple(
	ctx context.Context,
	events []*domain.ReviewEvent,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(events) == 0 {
		return nil
	}

	for _, event := range events {
		if err := event.Validate(); err != nil {
			log.Warn("review event validation failed during create",
				slog.String("error", err.Error()),
				slog.String("event_id", event.ID.String()))
			return err
		}
	}

	var sb strings.Builder
	sb.WriteString(`
		INSERT INTO review_events (id, user_id, card_id, outcome, grade,
			response_time_ms, prev_interval_days, next_interval_days,
			is_learning_step, payload, reviewed_at, created_at)
		VALUES `)

	const columnsPerRow = 12
	args := make([]interface{}, 0, len(events)*columnsPerRow)
	for i, event := range events {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * columnsPerRow
		sb.WriteString("(")
		for j := 1; j <= columnsPerRow; j++ {
			if j > 1 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", base+j)
		}
		sb.WriteString(")")

		var payload interface{}
		if len(event.Payload) > 0 {
			payload = []byte(event.Payload)
		}
		var responseTime interface{}
		if event.ResponseTimeMs != nil {
			responseTime = *event.ResponseTimeMs
		}

		args = append(args,
			event.ID,
			event.UserID,
			event.CardID,
			string(event.Outcome),
			event.Grade,
			responseTime,
			event.PrevIntervalDays,
			event.NextIntervalDays,
			event.IsLearningStep,
			payload,
			event.ReviewedAt,
			event.CreatedAt,
		)
	}

	if _, err := s.db.ExecContext(ctx, sb.String(), args...); err != nil {
		log.Error("failed to insert review events",
			slog.String("error", err.Error()),
			slog.Int("event_count", len(events)))
		return MapError(err, "review_event", "create_multiple")
	}

	// Recompute derived stats for each distinct card in the batch. The
	// replay reads the events just inserted because both statements share
	// the store's DBTX.
	type userCard struct {
		userID uuid.UUID
		cardID uuid.UUID
	}
	seen := make(map[userCard]struct{}, len(events))
	for _, event := range events {
		key := userCard{userID: event.UserID, cardID: event.CardID}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		if err := s.recomputeStats(ctx, event.UserID, event.CardID); err != nil {
			log.Error("failed to recompute review stats",
				slog.String("error", err.Error()),
				slog.String("card_id", event.CardID.String()))
			return err
		}
	}

	log.Info("review events created successfully",
		slog.Int("event_count", len(events)),
		slog.Int("cards_touched", len(seen)))
	return nil
}

// recomputeStats rebuilds the review_stats row for one (user, card) pair by
// replaying the card's full event stream, oldest first, through srs.Replay.
// This method is only the SQL shell around the fold: read the history, fold,
// upsert.
func (s *PostgresReviewEventStore) recomputeStats(
	ctx context.Context,
	userID, cardID uuid.UUID,
) error {
	query := `
		SELECT outcome, reviewed_at
		FROM review_events
		WHERE user_id = $1 AND card_id = $2
		ORDER BY reviewed_at ASC, created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, userID, cardID)
	if err != nil {
		return MapError(err, "review_event", "recompute_stats")
	}
	defer func() {
		if err := rows.Close(); err != nil {
			s.logger.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	var history []srs.ReviewedOutcome
	for rows.Next() {
		var outcomeStr string
		var reviewedAt time.Time
		if err := rows.Scan(&outcomeStr, &reviewedAt); err != nil {
			return MapError(err, "review_event", "recompute_stats")
		}
		history = append(history, srs.ReviewedOutcome{
			Outcome:    domain.ReviewOutcome(outcomeStr),
			ReviewedAt: reviewedAt,
		})
	}

	if err := rows.Err(); err != nil {
		return MapError(err, "review_event", "recompute_stats")
	}

	result, err := srs.Replay(s.srsService, history)
	if err != nil {
		return fmt.Errorf("replaying event stream for card %s: %w", cardID, err)
	}

	if result.TotalReviews == 0 {
		// Nothing to derive; the caller just inserted events so this
		// indicates the read ran outside the insert's transaction.
		return store.NewStoreError("review_stats", "recompute_stats",
			"no events found for replay", nil)
	}

	aggregatesJSON, err := json.Marshal(result.Aggregates)
	if err != nil {
		return fmt.Errorf("marshaling stats aggregates: %w", err)
	}

	now := time.Now().UTC()

	upsert := `
		INSERT INTO review_stats (user_id, card_id, total_reviews,
			success_count, streak, last_outcome, last_interval_days,
			ease_factor, next_review_at, last_reviewed_at, aggregates,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
		ON CONFLICT (user_id, card_id) DO UPDATE SET
			total_reviews = EXCLUDED.total_reviews,
			success_count = EXCLUDED.success_count,
			streak = EXCLUDED.streak,
			last_outcome = EXCLUDED.last_outcome,
			last_interval_days = EXCLUDED.last_interval_days,
			ease_factor = EXCLUDED.ease_factor,
			next_review_at = EXCLUDED.next_review_at,
			last_reviewed_at = EXCLUDED.last_reviewed_at,
			aggregates = EXCLUDED.aggregates,
			updated_at = EXCLUDED.updated_at
	`

	_, err = s.db.ExecContext(
		ctx,
		upsert,
		userID,
		cardID,
		result.TotalReviews,
		result.SuccessCount,
		result.State.RepetitionCount,
		string(result.LastOutcome),
		result.State.IntervalDays,
		result.State.EaseFactor,
		result.NextReviewAt,
		result.LastReviewedAt,
		aggregatesJSON,
		now,
	)
	if err != nil {
		return MapError(err, "review_stats", "recompute_stats")
	}

	return nil
}

// List implements store.ReviewEventStore.List
// Events are returned newest-first. The filter's nil fields are skipped when
// building the WHERE clause.
func (s *PostgresReviewEventStore) List(
	ctx context.Context,
	userID uuid.UUID,
	filter store.EventFilter,
	limit int,
) ([]*domain.ReviewEvent, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	conditions := []string{"user_id = $1"}
	args := []interface{}{userID}

	if filter.CardID != nil {
		args = append(args, *filter.CardID)
		conditions = append(conditions, fmt.Sprintf("card_id = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("reviewed_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("reviewed_at <= $%d", len(args)))
	}
	if filter.Before != nil {
		args = append(args, *filter.Before)
		conditions = append(conditions, fmt.Sprintf("reviewed_at < $%d", len(args)))
	}

	args = append(args, limit)
	query := fmt.Sprintf(`
		SELECT %s
		FROM review_events
		WHERE %s
		ORDER BY reviewed_at DESC, created_at DESC
		LIMIT $%d
	`, eventColumns, strings.Join(conditions, " AND "), len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query review events",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, MapError(err, "review_event", "list")
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	events := []*domain.ReviewEvent{}
	for rows.Next() {
		event, err := scanReviewEvent(rows)
		if err != nil {
			log.Error("failed to scan review event row",
				slog.String("error", err.Error()))
			return nil, MapError(err, "review_event", "list")
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows",
			slog.String("error", err.Error()))
		return nil, MapError(err, "review_event", "list")
	}

	log.Debug("listed review events",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(events)))
	return events, nil
}

// scanReviewEvent scans a single review event row.
func scanReviewEvent(rows *sql.Rows) (*domain.ReviewEvent, error) {
	var event domain.ReviewEvent
	var outcomeStr string
	var responseTime sql.NullInt64
	var payload []byte

	err := rows.Scan(
		&event.ID,
		&event.UserID,
		&event.CardID,
		&outcomeStr,
		&event.Grade,
		&responseTime,
		&event.PrevIntervalDays,
		&event.NextIntervalDays,
		&event.IsLearningStep,
		&payload,
		&event.ReviewedAt,
		&event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	event.Outcome = domain.ReviewOutcome(outcomeStr)
	if responseTime.Valid {
		ms := int(responseTime.Int64)
		event.ResponseTimeMs = &ms
	}
	if len(payload) > 0 {
		event.Payload = json.RawMessage(payload)
	}

	return &event, nil
}

// WithTx implements store.ReviewEventStore.WithTx
// It returns a new ReviewEventStore instance that uses the provided transaction.
func (s *PostgresReviewEventStore) WithTx(tx *sql.Tx) store.ReviewEventStore {
	return &PostgresReviewEventStore{
		db:         tx,
		logger:     s.logger,
		srsService: s.srsService,
	}
}
