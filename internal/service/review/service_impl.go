package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JoannaMikul/10x-cards-sub002/internal/domain"
	"github.com/JoannaMikul/10x-cards-sub002/internal/domain/srs"
	"github.com/JoannaMikul/10x-cards-sub002/internal/platform/logger"
	"github.com/JoannaMikul/10x-cards-sub002/internal/store"
)

// reviewServiceImpl implements the ReviewService interface.
type reviewServiceImpl struct {
	db         *sql.DB
	cardStore  store.CardStore
	eventStore store.ReviewEventStore
	statsStore store.ReviewStatsStore
	srsService srs.Service
	logger     *slog.Logger
}

// NewReviewService creates a new ReviewService.
// It returns an error if any of the required dependencies are nil.
func NewReviewService(
	db *sql.DB,
	cardStore store.CardStore,
	eventStore store.ReviewEventStore,
	statsStore store.ReviewStatsStore,
	srsService srs.Service,
	logger *slog.Logger,
) (ReviewService, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if cardStore == nil {
		return nil, errors.New("cardStore cannot be nil")
	}
	if eventStore == nil {
		return nil, errors.New("eventStore cannot be nil")
	}
	if statsStore == nil {
		return nil, errors.New("statsStore cannot be nil")
	}
	if srsService == nil {
		return nil, errors.New("srsService cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &reviewServiceImpl{
		db:         db,
		cardStore:  cardStore,
		eventStore: eventStore,
		statsStore: statsStore,
		srsService: srsService,
		logger:     logger.With(slog.String("component", "review_service")),
	}, nil
}

// SubmitSession implements ReviewService.SubmitSession
// The whole batch runs in one transaction: ownership check, row locks on the
// affected stats, scheduling, and the event append. Any failure rolls
// everything back.
func (s *reviewServiceImpl) SubmitSession(
	ctx context.Context,
	userID uuid.UUID,
	session SessionSubmission,
) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if userID == uuid.Nil {
		return 0, fmt.Errorf("%w: user ID cannot be empty", ErrInvalidInput)
	}

	if err := validateSession(session); err != nil {
		log.Warn("session validation failed",
			slog.String("error", err.Error()),
			slog.String("session_id", session.SessionID),
			slog.String("user_id", userID.String()))
		return 0, err
	}

	if len(session.Reviews) == 0 {
		log.Debug("empty session submitted, nothing to log",
			slog.String("session_id", session.SessionID),
			slog.String("user_id", userID.String()))
		return 0, nil
	}

	cardIDs := uniqueCardIDs(session.Reviews)

	log.Debug("submitting review session",
		slog.String("session_id", session.SessionID),
		slog.String("user_id", userID.String()),
		slog.Int("review_count", len(session.Reviews)),
		slog.Int("distinct_cards", len(cardIDs)))

	var logged int
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txCards := s.cardStore.WithTx(tx)
		txStats := s.statsStore.WithTx(tx)
		txEvents := s.eventStore.WithTx(tx)

		// 1. Confirm every referenced card exists and belongs to the user.
		// The read also locks the card rows, so concurrent sessions on the
		// same cards serialize here even when no stats row exists yet.
		owned, err := txCards.FindOwnedIDs(ctx, userID, cardIDs)
		if err != nil {
			return NewReviewServiceError("submit_session", "failed to check card ownership", err)
		}
		if missing := missingCardIDs(cardIDs, owned); len(missing) > 0 {
			return &CardsNotFoundError{CardIDs: missing}
		}

		// 2. Read the affected stats rows under row locks. The card-row lock
		// above already serializes concurrent batches; this keeps the stats
		// snapshot stable for the rest of the transaction.
		statsRows, err := txStats.GetForUpdateByCards(ctx, userID, cardIDs)
		if err != nil {
			return NewReviewServiceError("submit_session", "failed to lock review stats", err)
		}

		states := make(map[uuid.UUID]domain.MemoryState, len(cardIDs))
		for _, row := range statsRows {
			states[row.CardID] = row.MemoryState()
		}

		// 3. Schedule each review in submission order, threading the state
		// so repeated reviews of one card within the batch chain correctly.
		// Each event gets a distinct timestamp to preserve that order.
		now := time.Now().UTC()
		events := make([]*domain.ReviewEvent, 0, len(session.Reviews))
		for i, r := range session.Reviews {
			prev, ok := states[r.CardID]
			if !ok {
				prev = domain.DefaultMemoryState()
			}

			next, err := s.srsService.Advance(prev, r.Outcome)
			if err != nil {
				return fmt.Errorf("%w: review %d: %v", ErrInvalidInput, i, err)
			}

			// The recorded previous interval prefers the caller's own
			// record over the stored state; scheduling never reads it.
			prevInterval := prev.IntervalDays
			if r.PrevIntervalDays != nil {
				prevInterval = *r.PrevIntervalDays
			}

			event, err := domain.NewReviewEvent(
				userID,
				r.CardID,
				r.Outcome,
				prevInterval,
				next.IntervalDays,
				now.Add(time.Duration(i)*time.Millisecond),
			)
			if err != nil {
				return fmt.Errorf("%w: review %d: %v", ErrInvalidInput, i, err)
			}
			event.ResponseTimeMs = r.ResponseTimeMs
			event.IsLearningStep = r.IsLearningStep
			event.Payload = r.Payload

			events = append(events, event)
			states[r.CardID] = next
		}

		// 4. Append the events; the store derives the stats rows in the
		// same transaction.
		if err := txEvents.CreateMultiple(ctx, events); err != nil {
			return NewReviewServiceError("submit_session", "failed to append review events", err)
		}

		logged = len(events)
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info("review session logged",
		slog.String("session_id", session.SessionID),
		slog.String("user_id", userID.String()),
		slog.Int("logged", logged))
	return logged, nil
}

// ListEvents implements ReviewService.ListEvents
func (s *reviewServiceImpl) ListEvents(
	ctx context.Context,
	userID uuid.UUID,
	params ListEventsParams,
) (*EventPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user ID cannot be empty", ErrInvalidInput)
	}

	limit, err := normalizeLimit(params.Limit)
	if err != nil {
		return nil, err
	}

	filter := store.EventFilter{
		CardID: params.CardID,
		From:   params.From,
		To:     params.To,
	}
	if params.Cursor != "" {
		before, err := decodeCursor(params.Cursor)
		if err != nil {
			return nil, err
		}
		filter.Before = &before
	}

	// Fetch one extra row to learn whether another page exists.
	events, err := s.eventStore.List(ctx, userID, filter, limit+1)
	if err != nil {
		return nil, NewReviewServiceError("list_events", "failed to list review events", err)
	}

	page := &EventPage{Events: events}
	if len(events) > limit {
		page.Events = events[:limit]
		page.HasMore = true
		page.NextCursor = encodeCursor(page.Events[limit-1].ReviewedAt)
	}

	log.Debug("listed review events",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(page.Events)),
		slog.Bool("has_more", page.HasMore))
	return page, nil
}

// ListStats implements ReviewService.ListStats
func (s *reviewServiceImpl) ListStats(
	ctx context.Context,
	userID uuid.UUID,
	params ListStatsParams,
) (*StatsPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user ID cannot be empty", ErrInvalidInput)
	}

	limit, err := normalizeLimit(params.Limit)
	if err != nil {
		return nil, err
	}

	filter := store.StatsFilter{
		CardID:           params.CardID,
		NextReviewBefore: params.DueBefore,
	}
	if params.Cursor != "" {
		after, afterCard, err := decodeStatsCursor(params.Cursor)
		if err != nil {
			return nil, err
		}
		filter.After = &after
		filter.AfterCardID = &afterCard
	}

	stats, err := s.statsStore.List(ctx, userID, filter, limit+1)
	if err != nil {
		return nil, NewReviewServiceError("list_stats", "failed to list review stats", err)
	}

	page := &StatsPage{Stats: stats}
	if len(stats) > limit {
		page.Stats = stats[:limit]
		page.HasMore = true
		last := page.Stats[limit-1]
		page.NextCursor = encodeStatsCursor(last.NextReviewAt, last.CardID)
	}

	log.Debug("listed review stats",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(page.Stats)),
		slog.Bool("has_more", page.HasMore))
	return page, nil
}

// validateSession checks the whole submission before anything touches the
// database. The first problem found rejects the batch.
func validateSession(session SessionSubmission) error {
	if session.StartedAt != nil && session.CompletedAt != nil &&
		session.CompletedAt.Before(*session.StartedAt) {
		return fmt.Errorf("%w: session completed before it started", ErrInvalidInput)
	}

	if len(session.Reviews) > MaxBatchSize {
		return fmt.Errorf("%w: session carries %d reviews, maximum is %d",
			ErrInvalidInput, len(session.Reviews), MaxBatchSize)
	}

	for i, r := range session.Reviews {
		if r.CardID == uuid.Nil {
			return fmt.Errorf("%w: review %d: card ID cannot be empty", ErrInvalidInput, i)
		}
		if !r.Outcome.Valid() {
			return fmt.Errorf("%w: review %d: unknown outcome %q", ErrInvalidInput, i, r.Outcome)
		}
		if r.ResponseTimeMs != nil && *r.ResponseTimeMs < 0 {
			return fmt.Errorf("%w: review %d: response time cannot be negative", ErrInvalidInput, i)
		}
		if r.PrevIntervalDays != nil && *r.PrevIntervalDays < 0 {
			return fmt.Errorf("%w: review %d: previous interval cannot be negative", ErrInvalidInput, i)
		}
	}

	return nil
}

// normalizeLimit applies the default and enforces the page size bounds.
func normalizeLimit(limit int) (int, error) {
	if limit == 0 {
		return DefaultPageSize, nil
	}
	if limit < 0 || limit > MaxPageSize {
		return 0, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, MaxPageSize)
	}
	return limit, nil
}

// uniqueCardIDs returns the distinct card IDs in submission order.
func uniqueCardIDs(reviews []ReviewSubmission) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(reviews))
	ids := make([]uuid.UUID, 0, len(reviews))
	for _, r := range reviews {
		if _, ok := seen[r.CardID]; ok {
			continue
		}
		seen[r.CardID] = struct{}{}
		ids = append(ids, r.CardID)
	}
	return ids
}

// missingCardIDs returns the requested IDs absent from the owned set.
func missingCardIDs(requested, owned []uuid.UUID) []uuid.UUID {
	ownedSet := make(map[uuid.UUID]struct{}, len(owned))
	for _, id := range owned {
		ownedSet[id] = struct{}{}
	}

	var missing []uuid.UUID
	for _, id := range requested {
		if _, ok := ownedSet[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}
