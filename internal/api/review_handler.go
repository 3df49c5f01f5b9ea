// Package api provides HTTP handlers for the API.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/JoannaMikul/10x-cards-sub002/internal/api/shared"
	"github.com/JoannaMikul/10x-cards-sub002/internal/domain"
	"github.com/JoannaMikul/10x-cards-sub002/internal/platform/logger"
	"github.com/JoannaMikul/10x-cards-sub002/internal/service/review"
)

// ReviewHandler handles review-related HTTP requests
type ReviewHandler struct {
	reviewService review.ReviewService
	logger        *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(
	reviewService review.ReviewService,
	logger *slog.Logger,
) *ReviewHandler {
	if reviewService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("reviewService cannot be nil for ReviewHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ReviewHandler")
	}

	return &ReviewHandler{
		reviewService: reviewService,
		logger:        logger.With(slog.String("component", "review_handler")),
	}
}

// SubmitSession handles POST /reviews/sessions requests
// It validates and logs a batch of review outcomes in a single transaction.
func (h *ReviewHandler) SubmitSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := authenticatedUserID(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized,
			CodeUnauthenticated, "User ID not found or invalid")
		return
	}

	var req SubmitSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Debug("failed to decode session submission",
			slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest,
			CodeInvalidInput, "Invalid request body")
		return
	}

	if err := shared.ValidateRequest(&req); err != nil {
		log.Debug("session submission failed validation",
			slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest,
			CodeInvalidInput, SanitizeValidationError(err))
		return
	}

	submission, err := toSessionSubmission(req)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			CodeInvalidInput, err.Error())
		return
	}

	logged, err := h.reviewService.SubmitSession(r.Context(), userID, submission)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), MapErrorToCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("session submitted",
		slog.String("user_id", userID.String()),
		slog.Int("logged", logged))
	shared.RespondWithJSON(w, r, http.StatusCreated, SubmitSessionResponse{Logged: logged})
}

// ListEvents handles GET /reviews/events requests
// It returns a page of the caller's review event log, newest first.
func (h *ReviewHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := authenticatedUserID(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized,
			CodeUnauthenticated, "User ID not found or invalid")
		return
	}

	params := review.ListEventsParams{Cursor: r.URL.Query().Get("cursor")}

	var err error
	if params.CardID, err = queryUUID(r, "card_id"); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, CodeInvalidInput, err.Error())
		return
	}
	if params.From, err = queryTime(r, "from"); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, CodeInvalidInput, err.Error())
		return
	}
	if params.To, err = queryTime(r, "to"); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, CodeInvalidInput, err.Error())
		return
	}
	if params.Limit, err = queryLimit(r); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, CodeInvalidInput, err.Error())
		return
	}

	page, err := h.reviewService.ListEvents(r.Context(), userID, params)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), MapErrorToCode(err), GetSafeErrorMessage(err), err)
		return
	}

	response := ReviewEventListResponse{
		Data: make([]ReviewEventResponse, 0, len(page.Events)),
		Page: PageInfo{NextCursor: page.NextCursor, HasMore: page.HasMore},
	}
	for _, event := range page.Events {
		response.Data = append(response.Data, eventToResponse(event))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// ListStats handles GET /reviews/stats requests
// It returns a page of the caller's per-card statistics, ordered by next
// review due time ascending.
func (h *ReviewHandler) ListStats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := authenticatedUserID(r)
	if !ok {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized,
			CodeUnauthenticated, "User ID not found or invalid")
		return
	}

	params := review.ListStatsParams{Cursor: r.URL.Query().Get("cursor")}

	var err error
	if params.CardID, err = queryUUID(r, "card_id"); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, CodeInvalidInput, err.Error())
		return
	}
	if params.DueBefore, err = queryTime(r, "next_review_before"); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, CodeInvalidInput, err.Error())
		return
	}
	if params.Limit, err = queryLimit(r); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, CodeInvalidInput, err.Error())
		return
	}

	page, err := h.reviewService.ListStats(r.Context(), userID, params)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), MapErrorToCode(err), GetSafeErrorMessage(err), err)
		return
	}

	response := ReviewStatsListResponse{
		Data: make([]ReviewStatsResponse, 0, len(page.Stats)),
		Page: PageInfo{NextCursor: page.NextCursor, HasMore: page.HasMore},
	}
	for _, stats := range page.Stats {
		response.Data = append(response.Data, statsToResponse(stats))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, response)
}

// authenticatedUserID extracts the user ID the auth middleware stored.
func authenticatedUserID(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	return userID, ok && userID != uuid.Nil
}

// toSessionSubmission converts the API payload into the service's input.
func toSessionSubmission(req SubmitSessionRequest) (review.SessionSubmission, error) {
	submission := review.SessionSubmission{
		SessionID:   req.SessionID,
		StartedAt:   req.StartedAt,
		CompletedAt: req.CompletedAt,
		Reviews:     make([]review.ReviewSubmission, 0, len(req.Reviews)),
	}

	for i, item := range req.Reviews {
		cardID, err := uuid.Parse(item.CardID)
		if err != nil {
			return review.SessionSubmission{},
				fmt.Errorf("review %d: invalid card_id %q", i, item.CardID)
		}
		submission.Reviews = append(submission.Reviews, review.ReviewSubmission{
			CardID:           cardID,
			Outcome:          domain.ReviewOutcome(item.Outcome),
			ResponseTimeMs:   item.ResponseTimeMs,
			PrevIntervalDays: item.PrevIntervalDays,
			NextIntervalDays: item.NextIntervalDays,
			IsLearningStep:   item.WasLearningStep,
			Payload:          item.Payload,
		})
	}

	return submission, nil
}

// queryUUID parses an optional UUID query parameter.
func queryUUID(r *http.Request, name string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return &id, nil
}

// queryTime parses an optional RFC 3339 timestamp query parameter.
func queryTime(r *http.Request, name string) (*time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return &t, nil
}

// queryLimit parses the optional limit query parameter. An absent parameter
// means the service default; an explicit value must be positive. The service
// enforces the upper bound.
func queryLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, fmt.Errorf("invalid limit: %q", raw)
	}
	return limit, nil
}
