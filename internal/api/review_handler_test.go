package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JoannaMikul/10x-cards-sub002/internal/api"
	"github.com/JoannaMikul/10x-cards-sub002/internal/api/shared"
	"github.com/JoannaMikul/10x-cards-sub002/internal/domain"
	"github.com/JoannaMikul/10x-cards-sub002/internal/service/review"
)

// MockReviewService mocks the review.ReviewService interface
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) SubmitSession(
	ctx context.Context,
	userID uuid.UUID,
	session review.SessionSubmission,
) (int, error) {
	args := m.Called(ctx, userID, session)
	return args.Int(0), args.Error(1)
}

func (m *MockReviewService) ListEvents(
	ctx context.Context,
	userID uuid.UUID,
	params review.ListEventsParams,
) (*review.EventPage, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.EventPage), args.Error(1)
}

func (m *MockReviewService) ListStats(
	ctx context.Context,
	userID uuid.UUID,
	params review.ListStatsParams,
) (*review.StatsPage, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*review.StatsPage), args.Error(1)
}

func newHandler(service review.ReviewService) *api.ReviewHandler {
	return api.NewReviewHandler(service, slog.Default())
}

// authenticatedRequest builds a request carrying the user ID the auth
// middleware would have set.
func authenticatedRequest(
	t *testing.T,
	method, target string,
	userID uuid.UUID,
	body interface{},
) *http.Request {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
	return req.WithContext(ctx)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) shared.ErrorResponse {
	t.Helper()

	var resp shared.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestSubmitSessionSuccess(t *testing.T) {
	t.Parallel()

	service := new(MockReviewService)
	userID := uuid.New()
	cardID := uuid.New()

	service.On("SubmitSession", mock.Anything, userID,
		mock.MatchedBy(func(s review.SessionSubmission) bool {
			return len(s.Reviews) == 1 &&
				s.Reviews[0].CardID == cardID &&
				s.Reviews[0].Outcome == domain.ReviewOutcomeGood
		})).
		Return(1, nil)

	body := map[string]interface{}{
		"session_id": "sess-42",
		"reviews": []map[string]interface{}{
			{"card_id": cardID.String(), "outcome": "good"},
		},
	}

	rec := httptest.NewRecorder()
	req := authenticatedRequest(t, http.MethodPost, "/api/reviews/sessions", userID, body)
	newHandler(service).SubmitSession(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp api.SubmitSessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Logged)
}

func TestSubmitSessionEmptyBatch(t *testing.T) {
	t.Parallel()

	service := new(MockReviewService)
	userID := uuid.New()

	service.On("SubmitSession", mock.Anything, userID, mock.Anything).Return(0, nil)

	rec := httptest.NewRecorder()
	req := authenticatedRequest(t, http.MethodPost, "/api/reviews/sessions", userID,
		map[string]interface{}{"reviews": []interface{}{}})
	newHandler(service).SubmitSession(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp api.SubmitSessionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Zero(t, resp.Logged)
}

func TestSubmitSessionRequiresAuthentication(t *testing.T) {
	t.Parallel()

	service := new(MockReviewService)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/reviews/sessions", bytes.NewReader(nil))
	newHandler(service).SubmitSession(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, api.CodeUnauthenticated, decodeError(t, rec).Code)
	service.AssertNotCalled(t, "SubmitSession", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitSessionRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	service := new(MockReviewService)
	userID := uuid.New()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/reviews/sessions",
		bytes.NewReader([]byte("{not json")))
	req = req.WithContext(context.WithValue(req.Context(), shared.UserIDContextKey, userID))
	newHandler(service).SubmitSession(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, api.CodeInvalidInput, decodeError(t, rec).Code)
}

func TestSubmitSessionRejectsUnknownOutcome(t *testing.T) {
	t.Parallel()

	service := new(MockReviewService)
	userID := uuid.New()

	body := map[string]interface{}{
		"reviews": []map[string]interface{}{
			{"card_id": uuid.New().String(), "outcome": "sorta"},
		},
	}

	rec := httptest.NewRecorder()
	req := authenticatedRequest(t, http.MethodPost, "/api/reviews/sessions", userID, body)
	newHandler(service).SubmitSession(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, api.CodeInvalidInput, decodeError(t, rec).Code)
	service.AssertNotCalled(t, "SubmitSession", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitSessionUnknownCard(t *testing.T) {
	t.Parallel()

	service := new(MockReviewService)
	userID := uuid.New()
	missing := uuid.New()

	service.On("SubmitSession", mock.Anything, userID, mock.Anything).
		Return(0, &review.CardsNotFoundError{CardIDs: []uuid.UUID{missing}})

	body := map[string]interface{}{
		"reviews": []map[string]interface{}{
			{"card_id": missing.String(), "outcome": "good"},
		},
	}

	rec := httptest.NewRecorder()
	req := authenticatedRequest(t, http.MethodPost, "/api/reviews/sessions", userID, body)
	newHandler(service).SubmitSession(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	resp := decodeError(t, rec)
	assert.Equal(t, api.CodeCardNotFound, resp.Code)
	assert.Contains(t, resp.Error, missing.String(),
		"the response enumerates the unknown card IDs")
}

func TestListEventsSuccess(t *testing.T) {
	t.Parallel()

	service := new(MockReviewService)
	userID := uuid.New()

	event, err := domain.NewReviewEvent(
		userID, uuid.New(), domain.ReviewOutcomeEasy, 1, 3, time.Now().UTC())
	require.NoError(t, err)

	service.On("ListEvents", mock.Anything, userID,
		mock.MatchedBy(func(p review.ListEventsParams) bool {
			return p.Limit == 5 && p.Cursor == "abc"
		})).
		Return(&review.EventPage{
			Events:     []*domain.ReviewEvent{event},
			NextCursor: "next",
			HasMore:    true,
		}, nil)

	rec := httptest.NewRecorder()
	req := authenticatedRequest(t, http.MethodGet,
		"/api/reviews/events?limit=5&cursor=abc", userID, nil)
	newHandler(service).ListEvents(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp api.ReviewEventListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, event.ID.String(), resp.Data[0].ID)
	assert.Equal(t, "easy", resp.Data[0].Outcome)
	assert.Equal(t, "next", resp.Page.NextCursor)
	assert.True(t, resp.Page.HasMore)
}

func TestListEventsRejectsBadQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target string
	}{
		{"bad limit", "/api/reviews/events?limit=lots"},
		{"zero limit", "/api/reviews/events?limit=0"},
		{"negative limit", "/api/reviews/events?limit=-5"},
		{"bad card_id", "/api/reviews/events?card_id=not-a-uuid"},
		{"bad from", "/api/reviews/events?from=yesterday"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			service := new(MockReviewService)

			rec := httptest.NewRecorder()
			req := authenticatedRequest(t, http.MethodGet, tt.target, uuid.New(), nil)
			newHandler(service).ListEvents(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, api.CodeInvalidInput, decodeError(t, rec).Code)
			service.AssertNotCalled(t, "ListEvents", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestListStatsSuccess(t *testing.T) {
	t.Parallel()

	service := new(MockReviewService)
	userID := uuid.New()
	cardID := uuid.New()

	service.On("ListStats", mock.Anything, userID, mock.Anything).
		Return(&review.StatsPage{
			Stats: []*domain.ReviewStats{{
				UserID:           userID,
				CardID:           cardID,
				TotalReviews:     4,
				SuccessCount:     3,
				Streak:           2,
				LastOutcome:      domain.ReviewOutcomeGood,
				LastIntervalDays: 6,
				EaseFactor:       2.5,
				NextReviewAt:     time.Now().UTC().Add(6 * 24 * time.Hour),
				LastReviewedAt:   time.Now().UTC(),
				Aggregates: domain.StatsAggregates{
					AverageIntervalDays: 2.5,
					SuccessRate:         0.75,
					CurrentStreak:       2,
				},
			}},
		}, nil)

	rec := httptest.NewRecorder()
	req := authenticatedRequest(t, http.MethodGet, "/api/reviews/stats", userID, nil)
	newHandler(service).ListStats(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp api.ReviewStatsListResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, cardID.String(), resp.Data[0].CardID)
	assert.Equal(t, 4, resp.Data[0].TotalReviews)
	assert.InDelta(t, 0.75, resp.Data[0].SuccessRate, 0.0001)
	assert.False(t, resp.Page.HasMore)
}

func TestListStatsServiceFailure(t *testing.T) {
	t.Parallel()

	service := new(MockReviewService)
	userID := uuid.New()

	service.On("ListStats", mock.Anything, userID, mock.Anything).
		Return(nil, review.NewReviewServiceError("list_stats", "boom", nil))

	rec := httptest.NewRecorder()
	req := authenticatedRequest(t, http.MethodGet, "/api/reviews/stats", userID, nil)
	newHandler(service).ListStats(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, api.CodeUnexpectedFailure, resp.Code)
	assert.Equal(t, "An unexpected error occurred", resp.Error,
		"internal details never reach the client")
}
