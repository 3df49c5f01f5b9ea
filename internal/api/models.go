package api

import (
	"encoding/json"
	"time"

	"github.com/JoannaMikul/10x-cards-sub002/internal/domain"
)

// Common request/response structures

// ReviewItem is one review outcome within a session submission.
type ReviewItem struct {
	CardID           string `json:"card_id"            validate:"required,uuid"`
	Outcome          string `json:"outcome"            validate:"required,oneof=again fail hard good easy"`
	ResponseTimeMs   *int   `json:"response_time_ms"   validate:"omitempty,gte=0"`
	PrevIntervalDays *int   `json:"prev_interval_days" validate:"omitempty,gte=0"`
	// NextIntervalDays is accepted for client telemetry but the server's
	// scheduler always decides the real interval.
	NextIntervalDays *int            `json:"next_interval_days,omitempty"`
	WasLearningStep  bool            `json:"was_learning_step,omitempty"`
	Payload          json.RawMessage `json:"payload,omitempty"`
}

// SubmitSessionRequest defines the payload for the session submission endpoint.
type SubmitSessionRequest struct {
	SessionID   string       `json:"session_id,omitempty"`
	StartedAt   *time.Time   `json:"started_at,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
	Reviews     []ReviewItem `json:"reviews" validate:"dive"`
}

// SubmitSessionResponse reports how many events the session logged.
type SubmitSessionResponse struct {
	Logged int `json:"logged"`
}

// ReviewEventResponse represents one event from the review log.
type ReviewEventResponse struct {
	ID               string          `json:"id"`
	CardID           string          `json:"card_id"`
	Outcome          string          `json:"outcome"`
	Grade            int             `json:"grade"`
	ResponseTimeMs   *int            `json:"response_time_ms,omitempty"`
	PrevIntervalDays int             `json:"prev_interval_days"`
	NextIntervalDays int             `json:"next_interval_days"`
	WasLearningStep  bool            `json:"was_learning_step"`
	Payload          json.RawMessage `json:"payload,omitempty"`
	ReviewedAt       time.Time       `json:"reviewed_at"`
}

// PageInfo carries the pagination state of a list response.
type PageInfo struct {
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// ReviewEventListResponse is one page of the review event log.
type ReviewEventListResponse struct {
	Data []ReviewEventResponse `json:"data"`
	Page PageInfo              `json:"page"`
}

// ReviewStatsResponse represents the derived statistics for one card.
type ReviewStatsResponse struct {
	CardID              string    `json:"card_id"`
	TotalReviews        int       `json:"total_reviews"`
	SuccessCount        int       `json:"success_count"`
	Streak              int       `json:"streak"`
	LastOutcome         string    `json:"last_outcome"`
	LastIntervalDays    int       `json:"last_interval_days"`
	EaseFactor          float64   `json:"ease_factor"`
	NextReviewAt        time.Time `json:"next_review_at"`
	LastReviewedAt      time.Time `json:"last_reviewed_at"`
	AverageIntervalDays float64   `json:"average_interval_days"`
	SuccessRate         float64   `json:"success_rate"`
}

// ReviewStatsListResponse is one page of per-card statistics.
type ReviewStatsListResponse struct {
	Data []ReviewStatsResponse `json:"data"`
	Page PageInfo              `json:"page"`
}

// eventToResponse transforms a domain event into its API representation.
func eventToResponse(event *domain.ReviewEvent) ReviewEventResponse {
	return ReviewEventResponse{
		ID:               event.ID.String(),
		CardID:           event.CardID.String(),
		Outcome:          string(event.Outcome),
		Grade:            event.Grade,
		ResponseTimeMs:   event.ResponseTimeMs,
		PrevIntervalDays: event.PrevIntervalDays,
		NextIntervalDays: event.NextIntervalDays,
		WasLearningStep:  event.IsLearningStep,
		Payload:          event.Payload,
		ReviewedAt:       event.ReviewedAt,
	}
}

// statsToResponse transforms a domain stats row into its API representation.
func statsToResponse(stats *domain.ReviewStats) ReviewStatsResponse {
	return ReviewStatsResponse{
		CardID:              stats.CardID.String(),
		TotalReviews:        stats.TotalReviews,
		SuccessCount:        stats.SuccessCount,
		Streak:              stats.Streak,
		LastOutcome:         string(stats.LastOutcome),
		LastIntervalDays:    stats.LastIntervalDays,
		EaseFactor:          stats.EaseFactor,
		NextReviewAt:        stats.NextReviewAt,
		LastReviewedAt:      stats.LastReviewedAt,
		AverageIntervalDays: stats.Aggregates.AverageIntervalDays,
		SuccessRate:         stats.Aggregates.SuccessRate,
	}
}
