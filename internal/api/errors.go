package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JoannaMikul/10x-cards-sub002/internal/service/auth"
	"github.com/JoannaMikul/10x-cards-sub002/internal/service/review"
	"github.com/JoannaMikul/10x-cards-sub002/internal/store"
)

// Stable machine-readable error codes exposed in error responses. Clients
// branch on these, never on the message text.
const (
	CodeUnauthenticated   = "unauthenticated"
	CodeInvalidInput      = "invalid_input"
	CodeCardNotFound      = "card_not_found"
	CodeStorageFailure    = "storage_failure"
	CodeUnexpectedFailure = "unexpected_failure"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, review.ErrCardsNotFound),
		errors.Is(err, store.ErrCardNotFound):
		return http.StatusNotFound

	// Bad request errors
	case errors.Is(err, review.ErrInvalidInput),
		errors.Is(err, review.ErrInvalidCursor),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// MapErrorToCode maps internal errors to the stable error code vocabulary.
func MapErrorToCode(err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return CodeUnauthenticated

	case errors.Is(err, review.ErrCardsNotFound),
		errors.Is(err, store.ErrCardNotFound):
		return CodeCardNotFound

	case errors.Is(err, review.ErrInvalidInput),
		errors.Is(err, review.ErrInvalidCursor),
		errors.Is(err, store.ErrInvalidEntity):
		return CodeInvalidInput

	case isStorageFailure(err):
		return CodeStorageFailure

	default:
		return CodeUnexpectedFailure
	}
}

// isStorageFailure reports whether the error originated in the storage layer.
func isStorageFailure(err error) bool {
	var storeErr *store.StoreError
	if errors.As(err, &storeErr) {
		return true
	}
	return errors.Is(err, store.ErrTransactionFailed) || errors.Is(err, store.ErrDuplicate)
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
// Validation and not-found errors keep their detail because the service
// layer builds those messages from request data the caller already has.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	// Not found errors: enumerate the missing IDs so the caller can repair
	// the submission.
	case errors.Is(err, review.ErrCardsNotFound):
		var notFound *review.CardsNotFoundError
		if errors.As(err, &notFound) {
			return notFound.Error()
		}
		return "One or more cards not found"

	case errors.Is(err, store.ErrCardNotFound):
		return "Card not found"

	// Bad request errors: the sentinel-wrapped message names the offending
	// field or review without touching stored data.
	case errors.Is(err, review.ErrInvalidInput),
		errors.Is(err, review.ErrInvalidCursor):
		return err.Error()

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case isStorageFailure(err):
		return "Storage operation failed"

	// Default case for unknown errors
	default:
		return "An unexpected error occurred"
	}
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example format: "Key: 'SubmitSessionRequest.Reviews[0].Outcome'
	// Error:Field validation for 'Outcome' failed on the 'oneof' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "uuid":
		return "invalid identifier format"
	case "gte":
		return "value too small"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
