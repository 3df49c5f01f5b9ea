package auth

import "errors"

// Sentinel errors returned by token validation. The middleware collapses all
// of them into an unauthenticated response; the distinction matters for logs.
var (
	// ErrInvalidToken covers malformed tokens, unexpected signing methods,
	// and signature mismatches.
	ErrInvalidToken = errors.New("invalid authentication token")

	// ErrExpiredToken is returned when the expiry claim is in the past.
	ErrExpiredToken = errors.New("authentication token has expired")

	// ErrTokenNotYetValid is returned when the not-before claim lies in the
	// future beyond the allowed clock skew.
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")

	// ErrMissingToken is returned when no token accompanied the request.
	ErrMissingToken = errors.New("authentication token is missing")
)
