package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoannaMikul/10x-cards-sub002/internal/service/auth"
)

// stubJWTService validates exactly one token string.
type stubJWTService struct {
	validToken string
	userID     uuid.UUID
	err        error
}

func (s *stubJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.validToken, nil
}

func (s *stubJWTService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if s.err != nil {
		return nil, s.err
	}
	if token != s.validToken {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{UserID: s.userID}, nil
}

func runAuthenticated(t *testing.T, jwtService auth.JWTService, header string) (*httptest.ResponseRecorder, *uuid.UUID) {
	t.Helper()

	var capturedUserID *uuid.UUID
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, ok := GetUserID(r); ok {
			capturedUserID = &userID
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/reviews/events", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}

	rec := httptest.NewRecorder()
	NewAuthMiddleware(jwtService).Authenticate(next).ServeHTTP(rec, req)
	return rec, capturedUserID
}

func TestAuthenticateValidToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	svc := &stubJWTService{validToken: "good-token", userID: userID}

	rec, captured := runAuthenticated(t, svc, "Bearer good-token")

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, userID, *captured)
}

func TestAuthenticateMissingHeader(t *testing.T) {
	t.Parallel()

	rec, captured := runAuthenticated(t, &stubJWTService{}, "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, captured)
}

func TestAuthenticateMalformedHeader(t *testing.T) {
	t.Parallel()

	rec, captured := runAuthenticated(t, &stubJWTService{}, "Token abc")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, captured)
}

func TestAuthenticateInvalidToken(t *testing.T) {
	t.Parallel()

	svc := &stubJWTService{validToken: "good-token"}
	rec, captured := runAuthenticated(t, svc, "Bearer forged-token")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, captured)
}

func TestAuthenticateExpiredToken(t *testing.T) {
	t.Parallel()

	svc := &stubJWTService{err: auth.ErrExpiredToken}
	rec, captured := runAuthenticated(t, svc, "Bearer whatever")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, captured)
}
