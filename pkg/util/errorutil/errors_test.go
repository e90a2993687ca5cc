package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	conflict := NewConflict("taken", map[string]any{"email": "a@x"})
	wrapped := fmt.Errorf("create user: %w", conflict)
	got := ToDomainError(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, "CONFLICT", got.Code)
	assert.Equal(t, http.StatusConflict, got.HTTPStatus)

	got = ToDomainError(pgx.ErrNoRows)
	assert.Equal(t, "NOT_FOUND", got.Code)

	got = ToDomainError(fmt.Errorf("get ticket: %w", &pgconn.PgError{Code: "22P02"}))
	assert.Equal(t, "VALIDATION_FAILED", got.Code)
	assert.Equal(t, http.StatusBadRequest, got.HTTPStatus)

	cause := errors.New("socket closed")
	got = ToDomainError(cause)
	assert.Equal(t, "INTERNAL_ERROR", got.Code)
	assert.Equal(t, "internal server error", got.Message)
	assert.ErrorIs(t, got, cause)
}

func TestNotFoundOr(t *testing.T) {
	assert.NoError(t, NotFoundOr(nil, "ticket", nil))

	err := NotFoundOr(pgx.ErrNoRows, "ticket", map[string]any{"ticket_id": "t1"})
	derr := ToDomainError(err)
	assert.Equal(t, "ticket not found", derr.Message)
	assert.Equal(t, "t1", derr.Details["ticket_id"])

	err = NotFoundOr(errors.New("boom"), "ticket", nil)
	assert.Equal(t, "INTERNAL_ERROR", ToDomainError(err).Code)
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		err    error
		code   string
		status int
	}{
		{NewValidationError("bad", nil), "VALIDATION_FAILED", http.StatusBadRequest},
		{NewUnauthorized("who"), "UNAUTHORIZED", http.StatusUnauthorized},
		{NewForbidden("no"), "FORBIDDEN", http.StatusForbidden},
		{NewNotFound("article", nil), "NOT_FOUND", http.StatusNotFound},
		{NewRateLimited("slow down"), "RATE_LIMITED", http.StatusTooManyRequests},
		{NewInternalError(nil), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			derr := ToDomainError(tt.err)
			assert.Equal(t, tt.code, derr.Code)
			assert.Equal(t, tt.status, derr.HTTPStatus)
		})
	}
	assert.NotNil(t, ToDomainError(NewNotFound("x", nil)).Details)
}
