package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/itops-lab/helpdesk/internal/observability"
	apperrors "github.com/itops-lab/helpdesk/pkg/util/errorutil"
)

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func decodeError(t *testing.T, resp *http.Response) errorEnvelope {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	return env
}

func newTestApp(metrics *observability.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterMiddlewares(app, zap.NewNop(), metrics, time.Second)
	return app
}

func TestErrorMiddleware_Envelope(t *testing.T) {
	metrics := observability.NewMetrics()
	app := newTestApp(metrics)
	app.Get("/conflict", func(c *fiber.Ctx) error {
		return apperrors.NewConflict("survey already submitted", map[string]any{"ticket": "HD-1"})
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("driver: bad connection")
	})
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("nil map")
	})
	app.Get("/bad", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadRequest, "cannot parse body")
	})
	app.Get("/slow", func(c *fiber.Ctx) error {
		<-c.UserContext().Done()
		return c.UserContext().Err()
	})

	tests := []struct {
		path    string
		status  int
		code    string
		message string
	}{
		{"/conflict", http.StatusConflict, "CONFLICT", "survey already submitted"},
		{"/boom", http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"},
		{"/panic", http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error"},
		{"/bad", http.StatusBadRequest, "VALIDATION_FAILED", "cannot parse body"},
		{"/slow", http.StatusGatewayTimeout, "TIMEOUT", "request timed out"},
		{"/nowhere", http.StatusNotFound, "NOT_FOUND", "Cannot GET /nowhere"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil), 5000)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			env := decodeError(t, resp)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.Equal(t, tt.message, env.Error.Message)
		})
	}

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/conflict", nil))
	require.NoError(t, err)
	env := decodeError(t, resp)
	assert.Equal(t, "HD-1", env.Error.Details["ticket"])

	snap := metrics.Snapshot()
	assert.Equal(t, int64(2), snap.Errors["/conflict|GET|CONFLICT"])
	assert.Equal(t, int64(2), snap.Requests["/conflict|GET|409"])
}

func TestErrorHandler_BodyTooLarge(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/", func(c *fiber.Ctx) error {
		return fiber.ErrRequestEntityTooLarge
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, "PAYLOAD_TOO_LARGE", decodeError(t, resp).Error.Code)
}

type fakeLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allowed, f.err
}

func TestRateLimitMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		limiter    *fakeLimiter
		status     int
		retryAfter string
	}{
		{"allowed", &fakeLimiter{allowed: true}, http.StatusOK, ""},
		{"blocked", &fakeLimiter{allowed: false}, http.StatusTooManyRequests, "60"},
		{"limiter down fails open", &fakeLimiter{err: errors.New("redis timeout")}, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(nil)
			app.Get("/track", rateLimitMiddleware(tt.limiter, "public", 5, time.Minute, zap.NewNop()), func(c *fiber.Ctx) error {
				return c.SendStatus(http.StatusOK)
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/track", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.retryAfter, resp.Header.Get(fiber.HeaderRetryAfter))
			require.Len(t, tt.limiter.keys, 1)
			assert.Contains(t, tt.limiter.keys[0], "ratelimit:public:")
			if tt.status == http.StatusTooManyRequests {
				assert.Equal(t, "RATE_LIMITED", decodeError(t, resp).Error.Code)
			}
		})
	}
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	limiter := &fakeLimiter{}
	app := newTestApp(nil)
	app.Get("/", rateLimitMiddleware(limiter, "public", 0, time.Minute, zap.NewNop()), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, limiter.keys)
}
