package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itops-lab/helpdesk/internal/assignment"
	"github.com/itops-lab/helpdesk/internal/config"
	"github.com/itops-lab/helpdesk/internal/domain"
	"github.com/itops-lab/helpdesk/internal/identity"
	"github.com/itops-lab/helpdesk/internal/repository"
	"github.com/itops-lab/helpdesk/internal/service"
	apperrors "github.com/itops-lab/helpdesk/pkg/util/errorutil"
)

// stubTicketRepo keeps the last created ticket. Methods not overridden
// panic through the nil embedded interface.
type stubTicketRepo struct {
	repository.TicketRepository
	stored *domain.Ticket
}

func (s *stubTicketRepo) Create(_ context.Context, t *domain.Ticket) error {
	t.ID = "11111111-1111-1111-1111-111111111111"
	cp := *t
	s.stored = &cp
	return nil
}

func (s *stubTicketRepo) GetByCode(_ context.Context, code string) (*domain.Ticket, error) {
	if s.stored == nil || s.stored.Code != code {
		return nil, pgx.ErrNoRows
	}
	cp := *s.stored
	return &cp, nil
}

type stubCommentRepo struct {
	repository.CommentRepository
}

func (stubCommentRepo) ListByTicket(context.Context, string, bool) ([]domain.TicketComment, error) {
	return []domain.TicketComment{}, nil
}

type stubSurveyRepo struct {
	repository.SurveyRepository
}

func (stubSurveyRepo) GetByTicket(context.Context, string) (*domain.TicketSurvey, error) {
	return nil, pgx.ErrNoRows
}

type stubHistoryRepo struct {
	repository.HistoryRepository
}

func (stubHistoryRepo) Create(context.Context, *domain.TicketHistory) error { return nil }

type staticResolver struct{ teamID string }

func (r staticResolver) ResolveTeam(context.Context, *string, *string) (assignment.Result, error) {
	name := "Service Desk"
	return assignment.Result{TeamID: &r.teamID, TeamName: &name}, nil
}

func testErrorHandler(c *fiber.Ctx, err error) error {
	derr := apperrors.ToDomainError(err)
	var fe *fiber.Error
	if errors.As(err, &fe) {
		derr = apperrors.NewDomainError("HTTP", fe.Message, fe.Code, nil)
	}
	return c.Status(derr.HTTPStatus).JSON(fiber.Map{"error": fiber.Map{
		"code":    derr.Code,
		"message": derr.Message,
		"details": derr.Details,
	}})
}

func newPublicApp(t *testing.T) (*fiber.App, *stubTicketRepo) {
	t.Helper()
	guard, err := identity.NewGuard(config.EmployeeCodeConfig{HMACSecret: "handler-test"})
	require.NoError(t, err)

	repo := &stubTicketRepo{}
	tickets := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  repo,
		CommentRepo: stubCommentRepo{},
		HistoryRepo: stubHistoryRepo{},
		SurveyRepo:  stubSurveyRepo{},
		Resolver:    staticResolver{teamID: "22222222-2222-2222-2222-222222222222"},
		Guard:       guard,
	})
	h := NewPublicHandler(PublicDependencies{Tickets: tickets})

	app := fiber.New(fiber.Config{ErrorHandler: testErrorHandler})
	app.Post("/tickets", h.CreateTicket)
	app.Post("/tickets/track", h.TrackTicket)
	return app, repo
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func TestPublicCreateTicket_IgnoresTeamAndMasksCode(t *testing.T) {
	app, repo := newPublicApp(t)

	status, body := postJSON(t, app, "/tickets", `{
		"title": "Email not syncing",
		"description": "Outlook stuck since morning",
		"reporter_name": "Pim",
		"employee_code": "emp-004512",
		"team_id": "33333333-3333-3333-3333-333333333333"
	}`)
	require.Equal(t, http.StatusCreated, status, body)

	data := body["data"].(map[string]any)
	assert.Equal(t, "EMP***12", data["employee_code_masked"])
	assert.Equal(t, "22222222-2222-2222-2222-222222222222", data["team_id"])
	assert.Equal(t, "Service Desk", data["team_name"])
	assert.Equal(t, "OPEN", data["status"])
	assert.NotContains(t, data, "employee_code")

	require.NotNil(t, repo.stored)
	assert.Equal(t, "22222222-2222-2222-2222-222222222222", *repo.stored.TeamID)
}

func TestPublicCreateTicket_ValidationDetails(t *testing.T) {
	app, _ := newPublicApp(t)

	status, body := postJSON(t, app, "/tickets", `{"title": "", "reporter_email": "nope"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	errBody := body["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_FAILED", errBody["code"])
	details := errBody["details"].(map[string]any)
	for _, field := range []string{"title", "description", "reporter_name", "employee_code", "reporter_email"} {
		assert.Contains(t, details, field)
	}
}

func TestPublicTrackTicket(t *testing.T) {
	app, repo := newPublicApp(t)

	status, _ := postJSON(t, app, "/tickets", `{"title":"t","description":"d","reporter_name":"Pim","employee_code":"EMP-7"}`)
	require.Equal(t, http.StatusCreated, status)
	code := repo.stored.Code

	status, body := postJSON(t, app, "/tickets/track", `{"ticket_code":"`+strings.ToLower(code)+`","employee_code":"emp-7"}`)
	require.Equal(t, http.StatusOK, status, body)
	data := body["data"].(map[string]any)
	assert.Equal(t, code, data["code"])
	assert.NotContains(t, data, "history")
	assert.NotContains(t, data, "employee_code_hash")

	wrongStatus, wrong := postJSON(t, app, "/tickets/track", `{"ticket_code":"`+code+`","employee_code":"EMP-8"}`)
	unknownStatus, unknown := postJSON(t, app, "/tickets/track", `{"ticket_code":"HD-00000000","employee_code":"EMP-7"}`)
	assert.Equal(t, http.StatusNotFound, wrongStatus)
	assert.Equal(t, http.StatusNotFound, unknownStatus)
	assert.Equal(t, wrong, unknown)
}

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	healthy := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name   string
		deps   map[string]Pinger
		status int
	}{
		{"all up", map[string]Pinger{"postgres": healthy, "redis": healthy}, http.StatusOK},
		{"redis down", map[string]Pinger{"postgres": healthy, "redis": down}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler("helpdesk", "test", tt.deps, nil)
			app := fiber.New()
			app.Get("/live", h.Live)
			app.Get("/ready", h.Ready)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/live", nil))
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/ready", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
