package service

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/itops-lab/helpdesk/internal/assignment"
	"github.com/itops-lab/helpdesk/internal/config"
	"github.com/itops-lab/helpdesk/internal/domain"
	"github.com/itops-lab/helpdesk/internal/events"
	"github.com/itops-lab/helpdesk/internal/identity"
	"github.com/itops-lab/helpdesk/internal/repository"
	apperrors "github.com/itops-lab/helpdesk/pkg/util/errorutil"
)

const testEncKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func ptr[T any](v T) *T { return &v }

func newTestGuard(t *testing.T, withKey bool) *identity.Guard {
	t.Helper()
	cfg := config.EmployeeCodeConfig{HMACSecret: "service-test"}
	if withKey {
		cfg.EncryptionKeyHex = testEncKey
	}
	g, err := identity.NewGuard(cfg)
	require.NoError(t, err)
	return g
}

func errorCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	return apperrors.ToDomainError(err).Code
}

// memTicketRepo keeps tickets keyed by ID.
type memTicketRepo struct {
	mu        sync.Mutex
	byID      map[string]*domain.Ticket
	seq       int
	createErr func(attempt int) error
	attempts  int
	countBy   map[string][]domain.CountBucket
	listErr   error
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{byID: map[string]*domain.Ticket{}, countBy: map[string][]domain.CountBucket{}}
}

func (m *memTicketRepo) put(t domain.Ticket) *domain.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := t
	m.byID[t.ID] = &cp
	return &cp
}

func (m *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts++
	if m.createErr != nil {
		if err := m.createErr(m.attempts); err != nil {
			return err
		}
	}
	m.seq++
	ticket.ID = "ticket-" + strconv.Itoa(m.seq)
	ticket.CreatedAt = time.Now().UTC()
	ticket.UpdatedAt = ticket.CreatedAt
	cp := *ticket
	m.byID[ticket.ID] = &cp
	return nil
}

func (m *memTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *ticket
	m.byID[ticket.ID] = &cp
	return nil
}

func (m *memTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (m *memTicketRepo) GetByCode(_ context.Context, code string) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.byID {
		if t.Code == code {
			cp := *t
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memTicketRepo) List(_ context.Context, _ repository.TicketFilter) ([]domain.Ticket, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Ticket, 0, len(m.byID))
	for _, t := range m.byID {
		out = append(out, *t)
	}
	return out, len(out), m.listErr
}

func (m *memTicketRepo) ListByStatus(_ context.Context, statuses []domain.TicketStatus) ([]domain.Ticket, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Ticket
	for _, t := range m.byID {
		for _, s := range statuses {
			if t.Status == s {
				out = append(out, *t)
				break
			}
		}
	}
	return out, nil
}

func (m *memTicketRepo) CountBy(_ context.Context, dimension string) ([]domain.CountBucket, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.countBy[dimension], nil
}

type memCommentRepo struct {
	mu       sync.Mutex
	comments []domain.TicketComment
}

func (m *memCommentRepo) Create(_ context.Context, c *domain.TicketComment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = "comment-" + strconv.Itoa(len(m.comments)+1)
	c.CreatedAt = time.Now().UTC()
	m.comments = append(m.comments, *c)
	return nil
}

func (m *memCommentRepo) ListByTicket(_ context.Context, ticketID string, includeInternal bool) ([]domain.TicketComment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.TicketComment{}
	for _, c := range m.comments {
		if c.TicketID == ticketID && (includeInternal || !c.IsInternal) {
			out = append(out, c)
		}
	}
	return out, nil
}

type memHistoryRepo struct {
	mu      sync.Mutex
	entries []domain.TicketHistory
	err     error
}

func (m *memHistoryRepo) Create(_ context.Context, h *domain.TicketHistory) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, *h)
	return nil
}

func (m *memHistoryRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.TicketHistory
	for _, h := range m.entries {
		if h.TicketID == ticketID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *memHistoryRepo) changes() []domain.TicketChangeType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.TicketChangeType, 0, len(m.entries))
	for _, h := range m.entries {
		out = append(out, h.ChangeType)
	}
	return out
}

type memSurveyRepo struct {
	mu       sync.Mutex
	byTicket map[string]domain.TicketSurvey
	avg      float64
	count    int
}

func newMemSurveyRepo() *memSurveyRepo {
	return &memSurveyRepo{byTicket: map[string]domain.TicketSurvey{}}
}

func (m *memSurveyRepo) Create(_ context.Context, s *domain.TicketSurvey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = "survey-" + s.TicketID
	m.byTicket[s.TicketID] = *s
	return nil
}

func (m *memSurveyRepo) GetByTicket(_ context.Context, ticketID string) (*domain.TicketSurvey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byTicket[ticketID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &s, nil
}

func (m *memSurveyRepo) Average(context.Context) (float64, int, error) {
	return m.avg, m.count, nil
}

type fakeResolver struct {
	result assignment.Result
	err    error
	calls  int
}

func (f *fakeResolver) ResolveTeam(context.Context, *string, *string) (assignment.Result, error) {
	f.calls++
	return f.result, f.err
}

// recordingDispatcher keeps published events in order.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

type memTeamRepo struct {
	teams map[string]domain.SupportTeam
}

func (m *memTeamRepo) Create(_ context.Context, team *domain.SupportTeam) error {
	team.ID = "team-" + strconv.Itoa(len(m.teams)+1)
	m.teams[team.ID] = *team
	return nil
}

func (m *memTeamRepo) Update(_ context.Context, team *domain.SupportTeam) error {
	if _, ok := m.teams[team.ID]; !ok {
		return pgx.ErrNoRows
	}
	m.teams[team.ID] = *team
	return nil
}

func (m *memTeamRepo) Delete(_ context.Context, id string) error {
	delete(m.teams, id)
	return nil
}

func (m *memTeamRepo) GetByID(_ context.Context, id string) (*domain.SupportTeam, error) {
	t, ok := m.teams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (m *memTeamRepo) List(_ context.Context, activeOnly bool) ([]domain.SupportTeam, error) {
	var out []domain.SupportTeam
	for _, t := range m.teams {
		if !activeOnly || t.IsActive {
			out = append(out, t)
		}
	}
	return out, nil
}

type memAdminUserRepo struct {
	users map[string]domain.AdminUser
}

func (m *memAdminUserRepo) Create(_ context.Context, u *domain.AdminUser) error {
	u.ID = "user-" + strconv.Itoa(len(m.users)+1)
	m.users[u.ID] = *u
	return nil
}

func (m *memAdminUserRepo) Update(_ context.Context, u *domain.AdminUser) error {
	m.users[u.ID] = *u
	return nil
}

func (m *memAdminUserRepo) Delete(_ context.Context, id string) error {
	delete(m.users, id)
	return nil
}

func (m *memAdminUserRepo) GetByID(_ context.Context, id string) (*domain.AdminUser, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (m *memAdminUserRepo) GetByEmail(_ context.Context, email string) (*domain.AdminUser, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memAdminUserRepo) List(context.Context, repository.AdminUserFilter) ([]domain.AdminUser, error) {
	var out []domain.AdminUser
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

type memOrgUnitRepo struct {
	units   []domain.OrgUnit
	deleted []string
}

func (m *memOrgUnitRepo) Create(_ context.Context, unit *domain.OrgUnit) error {
	unit.ID = "unit-" + strconv.Itoa(len(m.units)+1)
	m.units = append(m.units, *unit)
	return nil
}

func (m *memOrgUnitRepo) Update(_ context.Context, unit *domain.OrgUnit) error {
	for i := range m.units {
		if m.units[i].ID == unit.ID {
			m.units[i] = *unit
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *memOrgUnitRepo) GetByID(_ context.Context, id string) (*domain.OrgUnit, error) {
	for _, u := range m.units {
		if u.ID == id {
			cp := u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memOrgUnitRepo) List(_ context.Context, activeOnly bool) ([]domain.OrgUnit, error) {
	var out []domain.OrgUnit
	for _, u := range m.units {
		if !activeOnly || u.IsActive {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memOrgUnitRepo) DeleteMany(_ context.Context, ids []string) error {
	m.deleted = append(m.deleted, ids...)
	return nil
}

type memArticleRepo struct {
	byID      map[string]*domain.KnowledgeArticle
	viewErr   error
	lastQuery repository.ArticleFilter
}

func newMemArticleRepo() *memArticleRepo {
	return &memArticleRepo{byID: map[string]*domain.KnowledgeArticle{}}
}

func (m *memArticleRepo) Create(_ context.Context, a *domain.KnowledgeArticle) error {
	a.ID = "article-" + strconv.Itoa(len(m.byID)+1)
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *memArticleRepo) Update(_ context.Context, a *domain.KnowledgeArticle) error {
	if _, ok := m.byID[a.ID]; !ok {
		return pgx.ErrNoRows
	}
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *memArticleRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.byID, id)
	return nil
}

func (m *memArticleRepo) GetByID(_ context.Context, id string) (*domain.KnowledgeArticle, error) {
	a, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *a
	return &cp, nil
}

func (m *memArticleRepo) GetBySlug(_ context.Context, slug string) (*domain.KnowledgeArticle, error) {
	for _, a := range m.byID {
		if a.Slug == slug {
			cp := *a
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memArticleRepo) List(_ context.Context, filter repository.ArticleFilter) ([]domain.KnowledgeArticle, error) {
	m.lastQuery = filter
	var out []domain.KnowledgeArticle
	for _, a := range m.byID {
		out = append(out, *a)
	}
	return out, nil
}

func (m *memArticleRepo) IncrementViews(_ context.Context, id string) error {
	if m.viewErr != nil {
		return m.viewErr
	}
	m.byID[id].ViewCount++
	return nil
}

type memChannelRepo struct {
	channels []domain.NotificationChannel
	listErr  error
}

func (m *memChannelRepo) Create(_ context.Context, ch *domain.NotificationChannel) error {
	ch.ID = "channel-" + strconv.Itoa(len(m.channels)+1)
	m.channels = append(m.channels, *ch)
	return nil
}

func (m *memChannelRepo) Update(_ context.Context, ch *domain.NotificationChannel) error {
	for i := range m.channels {
		if m.channels[i].ID == ch.ID {
			m.channels[i] = *ch
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *memChannelRepo) Delete(_ context.Context, id string) error {
	for i := range m.channels {
		if m.channels[i].ID == id {
			m.channels = append(m.channels[:i], m.channels[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (m *memChannelRepo) GetByID(_ context.Context, id string) (*domain.NotificationChannel, error) {
	for _, ch := range m.channels {
		if ch.ID == id {
			cp := ch
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memChannelRepo) List(context.Context) ([]domain.NotificationChannel, error) {
	return m.channels, nil
}

func (m *memChannelRepo) ListActiveForEvent(_ context.Context, eventType string) ([]domain.NotificationChannel, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []domain.NotificationChannel
	for _, ch := range m.channels {
		if ch.IsActive && ch.Subscribes(eventType) {
			out = append(out, ch)
		}
	}
	return out, nil
}
