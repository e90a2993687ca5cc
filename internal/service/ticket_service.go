package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/itops-lab/helpdesk/internal/assignment"
	"github.com/itops-lab/helpdesk/internal/domain"
	"github.com/itops-lab/helpdesk/internal/events"
	"github.com/itops-lab/helpdesk/internal/identity"
	"github.com/itops-lab/helpdesk/internal/repository"
	apperrors "github.com/itops-lab/helpdesk/pkg/util/errorutil"
)

const ticketCodeAttempts = 3

// TeamResolver picks the default team for a new ticket.
type TeamResolver interface {
	ResolveTeam(ctx context.Context, systemID, categoryID *string) (assignment.Result, error)
}

// TicketService coordinates ticket workflows for reporters and staff.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	history    repository.HistoryRepository
	surveys    repository.SurveyRepository
	resolver   TeamResolver
	guard      *identity.Guard
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	HistoryRepo repository.HistoryRepository
	SurveyRepo  repository.SurveyRepository
	Resolver    TeamResolver
	Guard       *identity.Guard
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// TicketCreateInput describes ticket creation payload. TeamID is only honored
// for staff-created tickets; otherwise the resolver decides.
type TicketCreateInput struct {
	Title         string
	Description   string
	ReporterName  string
	ReporterEmail string
	ReporterPhone string
	EmployeeCode  string
	OrgUnitID     *string
	SystemID      *string
	CategoryID    *string
	PriorityID    *string
	TeamID        *string
}

// TicketView is a ticket with its thread. History is only filled for staff.
type TicketView struct {
	Ticket   *domain.Ticket
	Comments []domain.TicketComment
	History  []domain.TicketHistory
	Survey   *domain.TicketSurvey
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		history:    deps.HistoryRepo,
		surveys:    deps.SurveyRepo,
		resolver:   deps.Resolver,
		guard:      deps.Guard,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateTicket stores a new ticket. The employee code is kept only in its
// protected forms.
func (s *TicketService) CreateTicket(ctx context.Context, actor events.Actor, input TicketCreateInput) (*domain.Ticket, error) {
	if identity.Normalize(input.EmployeeCode) == "" {
		return nil, apperrors.NewValidationError("validation failed", map[string]any{"employee_code": "employee_code is required"})
	}
	protected, err := s.guard.Protect(input.EmployeeCode)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	ticket := &domain.Ticket{
		Title:              strings.TrimSpace(input.Title),
		Description:        strings.TrimSpace(input.Description),
		ReporterName:       strings.TrimSpace(input.ReporterName),
		ReporterEmail:      strings.TrimSpace(input.ReporterEmail),
		ReporterPhone:      strings.TrimSpace(input.ReporterPhone),
		EmployeeCodeHash:   protected.Hash,
		EmployeeCodeMasked: protected.Masked,
		EmployeeCodeEnc:    protected.Encrypted,
		OrgUnitID:          blankToNil(input.OrgUnitID),
		SystemID:           blankToNil(input.SystemID),
		CategoryID:         blankToNil(input.CategoryID),
		PriorityID:         blankToNil(input.PriorityID),
		TeamID:             blankToNil(input.TeamID),
		Status:             domain.TicketStatusOpen,
	}

	if ticket.TeamID == nil && s.resolver != nil {
		res, err := s.resolver.ResolveTeam(ctx, ticket.SystemID, ticket.CategoryID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		ticket.TeamID = res.TeamID
		if res.TeamName != nil {
			ticket.TeamName = *res.TeamName
		}
	}

	if err := s.insertWithCode(ctx, ticket); err != nil {
		return nil, err
	}

	s.record(ctx, actor, ticket.ID, domain.ChangeTypeCreated, nil, map[string]any{
		"status":  ticket.Status,
		"team_id": ticket.TeamID,
	})
	s.publish(ctx, events.New(events.EventTicketCreated, ticket, actor, events.TicketCreatedPayload{
		Title:        ticket.Title,
		ReporterName: ticket.ReporterName,
		TeamID:       ticket.TeamID,
		TeamName:     ticket.TeamName,
		PriorityID:   ticket.PriorityID,
	}))
	return ticket, nil
}

func (s *TicketService) insertWithCode(ctx context.Context, ticket *domain.Ticket) error {
	var err error
	for attempt := 0; attempt < ticketCodeAttempts; attempt++ {
		ticket.Code = generateTicketCode()
		err = s.tickets.Create(ctx, ticket)
		switch {
		case err == nil:
			return nil
		case repository.IsUniqueViolation(err):
			continue
		case repository.IsForeignKeyViolation(err):
			return apperrors.NewValidationError("referenced master data does not exist", nil)
		default:
			return apperrors.MapError(err)
		}
	}
	return apperrors.NewInternalError(err)
}

// TrackTicket returns the public view of a ticket. Unknown codes and wrong
// employee codes yield the same NOT_FOUND.
func (s *TicketService) TrackTicket(ctx context.Context, code, employeeCode string) (*TicketView, error) {
	ticket, err := s.authorizeReporter(ctx, code, employeeCode)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID, false)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	survey, err := s.survey(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	return &TicketView{Ticket: ticket, Comments: comments, Survey: survey}, nil
}

// AddReporterComment appends a reporter reply to an active ticket.
func (s *TicketService) AddReporterComment(ctx context.Context, code, employeeCode, authorName, body string) (*domain.TicketComment, error) {
	ticket, err := s.authorizeReporter(ctx, code, employeeCode)
	if err != nil {
		return nil, err
	}
	if ticket.Status.IsTerminal() {
		return nil, apperrors.NewConflict("ticket no longer accepts comments", map[string]any{"status": ticket.Status})
	}
	name := strings.TrimSpace(authorName)
	if name == "" {
		name = ticket.ReporterName
	}
	comment := &domain.TicketComment{
		TicketID:   ticket.ID,
		AuthorType: domain.SubjectTypeReporter,
		AuthorName: name,
		Body:       strings.TrimSpace(body),
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishComment(ctx, ticket, reporterActor(name), comment)
	return comment, nil
}

// SubmitSurvey records the reporter's rating once the ticket is done.
func (s *TicketService) SubmitSurvey(ctx context.Context, code, employeeCode string, rating int, comment string) (*domain.TicketSurvey, error) {
	ticket, err := s.authorizeReporter(ctx, code, employeeCode)
	if err != nil {
		return nil, err
	}
	if ticket.Status != domain.TicketStatusResolved && ticket.Status != domain.TicketStatusClosed {
		return nil, apperrors.NewConflict("survey is accepted only for resolved or closed tickets", map[string]any{"status": ticket.Status})
	}
	if rating < 1 || rating > 5 {
		return nil, apperrors.NewValidationError("validation failed", map[string]any{"rating": "rating must be between 1 and 5"})
	}
	existing, err := s.survey(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewConflict("survey already submitted", nil)
	}

	survey := &domain.TicketSurvey{TicketID: ticket.ID, Rating: rating, Comment: strings.TrimSpace(comment)}
	if err := s.surveys.Create(ctx, survey); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.NewConflict("survey already submitted", nil)
		}
		return nil, apperrors.MapError(err)
	}
	s.publish(ctx, events.New(events.EventSurveySubmitted, ticket, reporterActor(ticket.ReporterName),
		events.SurveySubmittedPayload{Rating: rating}))
	return survey, nil
}

// ListTickets returns a page of tickets and the total match count.
func (s *TicketService) ListTickets(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, int, error) {
	tickets, total, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return tickets, total, nil
}

// GetTicket returns the staff view including internal comments and history.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*TicketView, error) {
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, ticket.ID, true)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	history, err := s.history.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	survey, err := s.survey(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	return &TicketView{Ticket: ticket, Comments: comments, History: history, Survey: survey}, nil
}

// UpdateStatus moves a ticket along its lifecycle.
func (s *TicketService) UpdateStatus(ctx context.Context, staff *domain.AdminUser, id string, next domain.TicketStatus) (*domain.Ticket, error) {
	if !next.Valid() {
		return nil, apperrors.NewValidationError("validation failed", map[string]any{"status": "unknown status"})
	}
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(ticket.Status, next) {
		return nil, apperrors.NewValidationError("invalid status transition", map[string]any{
			"from": ticket.Status,
			"to":   next,
		})
	}

	old := ticket.Status
	now := s.now()
	ticket.Status = next
	switch next {
	case domain.TicketStatusResolved:
		ticket.ResolvedAt = &now
	case domain.TicketStatusClosed, domain.TicketStatusCancelled:
		ticket.ClosedAt = &now
	case domain.TicketStatusInProgress:
		ticket.ResolvedAt = nil
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.NotFoundOr(err, "ticket", map[string]any{"ticket_id": id})
	}

	actor := staffActor(staff)
	s.record(ctx, actor, ticket.ID, domain.ChangeTypeStatus, map[string]any{"status": old}, map[string]any{"status": next})
	s.publish(ctx, events.New(events.EventTicketStatusChanged, ticket, actor, events.TicketStatusChangedPayload{
		OldStatus: old,
		NewStatus: next,
	}))
	return ticket, nil
}

// UpdatePriority changes the ticket priority and with it the SLA thresholds.
func (s *TicketService) UpdatePriority(ctx context.Context, staff *domain.AdminUser, id string, priorityID *string) (*domain.Ticket, error) {
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	old := ticket.PriorityID
	ticket.PriorityID = blankToNil(priorityID)
	if err := s.save(ctx, ticket); err != nil {
		return nil, err
	}

	actor := staffActor(staff)
	s.record(ctx, actor, ticket.ID, domain.ChangeTypePriority, map[string]any{"priority_id": old}, map[string]any{"priority_id": ticket.PriorityID})
	s.publish(ctx, events.New(events.EventTicketPriorityChanged, ticket, actor, events.TicketPriorityChangedPayload{
		OldPriorityID: old,
		NewPriorityID: ticket.PriorityID,
	}))
	return s.load(ctx, id)
}

// AddStaffComment appends a staff reply or internal note. The first public
// staff reply stamps the first response time.
func (s *TicketService) AddStaffComment(ctx context.Context, staff *domain.AdminUser, id, body string, internal bool) (*domain.TicketComment, error) {
	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	comment := &domain.TicketComment{
		TicketID:   ticket.ID,
		AuthorType: domain.SubjectTypeStaff,
		AuthorID:   &staff.ID,
		AuthorName: staff.Name,
		Body:       strings.TrimSpace(body),
		IsInternal: internal,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}

	if !internal && ticket.FirstRespondedAt == nil {
		now := s.now()
		ticket.FirstRespondedAt = &now
		if err := s.save(ctx, ticket); err != nil {
			return nil, err
		}
	}
	s.publishComment(ctx, ticket, staffActor(staff), comment)
	return comment, nil
}

// RevealEmployeeCode decrypts the stored employee code for an administrator.
func (s *TicketService) RevealEmployeeCode(ctx context.Context, staff *domain.AdminUser, id string) (string, error) {
	if staff == nil || staff.Role != domain.StaffRoleAdmin {
		return "", apperrors.NewForbidden("only administrators can reveal employee codes")
	}
	ticket, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	if ticket.EmployeeCodeEnc == nil {
		return "", apperrors.NewNotFound("employee code", map[string]any{"ticket_id": id})
	}
	code, ok := s.guard.Decrypt(*ticket.EmployeeCodeEnc)
	if !ok {
		return "", apperrors.NewNotFound("employee code", map[string]any{"ticket_id": id})
	}
	s.logger.Info("employee code revealed",
		zap.String("ticket_id", ticket.ID),
		zap.String("admin_id", staff.ID),
	)
	return code, nil
}

func (s *TicketService) authorizeReporter(ctx context.Context, code, employeeCode string) (*domain.Ticket, error) {
	notFound := apperrors.NewNotFound("ticket", nil)
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || identity.Normalize(employeeCode) == "" {
		return nil, notFound
	}
	ticket, err := s.tickets.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound
		}
		return nil, apperrors.MapError(err)
	}
	if !s.guard.Matches(employeeCode, ticket.EmployeeCodeHash) {
		return nil, notFound
	}
	return ticket, nil
}

func (s *TicketService) load(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "ticket", map[string]any{"ticket_id": id})
	}
	return ticket, nil
}

func (s *TicketService) save(ctx context.Context, ticket *domain.Ticket) error {
	err := s.tickets.Update(ctx, ticket)
	switch {
	case err == nil:
		return nil
	case repository.IsForeignKeyViolation(err):
		return apperrors.NewValidationError("referenced master data does not exist", nil)
	default:
		return apperrors.NotFoundOr(err, "ticket", map[string]any{"ticket_id": ticket.ID})
	}
}

func (s *TicketService) survey(ctx context.Context, ticketID string) (*domain.TicketSurvey, error) {
	survey, err := s.surveys.GetByTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.MapError(err)
	}
	return survey, nil
}

// record writes an audit entry. Failures are logged; the change itself has
// already been committed.
func (s *TicketService) record(ctx context.Context, actor events.Actor, ticketID string, change domain.TicketChangeType, oldValue, newValue map[string]any) {
	recordHistory(ctx, s.history, s.logger, actor, ticketID, change, oldValue, newValue)
}

func (s *TicketService) publishComment(ctx context.Context, ticket *domain.Ticket, actor events.Actor, comment *domain.TicketComment) {
	s.publish(ctx, events.New(events.EventTicketCommentAdded, ticket, actor, events.TicketCommentAddedPayload{
		CommentID:   comment.ID,
		AuthorType:  comment.AuthorType,
		IsInternal:  comment.IsInternal,
		BodyPreview: stringPreview(comment.Body, 120),
	}))
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateTicketCode() string {
	return "HD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:       {domain.TicketStatusInProgress, domain.TicketStatusCancelled},
	domain.TicketStatusInProgress: {domain.TicketStatusPending, domain.TicketStatusResolved, domain.TicketStatusCancelled},
	domain.TicketStatusPending:    {domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusCancelled},
	domain.TicketStatusResolved:   {domain.TicketStatusClosed, domain.TicketStatusInProgress},
	domain.TicketStatusClosed:     {},
	domain.TicketStatusCancelled:  {},
}

// CanTransition reports whether a ticket may move from current to next.
func CanTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
