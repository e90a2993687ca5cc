package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/itops-lab/helpdesk/internal/assignment"
	"github.com/itops-lab/helpdesk/internal/domain"
	"github.com/itops-lab/helpdesk/internal/events"
	"github.com/itops-lab/helpdesk/internal/repository"
	apperrors "github.com/itops-lab/helpdesk/pkg/util/errorutil"
)

// AssignmentService handles routing rules and manual ticket assignment.
type AssignmentService struct {
	tickets    repository.TicketRepository
	rules      repository.AssignmentRuleRepository
	teams      repository.TeamRepository
	users      repository.AdminUserRepository
	history    repository.HistoryRepository
	resolver   TeamResolver
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	TicketRepo    repository.TicketRepository
	RuleRepo      repository.AssignmentRuleRepository
	TeamRepo      repository.TeamRepository
	AdminUserRepo repository.AdminUserRepository
	HistoryRepo   repository.HistoryRepository
	Resolver      TeamResolver
	Dispatcher    events.Dispatcher
	Logger        *zap.Logger
}

// AssignInput selects a new team and/or assignee. A nil field leaves the
// current value, except that moving to another team clears the assignee.
type AssignInput struct {
	TeamID     *string
	AssigneeID *string
}

// RuleInput is the editable part of an assignment rule.
type RuleInput struct {
	Priority   int
	IsActive   bool
	SystemID   *string
	CategoryID *string
	TeamID     string
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{
		tickets:    deps.TicketRepo,
		rules:      deps.RuleRepo,
		teams:      deps.TeamRepo,
		users:      deps.AdminUserRepo,
		history:    deps.HistoryRepo,
		resolver:   deps.Resolver,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// PreviewTeam reports which team a new ticket would be routed to.
func (s *AssignmentService) PreviewTeam(ctx context.Context, systemID, categoryID *string) (assignment.Result, error) {
	res, err := s.resolver.ResolveTeam(ctx, blankToNil(systemID), blankToNil(categoryID))
	if err != nil {
		return assignment.Result{}, apperrors.MapError(err)
	}
	return res, nil
}

// Assign reassigns a ticket manually.
func (s *AssignmentService) Assign(ctx context.Context, actor *domain.AdminUser, ticketID string, input AssignInput) (*domain.Ticket, error) {
	teamID, assigneeID := blankToNil(input.TeamID), blankToNil(input.AssigneeID)
	if teamID == nil && assigneeID == nil {
		return nil, apperrors.NewValidationError("team_id or assignee_id is required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}
	if ticket.Status.IsTerminal() {
		return nil, apperrors.NewConflict("ticket is closed", map[string]any{"status": ticket.Status})
	}

	oldTeam, oldAssignee := ticket.TeamID, ticket.AssigneeID

	if teamID != nil {
		team, err := s.activeTeam(ctx, *teamID)
		if err != nil {
			return nil, err
		}
		if !sameID(ticket.TeamID, &team.ID) {
			ticket.AssigneeID = nil
		}
		ticket.TeamID = &team.ID
	}
	if assigneeID != nil {
		assignee, err := s.users.GetByID(ctx, *assigneeID)
		if err != nil {
			return nil, apperrors.NotFoundOr(err, "admin user", map[string]any{"assignee_id": *assigneeID})
		}
		if !assignee.IsActive {
			return nil, apperrors.NewConflict("assignee inactive", map[string]any{"assignee_id": assignee.ID})
		}
		ticket.AssigneeID = &assignee.ID
		if ticket.TeamID == nil && assignee.TeamID != nil {
			ticket.TeamID = assignee.TeamID
		}
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.NotFoundOr(err, "ticket", map[string]any{"ticket_id": ticketID})
	}

	act := staffActor(actor)
	if !sameID(oldTeam, ticket.TeamID) {
		recordHistory(ctx, s.history, s.logger, act, ticket.ID, domain.ChangeTypeTeam,
			map[string]any{"team_id": oldTeam}, map[string]any{"team_id": ticket.TeamID})
	}
	if !sameID(oldAssignee, ticket.AssigneeID) {
		recordHistory(ctx, s.history, s.logger, act, ticket.ID, domain.ChangeTypeAssignee,
			map[string]any{"assignee_id": oldAssignee}, map[string]any{"assignee_id": ticket.AssigneeID})
	}
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.New(events.EventTicketAssigned, ticket, act, events.TicketAssignedPayload{
			TeamID:     ticket.TeamID,
			AssigneeID: ticket.AssigneeID,
		}))
	}

	refreshed, err := s.tickets.GetByID(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return refreshed, nil
}

// ListRules returns every rule in evaluation order.
func (s *AssignmentService) ListRules(ctx context.Context) ([]domain.AssignmentRule, error) {
	rules, err := s.rules.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return rules, nil
}

// CreateRule adds a routing rule.
func (s *AssignmentService) CreateRule(ctx context.Context, input RuleInput) (*domain.AssignmentRule, error) {
	if _, err := s.team(ctx, input.TeamID); err != nil {
		return nil, err
	}
	rule := &domain.AssignmentRule{
		Priority:   input.Priority,
		IsActive:   input.IsActive,
		SystemID:   blankToNil(input.SystemID),
		CategoryID: blankToNil(input.CategoryID),
		TeamID:     input.TeamID,
	}
	if err := s.rules.Create(ctx, rule); err != nil {
		return nil, mapWriteError(err, "assignment rule")
	}
	return s.GetRule(ctx, rule.ID)
}

// UpdateRule replaces a rule's settings.
func (s *AssignmentService) UpdateRule(ctx context.Context, id string, input RuleInput) (*domain.AssignmentRule, error) {
	rule, err := s.GetRule(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.team(ctx, input.TeamID); err != nil {
		return nil, err
	}
	rule.Priority = input.Priority
	rule.IsActive = input.IsActive
	rule.SystemID = blankToNil(input.SystemID)
	rule.CategoryID = blankToNil(input.CategoryID)
	rule.TeamID = input.TeamID
	if err := s.rules.Update(ctx, rule); err != nil {
		return nil, mapWriteError(err, "assignment rule")
	}
	return s.GetRule(ctx, id)
}

// DeleteRule removes a rule.
func (s *AssignmentService) DeleteRule(ctx context.Context, id string) error {
	return apperrors.NotFoundOr(s.rules.Delete(ctx, id), "assignment rule", map[string]any{"rule_id": id})
}

// GetRule fetches a rule with its team.
func (s *AssignmentService) GetRule(ctx context.Context, id string) (*domain.AssignmentRule, error) {
	rule, err := s.rules.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "assignment rule", map[string]any{"rule_id": id})
	}
	return rule, nil
}

func (s *AssignmentService) team(ctx context.Context, id string) (*domain.SupportTeam, error) {
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("team does not exist", map[string]any{"team_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return team, nil
}

func (s *AssignmentService) activeTeam(ctx context.Context, id string) (*domain.SupportTeam, error) {
	team, err := s.team(ctx, id)
	if err != nil {
		return nil, err
	}
	if !team.IsActive {
		return nil, apperrors.NewConflict("team inactive", map[string]any{"team_id": id})
	}
	return team, nil
}

func sameID(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// mapWriteError turns constraint violations on insert/update into client
// errors.
func mapWriteError(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case repository.IsUniqueViolation(err):
		return apperrors.NewConflict(resource+" already exists", nil)
	case repository.IsForeignKeyViolation(err):
		return apperrors.NewValidationError("referenced record does not exist", nil)
	default:
		return apperrors.NotFoundOr(err, resource, nil)
	}
}
