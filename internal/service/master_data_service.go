package service

import (
	"context"
	"strings"

	"github.com/itops-lab/helpdesk/internal/domain"
	"github.com/itops-lab/helpdesk/internal/repository"
	apperrors "github.com/itops-lab/helpdesk/pkg/util/errorutil"
)

// MasterDataService manages the reference data tickets point at.
type MasterDataService struct {
	categories repository.CategoryRepository
	priorities repository.PriorityRepository
	systems    repository.SystemRepository
	teams      repository.TeamRepository
	orgUnits   repository.OrgUnitRepository
}

// MasterDataDependencies bundles repositories.
type MasterDataDependencies struct {
	CategoryRepo repository.CategoryRepository
	PriorityRepo repository.PriorityRepository
	SystemRepo   repository.SystemRepository
	TeamRepo     repository.TeamRepository
	OrgUnitRepo  repository.OrgUnitRepository
}

// PublicMasterData is what the reporter form needs.
type PublicMasterData struct {
	Categories []domain.Category
	Priorities []domain.Priority
	Systems    []domain.System
	OrgUnits   []*domain.OrgUnitNode
}

// NewMasterDataService constructs the service.
func NewMasterDataService(deps MasterDataDependencies) *MasterDataService {
	return &MasterDataService{
		categories: deps.CategoryRepo,
		priorities: deps.PriorityRepo,
		systems:    deps.SystemRepo,
		teams:      deps.TeamRepo,
		orgUnits:   deps.OrgUnitRepo,
	}
}

// Public returns the active reference data for the ticket form.
func (s *MasterDataService) Public(ctx context.Context) (*PublicMasterData, error) {
	categories, err := s.categories.List(ctx, true)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	priorities, err := s.priorities.List(ctx, true)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	systems, err := s.systems.List(ctx, true)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	units, err := s.orgUnits.List(ctx, true)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &PublicMasterData{
		Categories: categories,
		Priorities: priorities,
		Systems:    systems,
		OrgUnits:   domain.BuildOrgTree(units),
	}, nil
}

// ListCategories returns categories, optionally including inactive ones.
func (s *MasterDataService) ListCategories(ctx context.Context, includeInactive bool) ([]domain.Category, error) {
	out, err := s.categories.List(ctx, !includeInactive)
	return out, apperrors.MapError(err)
}

// CreateCategory stores a category.
func (s *MasterDataService) CreateCategory(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, mapWriteError(err, "category")
	}
	return c, nil
}

// UpdateCategory replaces a category.
func (s *MasterDataService) UpdateCategory(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, mapWriteError(err, "category")
	}
	return s.categories.GetByID(ctx, c.ID)
}

// DeleteCategory removes a category. Tickets keep existing without it.
func (s *MasterDataService) DeleteCategory(ctx context.Context, id string) error {
	return mapWriteError(s.categories.Delete(ctx, id), "category")
}

// ListPriorities returns priorities, optionally including inactive ones.
func (s *MasterDataService) ListPriorities(ctx context.Context, includeInactive bool) ([]domain.Priority, error) {
	out, err := s.priorities.List(ctx, !includeInactive)
	return out, apperrors.MapError(err)
}

// CreatePriority stores a priority.
func (s *MasterDataService) CreatePriority(ctx context.Context, p *domain.Priority) (*domain.Priority, error) {
	if err := validateSLA(p); err != nil {
		return nil, err
	}
	p.Name = strings.TrimSpace(p.Name)
	if err := s.priorities.Create(ctx, p); err != nil {
		return nil, mapWriteError(err, "priority")
	}
	return p, nil
}

// UpdatePriority replaces a priority.
func (s *MasterDataService) UpdatePriority(ctx context.Context, p *domain.Priority) (*domain.Priority, error) {
	if err := validateSLA(p); err != nil {
		return nil, err
	}
	p.Name = strings.TrimSpace(p.Name)
	if err := s.priorities.Update(ctx, p); err != nil {
		return nil, mapWriteError(err, "priority")
	}
	return s.priorities.GetByID(ctx, p.ID)
}

// DeletePriority removes a priority.
func (s *MasterDataService) DeletePriority(ctx context.Context, id string) error {
	return mapWriteError(s.priorities.Delete(ctx, id), "priority")
}

func validateSLA(p *domain.Priority) error {
	details := map[string]any{}
	if p.SLAFirstResponseMins != nil && *p.SLAFirstResponseMins <= 0 {
		details["sla_first_response_minutes"] = "must be positive"
	}
	if p.SLAResolveMins != nil && *p.SLAResolveMins <= 0 {
		details["sla_resolve_minutes"] = "must be positive"
	}
	if p.SLAFirstResponseMins != nil && p.SLAResolveMins != nil && *p.SLAResolveMins < *p.SLAFirstResponseMins {
		details["sla_resolve_minutes"] = "must not be shorter than the first response time"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid SLA thresholds", details)
	}
	return nil
}

// ListSystems returns systems, optionally including inactive ones.
func (s *MasterDataService) ListSystems(ctx context.Context, includeInactive bool) ([]domain.System, error) {
	out, err := s.systems.List(ctx, !includeInactive)
	return out, apperrors.MapError(err)
}

// CreateSystem stores a system.
func (s *MasterDataService) CreateSystem(ctx context.Context, sys *domain.System) (*domain.System, error) {
	sys.Name = strings.TrimSpace(sys.Name)
	if err := s.systems.Create(ctx, sys); err != nil {
		return nil, mapWriteError(err, "system")
	}
	return sys, nil
}

// UpdateSystem replaces a system.
func (s *MasterDataService) UpdateSystem(ctx context.Context, sys *domain.System) (*domain.System, error) {
	sys.Name = strings.TrimSpace(sys.Name)
	if err := s.systems.Update(ctx, sys); err != nil {
		return nil, mapWriteError(err, "system")
	}
	return s.systems.GetByID(ctx, sys.ID)
}

// DeleteSystem removes a system and the rules routing on it.
func (s *MasterDataService) DeleteSystem(ctx context.Context, id string) error {
	return mapWriteError(s.systems.Delete(ctx, id), "system")
}

// ListTeams returns support teams, optionally including inactive ones.
func (s *MasterDataService) ListTeams(ctx context.Context, includeInactive bool) ([]domain.SupportTeam, error) {
	out, err := s.teams.List(ctx, !includeInactive)
	return out, apperrors.MapError(err)
}

// CreateTeam stores a support team.
func (s *MasterDataService) CreateTeam(ctx context.Context, team *domain.SupportTeam) (*domain.SupportTeam, error) {
	team.Name = strings.TrimSpace(team.Name)
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, mapWriteError(err, "team")
	}
	return team, nil
}

// UpdateTeam replaces a support team. Deactivating a team keeps its rules but
// makes them ineligible for routing.
func (s *MasterDataService) UpdateTeam(ctx context.Context, team *domain.SupportTeam) (*domain.SupportTeam, error) {
	team.Name = strings.TrimSpace(team.Name)
	if err := s.teams.Update(ctx, team); err != nil {
		return nil, mapWriteError(err, "team")
	}
	return s.teams.GetByID(ctx, team.ID)
}

// DeleteTeam removes a support team and its rules.
func (s *MasterDataService) DeleteTeam(ctx context.Context, id string) error {
	return mapWriteError(s.teams.Delete(ctx, id), "team")
}

// OrgTree returns the organization hierarchy.
func (s *MasterDataService) OrgTree(ctx context.Context, includeInactive bool) ([]*domain.OrgUnitNode, error) {
	units, err := s.orgUnits.List(ctx, !includeInactive)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return domain.BuildOrgTree(units), nil
}

// CreateOrgUnit stores a unit under an optional parent.
func (s *MasterDataService) CreateOrgUnit(ctx context.Context, unit *domain.OrgUnit) (*domain.OrgUnit, error) {
	unit.ParentID = blankToNil(unit.ParentID)
	unit.Name = strings.TrimSpace(unit.Name)
	if unit.ParentID != nil {
		if _, err := s.orgUnits.GetByID(ctx, *unit.ParentID); err != nil {
			return nil, apperrors.NotFoundOr(err, "parent org unit", map[string]any{"parent_id": *unit.ParentID})
		}
	}
	if err := s.orgUnits.Create(ctx, unit); err != nil {
		return nil, mapWriteError(err, "org unit")
	}
	return unit, nil
}

// UpdateOrgUnit replaces a unit. Moving a unit beneath itself is rejected.
func (s *MasterDataService) UpdateOrgUnit(ctx context.Context, unit *domain.OrgUnit) (*domain.OrgUnit, error) {
	unit.ParentID = blankToNil(unit.ParentID)
	unit.Name = strings.TrimSpace(unit.Name)
	if unit.ParentID != nil {
		units, err := s.orgUnits.List(ctx, false)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		for _, id := range domain.Descendants(units, unit.ID) {
			if id == *unit.ParentID {
				return nil, apperrors.NewValidationError("org unit cannot be moved beneath itself", map[string]any{"parent_id": id})
			}
		}
	}
	if err := s.orgUnits.Update(ctx, unit); err != nil {
		return nil, mapWriteError(err, "org unit")
	}
	return s.orgUnits.GetByID(ctx, unit.ID)
}

// DeleteOrgUnit removes a unit and its whole subtree, deepest units first.
func (s *MasterDataService) DeleteOrgUnit(ctx context.Context, id string) ([]string, error) {
	if _, err := s.orgUnits.GetByID(ctx, id); err != nil {
		return nil, apperrors.NotFoundOr(err, "org unit", map[string]any{"org_unit_id": id})
	}
	units, err := s.orgUnits.List(ctx, false)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	subtree := domain.Descendants(units, id)
	ordered := make([]string, len(subtree))
	for i, unitID := range subtree {
		ordered[len(subtree)-1-i] = unitID
	}
	if err := s.orgUnits.DeleteMany(ctx, ordered); err != nil {
		return nil, mapWriteError(err, "org unit")
	}
	return ordered, nil
}
