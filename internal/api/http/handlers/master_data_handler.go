package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/itops-lab/helpdesk/internal/api/dto"
	"github.com/itops-lab/helpdesk/internal/domain"
	"github.com/itops-lab/helpdesk/internal/service"
)

// MasterDataHandler exposes reference data administration.
type MasterDataHandler struct {
	service *service.MasterDataService
}

// NewMasterDataHandler constructs handler.
func NewMasterDataHandler(svc *service.MasterDataService) *MasterDataHandler {
	return &MasterDataHandler{service: svc}
}

func includeInactive(c *fiber.Ctx) bool {
	return c.QueryBool("include_inactive", true)
}

// ListCategories GET /api/admin/categories.
func (h *MasterDataHandler) ListCategories(c *fiber.Ctx) error {
	items, err := h.service.ListCategories(c.UserContext(), includeInactive(c))
	if err != nil {
		return err
	}
	out := make([]dto.CategoryResponse, 0, len(items))
	for _, item := range items {
		out = append(out, categoryResponse(item))
	}
	return ok(c, out)
}

// CreateCategory POST /api/admin/categories.
func (h *MasterDataHandler) CreateCategory(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cat, err := h.service.CreateCategory(c.UserContext(), categoryFrom(req))
	if err != nil {
		return err
	}
	return created(c, categoryResponse(*cat))
}

// UpdateCategory PUT /api/admin/categories/:id.
func (h *MasterDataHandler) UpdateCategory(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.CategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	cat := categoryFrom(req)
	cat.ID = id
	updated, err := h.service.UpdateCategory(c.UserContext(), cat)
	if err != nil {
		return err
	}
	return ok(c, categoryResponse(*updated))
}

// DeleteCategory DELETE /api/admin/categories/:id.
func (h *MasterDataHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteCategory(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListPriorities GET /api/admin/priorities.
func (h *MasterDataHandler) ListPriorities(c *fiber.Ctx) error {
	items, err := h.service.ListPriorities(c.UserContext(), includeInactive(c))
	if err != nil {
		return err
	}
	out := make([]dto.PriorityResponse, 0, len(items))
	for _, item := range items {
		out = append(out, priorityResponse(item))
	}
	return ok(c, out)
}

// CreatePriority POST /api/admin/priorities.
func (h *MasterDataHandler) CreatePriority(c *fiber.Ctx) error {
	var req dto.PriorityRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	p, err := h.service.CreatePriority(c.UserContext(), priorityFrom(req))
	if err != nil {
		return err
	}
	return created(c, priorityResponse(*p))
}

// UpdatePriority PUT /api/admin/priorities/:id.
func (h *MasterDataHandler) UpdatePriority(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.PriorityRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	p := priorityFrom(req)
	p.ID = id
	updated, err := h.service.UpdatePriority(c.UserContext(), p)
	if err != nil {
		return err
	}
	return ok(c, priorityResponse(*updated))
}

// DeletePriority DELETE /api/admin/priorities/:id.
func (h *MasterDataHandler) DeletePriority(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeletePriority(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListSystems GET /api/admin/systems.
func (h *MasterDataHandler) ListSystems(c *fiber.Ctx) error {
	items, err := h.service.ListSystems(c.UserContext(), includeInactive(c))
	if err != nil {
		return err
	}
	out := make([]dto.SystemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, systemResponse(item))
	}
	return ok(c, out)
}

// CreateSystem POST /api/admin/systems.
func (h *MasterDataHandler) CreateSystem(c *fiber.Ctx) error {
	var req dto.SystemRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	sys, err := h.service.CreateSystem(c.UserContext(), &domain.System{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    boolOr(req.IsActive, true),
	})
	if err != nil {
		return err
	}
	return created(c, systemResponse(*sys))
}

// UpdateSystem PUT /api/admin/systems/:id.
func (h *MasterDataHandler) UpdateSystem(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.SystemRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	sys, err := h.service.UpdateSystem(c.UserContext(), &domain.System{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    boolOr(req.IsActive, true),
	})
	if err != nil {
		return err
	}
	return ok(c, systemResponse(*sys))
}

// DeleteSystem DELETE /api/admin/systems/:id.
func (h *MasterDataHandler) DeleteSystem(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteSystem(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListTeams GET /api/admin/teams.
func (h *MasterDataHandler) ListTeams(c *fiber.Ctx) error {
	items, err := h.service.ListTeams(c.UserContext(), includeInactive(c))
	if err != nil {
		return err
	}
	out := make([]dto.TeamResponse, 0, len(items))
	for _, item := range items {
		out = append(out, teamResponse(item))
	}
	return ok(c, out)
}

// CreateTeam POST /api/admin/teams.
func (h *MasterDataHandler) CreateTeam(c *fiber.Ctx) error {
	var req dto.TeamRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	team, err := h.service.CreateTeam(c.UserContext(), &domain.SupportTeam{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    boolOr(req.IsActive, true),
	})
	if err != nil {
		return err
	}
	return created(c, teamResponse(*team))
}

// UpdateTeam PUT /api/admin/teams/:id.
func (h *MasterDataHandler) UpdateTeam(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.TeamRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	team, err := h.service.UpdateTeam(c.UserContext(), &domain.SupportTeam{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		IsActive:    boolOr(req.IsActive, true),
	})
	if err != nil {
		return err
	}
	return ok(c, teamResponse(*team))
}

// DeleteTeam DELETE /api/admin/teams/:id.
func (h *MasterDataHandler) DeleteTeam(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteTeam(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// OrgTree GET /api/admin/org-units.
func (h *MasterDataHandler) OrgTree(c *fiber.Ctx) error {
	tree, err := h.service.OrgTree(c.UserContext(), includeInactive(c))
	if err != nil {
		return err
	}
	return ok(c, orgUnitNodes(tree))
}

// CreateOrgUnit POST /api/admin/org-units.
func (h *MasterDataHandler) CreateOrgUnit(c *fiber.Ctx) error {
	var req dto.OrgUnitRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	unit, err := h.service.CreateOrgUnit(c.UserContext(), &domain.OrgUnit{
		Name:     req.Name,
		Code:     req.Code,
		ParentID: req.ParentID,
		IsActive: boolOr(req.IsActive, true),
	})
	if err != nil {
		return err
	}
	return created(c, orgUnitNodes([]*domain.OrgUnitNode{{OrgUnit: *unit}})[0])
}

// UpdateOrgUnit PUT /api/admin/org-units/:id.
func (h *MasterDataHandler) UpdateOrgUnit(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.OrgUnitRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	unit, err := h.service.UpdateOrgUnit(c.UserContext(), &domain.OrgUnit{
		ID:       id,
		Name:     req.Name,
		Code:     req.Code,
		ParentID: req.ParentID,
		IsActive: boolOr(req.IsActive, true),
	})
	if err != nil {
		return err
	}
	return ok(c, orgUnitNodes([]*domain.OrgUnitNode{{OrgUnit: *unit}})[0])
}

// DeleteOrgUnit DELETE /api/admin/org-units/:id removes the whole subtree.
func (h *MasterDataHandler) DeleteOrgUnit(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	deleted, err := h.service.DeleteOrgUnit(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, dto.OrgUnitDeleteResponse{DeletedIDs: deleted})
}

func categoryFrom(req dto.CategoryRequest) *domain.Category {
	return &domain.Category{
		Name:        req.Name,
		Description: req.Description,
		SortOrder:   req.SortOrder,
		IsActive:    boolOr(req.IsActive, true),
	}
}

func priorityFrom(req dto.PriorityRequest) *domain.Priority {
	return &domain.Priority{
		Name:                 req.Name,
		Severity:             req.Severity,
		Color:                req.Color,
		SLAFirstResponseMins: req.SLAFirstResponseMins,
		SLAResolveMins:       req.SLAResolveMins,
		IsActive:             boolOr(req.IsActive, true),
	}
}
