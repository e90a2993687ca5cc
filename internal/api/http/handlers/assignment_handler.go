package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/itops-lab/helpdesk/internal/api/dto"
	"github.com/itops-lab/helpdesk/internal/service"
)

// AssignmentHandler manages routing rules.
type AssignmentHandler struct {
	service *service.AssignmentService
}

// NewAssignmentHandler constructs handler.
func NewAssignmentHandler(svc *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// ListRules GET /api/admin/assignment-rules.
func (h *AssignmentHandler) ListRules(c *fiber.Ctx) error {
	rules, err := h.service.ListRules(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.AssignmentRuleResponse, 0, len(rules))
	for _, r := range rules {
		out = append(out, ruleResponse(r))
	}
	return ok(c, out)
}

// CreateRule POST /api/admin/assignment-rules.
func (h *AssignmentHandler) CreateRule(c *fiber.Ctx) error {
	var req dto.AssignmentRuleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	rule, err := h.service.CreateRule(c.UserContext(), ruleInput(req))
	if err != nil {
		return err
	}
	return created(c, ruleResponse(*rule))
}

// UpdateRule PUT /api/admin/assignment-rules/:id.
func (h *AssignmentHandler) UpdateRule(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.AssignmentRuleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	rule, err := h.service.UpdateRule(c.UserContext(), id, ruleInput(req))
	if err != nil {
		return err
	}
	return ok(c, ruleResponse(*rule))
}

// DeleteRule DELETE /api/admin/assignment-rules/:id.
func (h *AssignmentHandler) DeleteRule(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteRule(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Resolve GET /api/admin/assignment-rules/resolve?system_id=&category_id=
// previews which team a new ticket would be routed to.
func (h *AssignmentHandler) Resolve(c *fiber.Ctx) error {
	systemID, err := uuidQuery(c, "system_id")
	if err != nil {
		return err
	}
	categoryID, err := uuidQuery(c, "category_id")
	if err != nil {
		return err
	}
	res, err := h.service.PreviewTeam(c.UserContext(), systemID, categoryID)
	if err != nil {
		return err
	}
	return ok(c, dto.ResolvePreviewResponse{TeamID: res.TeamID, TeamName: res.TeamName})
}

func ruleInput(req dto.AssignmentRuleRequest) service.RuleInput {
	return service.RuleInput{
		Priority:   req.Priority,
		IsActive:   boolOr(req.IsActive, true),
		SystemID:   req.SystemID,
		CategoryID: req.CategoryID,
		TeamID:     req.TeamID,
	}
}
