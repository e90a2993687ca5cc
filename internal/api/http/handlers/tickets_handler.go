package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/itops-lab/helpdesk/internal/api/dto"
	"github.com/itops-lab/helpdesk/internal/domain"
	"github.com/itops-lab/helpdesk/internal/events"
	"github.com/itops-lab/helpdesk/internal/repository"
	"github.com/itops-lab/helpdesk/internal/service"
)

// TicketsHandler manages the admin console ticket endpoints.
type TicketsHandler struct {
	tickets    *service.TicketService
	assignment *service.AssignmentService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, assignment *service.AssignmentService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, assignment: assignment}
}

// ListTickets GET /api/admin/tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	page, size := paging(c)
	filter, err := parseTicketFilter(c)
	if err != nil {
		return err
	}
	filter.Limit = size
	filter.Offset = (page - 1) * size

	tickets, total, err := h.tickets.ListTickets(c.UserContext(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{
		"data": items,
		"meta": dto.PageMeta{Total: total, Page: page, PageSize: size},
	})
}

// GetTicket GET /api/admin/tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	view, err := h.tickets.GetTicket(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, ticketDetail(view, true))
}

// CreateTicket POST /api/admin/tickets on behalf of a reporter.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	id := staff.ID
	actor := events.Actor{Type: domain.SubjectTypeStaff, StaffID: &id, Name: staff.Name}
	ticket, err := h.tickets.CreateTicket(c.UserContext(), actor, createInput(req))
	if err != nil {
		return err
	}
	return created(c, ticketSummary(ticket))
}

// UpdateStatus PATCH /api/admin/tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.UpdateStatus(c.UserContext(), staff, id, req.Status)
	if err != nil {
		return err
	}
	return ok(c, ticketSummary(ticket))
}

// UpdatePriority PATCH /api/admin/tickets/:id/priority.
func (h *TicketsHandler) UpdatePriority(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.UpdatePriorityRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.UpdatePriority(c.UserContext(), staff, id, req.PriorityID)
	if err != nil {
		return err
	}
	return ok(c, ticketSummary(ticket))
}

// Assign PATCH /api/admin/tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ticket, err := h.assignment.Assign(c.UserContext(), staff, id, service.AssignInput{
		TeamID:     req.TeamID,
		AssigneeID: req.AssigneeID,
	})
	if err != nil {
		return err
	}
	return ok(c, ticketSummary(ticket))
}

// AddComment POST /api/admin/tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.StaffCommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	comment, err := h.tickets.AddStaffComment(c.UserContext(), staff, id, req.Body, req.IsInternal)
	if err != nil {
		return err
	}
	return created(c, commentResponse(comment))
}

// RevealEmployeeCode POST /api/admin/tickets/:id/reveal-employee-code.
func (h *TicketsHandler) RevealEmployeeCode(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	code, err := h.tickets.RevealEmployeeCode(c.UserContext(), staff, id)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return ok(c, dto.RevealResponse{EmployeeCode: code})
}

func parseTicketFilter(c *fiber.Ctx) (repository.TicketFilter, error) {
	filter := repository.TicketFilter{
		SearchTerm:  optionalQuery(c, "search"),
		CreatedFrom: parseTime(c.Query("created_from")),
		CreatedTo:   parseTime(c.Query("created_to")),
	}
	ids := []struct {
		key string
		dst **string
	}{
		{"priority_id", &filter.PriorityID},
		{"team_id", &filter.TeamID},
		{"assignee_id", &filter.AssigneeID},
		{"category_id", &filter.CategoryID},
		{"system_id", &filter.SystemID},
	}
	for _, q := range ids {
		v, err := uuidQuery(c, q.key)
		if err != nil {
			return filter, err
		}
		*q.dst = v
	}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			status := domain.TicketStatus(strings.ToUpper(strings.TrimSpace(part)))
			if status.Valid() {
				filter.Statuses = append(filter.Statuses, status)
			}
		}
	}
	return filter, nil
}
