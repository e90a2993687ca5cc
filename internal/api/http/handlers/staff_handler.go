package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/itops-lab/helpdesk/internal/api/dto"
	"github.com/itops-lab/helpdesk/internal/domain"
	"github.com/itops-lab/helpdesk/internal/repository"
	"github.com/itops-lab/helpdesk/internal/service"
)

// StaffHandler exposes staff auth and account administration.
type StaffHandler struct {
	authService  *service.AuthService
	staffService *service.StaffService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(authService *service.AuthService, staffService *service.StaffService) *StaffHandler {
	return &StaffHandler{authService: authService, staffService: staffService}
}

// Login handles POST /api/admin/auth/login.
func (h *StaffHandler) Login(c *fiber.Ctx) error {
	var req dto.StaffLoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	result, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return ok(c, dto.AuthResponse{
		Token:     result.AccessToken,
		ExpiresAt: result.Token.ExpiresAt,
		User:      adminUserResponse(result.User),
	})
}

// Me handles GET /api/admin/auth/me.
func (h *StaffHandler) Me(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	return ok(c, adminUserResponse(staff))
}

// ChangePassword handles POST /api/admin/auth/password.
func (h *StaffHandler) ChangePassword(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.PasswordChangeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := h.authService.ChangePassword(c.UserContext(), staff.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListUsers GET /api/admin/users?role=&team_id=&active=.
func (h *StaffHandler) ListUsers(c *fiber.Ctx) error {
	teamID, err := uuidQuery(c, "team_id")
	if err != nil {
		return err
	}
	filter := repository.AdminUserFilter{TeamID: teamID}
	if role := domain.StaffRole(c.Query("role")); role.Valid() {
		filter.Role = &role
	}
	if c.Query("active") != "" {
		active := c.QueryBool("active")
		filter.Active = &active
	}
	users, err := h.staffService.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	out := make([]dto.AdminUserResponse, 0, len(users))
	for i := range users {
		out = append(out, adminUserResponse(&users[i]))
	}
	return ok(c, out)
}

// GetUser GET /api/admin/users/:id.
func (h *StaffHandler) GetUser(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	user, err := h.staffService.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, adminUserResponse(user))
}

// CreateUser POST /api/admin/users.
func (h *StaffHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.AdminUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.staffService.Create(c.UserContext(), staffInput(req))
	if err != nil {
		return err
	}
	return created(c, adminUserResponse(user))
}

// UpdateUser PUT /api/admin/users/:id.
func (h *StaffHandler) UpdateUser(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	actor, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.AdminUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	user, err := h.staffService.Update(c.UserContext(), actor, id, staffInput(req))
	if err != nil {
		return err
	}
	return ok(c, adminUserResponse(user))
}

// DeleteUser DELETE /api/admin/users/:id.
func (h *StaffHandler) DeleteUser(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	actor, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	if err := h.staffService.Delete(c.UserContext(), actor, id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func staffInput(req dto.AdminUserRequest) service.StaffInput {
	return service.StaffInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		TeamID:   req.TeamID,
		IsActive: boolOr(req.IsActive, true),
	}
}
