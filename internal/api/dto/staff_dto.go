package dto

import (
	"time"

	"github.com/itops-lab/helpdesk/internal/domain"
)

// StaffLoginRequest payload.
type StaffLoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	User      AdminUserResponse `json:"user"`
}

// PasswordChangeRequest payload for authenticated password changes.
type PasswordChangeRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// AdminUserRequest creates or updates a staff account. Password may be
// empty on update.
type AdminUserRequest struct {
	Name     string           `json:"name" validate:"required,max=120"`
	Email    string           `json:"email" validate:"required,email"`
	Password string           `json:"password" validate:"omitempty,min=8"`
	Role     domain.StaffRole `json:"role" validate:"required,oneof=ADMIN AGENT"`
	TeamID   *string          `json:"team_id" validate:"omitempty,uuid"`
	IsActive *bool            `json:"is_active"`
}

// AdminUserResponse never includes the password hash.
type AdminUserResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Role      domain.StaffRole `json:"role"`
	TeamID    *string          `json:"team_id"`
	IsActive  bool             `json:"is_active"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
