package domain

import "time"

// StaffRole enumerates admin console roles.
type StaffRole string

const (
	StaffRoleAgent StaffRole = "AGENT"
	StaffRoleAdmin StaffRole = "ADMIN"
)

// Valid reports whether the role is known.
func (r StaffRole) Valid() bool {
	return r == StaffRoleAgent || r == StaffRoleAdmin
}

// AdminUser models a staff account that logs in to the admin console.
type AdminUser struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         StaffRole
	TeamID       *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
