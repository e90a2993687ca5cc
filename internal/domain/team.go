package domain

import "time"

// SupportTeam is a group of staff responsible for a slice of tickets.
type SupportTeam struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AssignmentRule maps a (system, category) pair to the owning team. A rule
// with neither SystemID nor CategoryID is the catch-all default.
type AssignmentRule struct {
	ID         string
	Priority   int
	IsActive   bool
	SystemID   *string
	CategoryID *string
	TeamID     string
	Team       SupportTeam
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsDefault reports whether the rule matches every ticket.
func (r AssignmentRule) IsDefault() bool {
	return r.SystemID == nil && r.CategoryID == nil
}
