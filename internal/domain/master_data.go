package domain

import "time"

// Category classifies the kind of problem reported.
type Category struct {
	ID          string
	Name        string
	Description string
	SortOrder   int
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Priority carries urgency and the SLA thresholds in minutes. Nil thresholds
// fall back to the service defaults.
type Priority struct {
	ID                   string
	Name                 string
	Severity             int
	Color                string
	SLAFirstResponseMins *int
	SLAResolveMins       *int
	IsActive             bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// System is an IT system a ticket can be reported against.
type System struct {
	ID          string
	Name        string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
