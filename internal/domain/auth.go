package domain

import "time"

// SubjectType differentiates who acted on a ticket.
type SubjectType string

const (
	SubjectTypeReporter SubjectType = "USER"
	SubjectTypeStaff    SubjectType = "STAFF"
	SubjectTypeSystem   SubjectType = "SYSTEM"
)

// Token represents issued authentication token metadata.
type Token struct {
	SubjectID string
	Role      StaffRole
	ExpiresAt time.Time
	IssuedAt  time.Time
}
