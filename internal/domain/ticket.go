package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusPending    TicketStatus = "PENDING"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
	TicketStatusCancelled  TicketStatus = "CANCELLED"
)

// OpenStatuses are the states counted against SLA.
var OpenStatuses = []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusPending}

// Valid reports whether the status is known.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusPending,
		TicketStatusResolved, TicketStatusClosed, TicketStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further work happens on the ticket.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusClosed || s == TicketStatusCancelled
}

// Ticket is the aggregate for support requests. The *Name fields and SLA
// thresholds are read-side joins and are ignored on write.
type Ticket struct {
	ID                 string
	Code               string
	Title              string
	Description        string
	ReporterName       string
	ReporterEmail      string
	ReporterPhone      string
	EmployeeCodeHash   string
	EmployeeCodeMasked string
	EmployeeCodeEnc    *string
	OrgUnitID          *string
	SystemID           *string
	CategoryID         *string
	PriorityID         *string
	TeamID             *string
	AssigneeID         *string
	Status             TicketStatus
	FirstRespondedAt   *time.Time
	ResolvedAt         *time.Time
	ClosedAt           *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time

	OrgUnitName          string
	SystemName           string
	CategoryName         string
	PriorityName         string
	TeamName             string
	AssigneeName         string
	SLAFirstResponseMins *int
	SLAResolveMins       *int
}

// CountBucket is one row of a grouped ticket count.
type CountBucket struct {
	Key   string
	Label string
	Count int
}
