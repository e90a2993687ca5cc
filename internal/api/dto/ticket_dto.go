package dto

import (
	"time"

	"github.com/itops-lab/helpdesk/internal/domain"
)

// CreateTicketRequest payload for both the public form and staff on behalf
// of a reporter. TeamID is ignored on the public endpoint.
type CreateTicketRequest struct {
	Title         string  `json:"title" validate:"required,max=200"`
	Description   string  `json:"description" validate:"required"`
	ReporterName  string  `json:"reporter_name" validate:"required,max=120"`
	ReporterEmail string  `json:"reporter_email" validate:"omitempty,email"`
	ReporterPhone string  `json:"reporter_phone" validate:"omitempty,max=40"`
	EmployeeCode  string  `json:"employee_code" validate:"required,max=64"`
	OrgUnitID     *string `json:"org_unit_id" validate:"omitempty,uuid"`
	SystemID      *string `json:"system_id" validate:"omitempty,uuid"`
	CategoryID    *string `json:"category_id" validate:"omitempty,uuid"`
	PriorityID    *string `json:"priority_id" validate:"omitempty,uuid"`
	TeamID        *string `json:"team_id" validate:"omitempty,uuid"`
}

// TicketCreatedResponse is what the reporter gets back after submitting.
type TicketCreatedResponse struct {
	ID                 string  `json:"id"`
	Code               string  `json:"code"`
	EmployeeCodeMasked string  `json:"employee_code_masked"`
	TeamID             *string `json:"team_id"`
	TeamName           *string `json:"team_name"`
	Status             string  `json:"status"`
}

// TrackTicketRequest proves ownership of a ticket.
type TrackTicketRequest struct {
	TicketCode   string `json:"ticket_code" validate:"required"`
	EmployeeCode string `json:"employee_code" validate:"required"`
}

// ReporterCommentRequest payload.
type ReporterCommentRequest struct {
	EmployeeCode string `json:"employee_code" validate:"required"`
	AuthorName   string `json:"author_name" validate:"omitempty,max=120"`
	Body         string `json:"body" validate:"required,max=5000"`
}

// SurveyRequest payload.
type SurveyRequest struct {
	EmployeeCode string `json:"employee_code" validate:"required"`
	Rating       int    `json:"rating" validate:"gte=1,lte=5"`
	Comment      string `json:"comment" validate:"max=2000"`
}

// StaffCommentRequest payload.
type StaffCommentRequest struct {
	Body       string `json:"body" validate:"required,max=5000"`
	IsInternal bool   `json:"is_internal"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status" validate:"required,oneof=OPEN IN_PROGRESS PENDING RESOLVED CLOSED CANCELLED"`
}

// UpdatePriorityRequest payload. A null priority clears it.
type UpdatePriorityRequest struct {
	PriorityID *string `json:"priority_id" validate:"omitempty,uuid"`
}

// AssignRequest payload.
type AssignRequest struct {
	TeamID     *string `json:"team_id" validate:"omitempty,uuid"`
	AssigneeID *string `json:"assignee_id" validate:"omitempty,uuid"`
}

// TicketSummary is a list row.
type TicketSummary struct {
	ID                 string              `json:"id"`
	Code               string              `json:"code"`
	Title              string              `json:"title"`
	Status             domain.TicketStatus `json:"status"`
	ReporterName       string              `json:"reporter_name"`
	EmployeeCodeMasked string              `json:"employee_code_masked"`
	OrgUnitName        string              `json:"org_unit_name,omitempty"`
	SystemName         string              `json:"system_name,omitempty"`
	CategoryName       string              `json:"category_name,omitempty"`
	PriorityName       string              `json:"priority_name,omitempty"`
	TeamName           string              `json:"team_name,omitempty"`
	AssigneeName       string              `json:"assignee_name,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Description      string                  `json:"description"`
	ReporterEmail    string                  `json:"reporter_email,omitempty"`
	ReporterPhone    string                  `json:"reporter_phone,omitempty"`
	OrgUnitID        *string                 `json:"org_unit_id"`
	SystemID         *string                 `json:"system_id"`
	CategoryID       *string                 `json:"category_id"`
	PriorityID       *string                 `json:"priority_id"`
	TeamID           *string                 `json:"team_id"`
	AssigneeID       *string                 `json:"assignee_id"`
	FirstRespondedAt *time.Time              `json:"first_responded_at"`
	ResolvedAt       *time.Time              `json:"resolved_at"`
	ClosedAt         *time.Time              `json:"closed_at"`
	CanReveal        bool                    `json:"can_reveal_employee_code,omitempty"`
	Comments         []CommentResponse       `json:"comments"`
	History          []TicketHistoryResponse `json:"history,omitempty"`
	Survey           *SurveyResponse         `json:"survey"`
}

// CommentResponse represents a thread message.
type CommentResponse struct {
	ID         string             `json:"id"`
	AuthorType domain.SubjectType `json:"author_type"`
	AuthorName string             `json:"author_name"`
	Body       string             `json:"body"`
	IsInternal bool               `json:"is_internal"`
	CreatedAt  time.Time          `json:"created_at"`
}

// TicketHistoryResponse is one audit entry.
type TicketHistoryResponse struct {
	ID            string                  `json:"id"`
	ChangedByType domain.SubjectType      `json:"changed_by_type"`
	ChangedByID   *string                 `json:"changed_by_id"`
	ChangeType    domain.TicketChangeType `json:"change_type"`
	OldValue      map[string]any          `json:"old_value"`
	NewValue      map[string]any          `json:"new_value"`
	CreatedAt     time.Time               `json:"created_at"`
}

// SurveyResponse payload.
type SurveyResponse struct {
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// RevealResponse carries a decrypted employee code.
type RevealResponse struct {
	EmployeeCode string `json:"employee_code"`
}

// PageMeta describes a paged listing.
type PageMeta struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}
