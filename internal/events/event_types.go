package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/itops-lab/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketCommentAdded    EventType = "ticket_comment_added"
	EventSurveySubmitted       EventType = "survey_submitted"
	EventSLABreached           EventType = "sla_breached"
)

// AllEventTypes lists every event a notification channel may subscribe to.
var AllEventTypes = []EventType{
	EventTicketCreated,
	EventTicketStatusChanged,
	EventTicketPriorityChanged,
	EventTicketAssigned,
	EventTicketCommentAdded,
	EventSurveySubmitted,
	EventSLABreached,
}

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	for _, known := range AllEventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type    domain.SubjectType `json:"type"`
	StaffID *string            `json:"staff_id,omitempty"`
	Name    string             `json:"name,omitempty"`
}

// SystemActor is used for events raised by background jobs.
var SystemActor = Actor{Type: domain.SubjectTypeSystem, Name: "system"}

// Event represents a domain event emitted by services.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	TicketID   string    `json:"ticket_id"`
	TicketCode string    `json:"ticket_code"`
	Actor      Actor     `json:"actor"`
	Timestamp  time.Time `json:"timestamp"`
	Payload    any       `json:"payload"`
}

// New stamps an event for the given ticket.
func New(eventType EventType, ticket *domain.Ticket, actor Actor, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		TicketID:   ticket.ID,
		TicketCode: ticket.Code,
		Actor:      actor,
		Timestamp:  time.Now().UTC(),
		Payload:    payload,
	}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title        string  `json:"title"`
	ReporterName string  `json:"reporter_name"`
	TeamID       *string `json:"team_id,omitempty"`
	TeamName     string  `json:"team_name,omitempty"`
	PriorityID   *string `json:"priority_id,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriorityID *string `json:"old_priority_id,omitempty"`
	NewPriorityID *string `json:"new_priority_id,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	TeamID     *string `json:"team_id,omitempty"`
	AssigneeID *string `json:"assignee_id,omitempty"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	CommentID   string             `json:"comment_id"`
	AuthorType  domain.SubjectType `json:"author_type"`
	IsInternal  bool               `json:"is_internal"`
	BodyPreview string             `json:"body_preview"`
}

// SurveySubmittedPayload payload.
type SurveySubmittedPayload struct {
	Rating int `json:"rating"`
}

// SLABreachedPayload payload.
type SLABreachedPayload struct {
	AgeMinutes     int    `json:"age_minutes"`
	AgeText        string `json:"age_text"`
	ResolveMinutes int    `json:"sla_resolve_minutes"`
	PriorityName   string `json:"priority_name,omitempty"`
	TeamName       string `json:"team_name,omitempty"`
}
