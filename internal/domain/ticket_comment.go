package domain

import "time"

// TicketComment is a message in a ticket thread. Internal comments are only
// visible in the admin console.
type TicketComment struct {
	ID         string
	TicketID   string
	AuthorType SubjectType
	AuthorID   *string
	AuthorName string
	Body       string
	IsInternal bool
	CreatedAt  time.Time
}

// TicketSurvey is the reporter's satisfaction rating for a finished ticket.
type TicketSurvey struct {
	ID        string
	TicketID  string
	Rating    int
	Comment   string
	CreatedAt time.Time
}
