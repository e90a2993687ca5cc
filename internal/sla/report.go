package sla

import (
	"math"
	"time"

	"github.com/itops-lab/helpdesk/internal/domain"
)

// Entry is one ticket row of the report.
type Entry struct {
	TicketID     string
	Code         string
	Title        string
	TicketStatus domain.TicketStatus
	PriorityName string
	TeamName     string
	AssigneeName string
	CreatedAt    time.Time
	Status
	Bucket Bucket
}

// Summary counts tickets per bucket.
type Summary struct {
	Total           int
	Breached        int
	AtRisk          int
	OnTrack         int
	BreachedPercent int
}

// Report is the SLA dashboard payload.
type Report struct {
	GeneratedAt     time.Time
	Summary         Summary
	BreachedTickets []Entry
	AtRiskTickets   []Entry
	OnTrackTickets  []Entry
	AllTickets      []Entry
}

// ThresholdsOf returns the thresholds joined onto a ticket.
func ThresholdsOf(t domain.Ticket) Thresholds {
	return Thresholds{ResponseMinutes: t.SLAFirstResponseMins, ResolveMinutes: t.SLAResolveMins}
}

// NewEntry evaluates a single ticket.
func NewEntry(t domain.Ticket, now time.Time) Entry {
	st := Evaluate(t.CreatedAt, now, ThresholdsOf(t))
	return Entry{
		TicketID:     t.ID,
		Code:         t.Code,
		Title:        t.Title,
		TicketStatus: t.Status,
		PriorityName: t.PriorityName,
		TeamName:     t.TeamName,
		AssigneeName: t.AssigneeName,
		CreatedAt:    t.CreatedAt,
		Status:       st,
		Bucket:       st.Bucket(),
	}
}

// BuildReport classifies every ticket. Input order is kept inside each bucket.
func BuildReport(tickets []domain.Ticket, now time.Time) Report {
	report := Report{
		GeneratedAt:     now,
		BreachedTickets: []Entry{},
		AtRiskTickets:   []Entry{},
		OnTrackTickets:  []Entry{},
		AllTickets:      make([]Entry, 0, len(tickets)),
	}
	for _, t := range tickets {
		entry := NewEntry(t, now)
		report.AllTickets = append(report.AllTickets, entry)
		switch entry.Bucket {
		case BucketBreached:
			report.BreachedTickets = append(report.BreachedTickets, entry)
		case BucketAtRisk:
			report.AtRiskTickets = append(report.AtRiskTickets, entry)
		default:
			report.OnTrackTickets = append(report.OnTrackTickets, entry)
		}
	}

	s := &report.Summary
	s.Total = len(report.AllTickets)
	s.Breached = len(report.BreachedTickets)
	s.AtRisk = len(report.AtRiskTickets)
	s.OnTrack = len(report.OnTrackTickets)
	if s.Total > 0 {
		s.BreachedPercent = int(math.Round(float64(s.Breached) / float64(s.Total) * 100))
	}
	return report
}
