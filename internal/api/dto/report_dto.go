package dto

import "time"

// SLATicketResponse is one row of the SLA dashboard.
type SLATicketResponse struct {
	TicketID           string    `json:"ticket_id"`
	Code               string    `json:"code"`
	Title              string    `json:"title"`
	Status             string    `json:"status"`
	PriorityName       string    `json:"priority_name,omitempty"`
	TeamName           string    `json:"team_name,omitempty"`
	AssigneeName       string    `json:"assignee_name,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	AgeMinutes         int       `json:"age_minutes"`
	AgeText            string    `json:"age_text"`
	SLAResponseMinutes int       `json:"sla_response_minutes"`
	SLAResolveMinutes  int       `json:"sla_resolve_minutes"`
	ResponseBreached   bool      `json:"response_breached"`
	ResolveBreached    bool      `json:"resolve_breached"`
	ResponsePercent    int       `json:"response_percent"`
	ResolvePercent     int       `json:"resolve_percent"`
	Bucket             string    `json:"bucket"`
}

// SLASummaryResponse counts tickets per bucket.
type SLASummaryResponse struct {
	Total           int `json:"total"`
	Breached        int `json:"breached"`
	AtRisk          int `json:"at_risk"`
	OnTrack         int `json:"on_track"`
	BreachedPercent int `json:"breached_percent"`
}

// SLAReportResponse is returned by GET /api/admin/reports/sla.
type SLAReportResponse struct {
	GeneratedAt     time.Time           `json:"generated_at"`
	Summary         SLASummaryResponse  `json:"summary"`
	BreachedTickets []SLATicketResponse `json:"breached_tickets"`
	AtRiskTickets   []SLATicketResponse `json:"at_risk_tickets"`
	OnTrackTickets  []SLATicketResponse `json:"on_track_tickets"`
	AllTickets      []SLATicketResponse `json:"all_tickets"`
}
