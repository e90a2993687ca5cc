package dto

import (
	"time"

	"github.com/itops-lab/helpdesk/internal/domain"
)

// CategoryRequest payload.
type CategoryRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=500"`
	SortOrder   int    `json:"sort_order"`
	IsActive    *bool  `json:"is_active"`
}

// CategoryResponse payload.
type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	SortOrder   int    `json:"sort_order"`
	IsActive    bool   `json:"is_active"`
}

// PriorityRequest payload. SLA minutes are optional.
type PriorityRequest struct {
	Name                 string `json:"name" validate:"required,max=60"`
	Severity             int    `json:"severity" validate:"gte=0"`
	Color                string `json:"color" validate:"omitempty,hexcolor"`
	SLAFirstResponseMins *int   `json:"sla_first_response_minutes"`
	SLAResolveMins       *int   `json:"sla_resolve_minutes"`
	IsActive             *bool  `json:"is_active"`
}

// PriorityResponse payload.
type PriorityResponse struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	Severity             int    `json:"severity"`
	Color                string `json:"color"`
	SLAFirstResponseMins *int   `json:"sla_first_response_minutes"`
	SLAResolveMins       *int   `json:"sla_resolve_minutes"`
	IsActive             bool   `json:"is_active"`
}

// SystemRequest payload.
type SystemRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=500"`
	IsActive    *bool  `json:"is_active"`
}

// SystemResponse payload.
type SystemResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

// TeamRequest payload.
type TeamRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=500"`
	IsActive    *bool  `json:"is_active"`
}

// TeamResponse payload.
type TeamResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

// OrgUnitRequest payload.
type OrgUnitRequest struct {
	Name     string  `json:"name" validate:"required,max=160"`
	Code     string  `json:"code" validate:"max=40"`
	ParentID *string `json:"parent_id" validate:"omitempty,uuid"`
	IsActive *bool   `json:"is_active"`
}

// OrgUnitNodeResponse is a unit with its children.
type OrgUnitNodeResponse struct {
	ID       string                `json:"id"`
	Name     string                `json:"name"`
	Code     string                `json:"code"`
	ParentID *string               `json:"parent_id"`
	IsActive bool                  `json:"is_active"`
	Children []OrgUnitNodeResponse `json:"children"`
}

// OrgUnitDeleteResponse lists every unit removed with the subtree.
type OrgUnitDeleteResponse struct {
	DeletedIDs []string `json:"deleted_ids"`
}

// PublicMasterDataResponse feeds the reporter form.
type PublicMasterDataResponse struct {
	Categories []CategoryResponse    `json:"categories"`
	Priorities []PriorityResponse    `json:"priorities"`
	Systems    []SystemResponse      `json:"systems"`
	OrgUnits   []OrgUnitNodeResponse `json:"org_units"`
}

// AssignmentRuleRequest payload. Leave both system_id and category_id empty
// for the default rule.
type AssignmentRuleRequest struct {
	Priority   int     `json:"priority"`
	IsActive   *bool   `json:"is_active"`
	SystemID   *string `json:"system_id" validate:"omitempty,uuid"`
	CategoryID *string `json:"category_id" validate:"omitempty,uuid"`
	TeamID     string  `json:"team_id" validate:"required,uuid"`
}

// AssignmentRuleResponse payload.
type AssignmentRuleResponse struct {
	ID         string    `json:"id"`
	Priority   int       `json:"priority"`
	IsActive   bool      `json:"is_active"`
	IsDefault  bool      `json:"is_default"`
	SystemID   *string   `json:"system_id"`
	CategoryID *string   `json:"category_id"`
	TeamID     string    `json:"team_id"`
	TeamName   string    `json:"team_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// ResolvePreviewResponse shows which team a new ticket would get.
type ResolvePreviewResponse struct {
	TeamID   *string `json:"team_id"`
	TeamName *string `json:"team_name"`
}

// CountBucketResponse is one grouped count.
type CountBucketResponse struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// SummaryResponse is the overview dashboard.
type SummaryResponse struct {
	Total         int                   `json:"total"`
	ByStatus      []CountBucketResponse `json:"by_status"`
	ByCategory    []CountBucketResponse `json:"by_category"`
	ByPriority    []CountBucketResponse `json:"by_priority"`
	ByTeam        []CountBucketResponse `json:"by_team"`
	SurveyAverage float64               `json:"survey_average"`
	SurveyCount   int                   `json:"survey_count"`
}

// CountBuckets maps grouped counts.
func CountBuckets(in []domain.CountBucket) []CountBucketResponse {
	out := make([]CountBucketResponse, 0, len(in))
	for _, b := range in {
		out = append(out, CountBucketResponse{Key: b.Key, Label: b.Label, Count: b.Count})
	}
	return out
}
