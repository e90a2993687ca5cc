package handlers

import (
	"github.com/itops-lab/helpdesk/internal/api/dto"
	"github.com/itops-lab/helpdesk/internal/domain"
	"github.com/itops-lab/helpdesk/internal/service"
	"github.com/itops-lab/helpdesk/internal/sla"
)

func ticketSummary(t *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:                 t.ID,
		Code:               t.Code,
		Title:              t.Title,
		Status:             t.Status,
		ReporterName:       t.ReporterName,
		EmployeeCodeMasked: t.EmployeeCodeMasked,
		OrgUnitName:        t.OrgUnitName,
		SystemName:         t.SystemName,
		CategoryName:       t.CategoryName,
		PriorityName:       t.PriorityName,
		TeamName:           t.TeamName,
		AssigneeName:       t.AssigneeName,
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.UpdatedAt,
	}
}

// ticketDetail maps a view. Reporter-facing responses omit contact details
// and history.
func ticketDetail(view *service.TicketView, forStaff bool) dto.TicketDetailResponse {
	t := view.Ticket
	resp := dto.TicketDetailResponse{
		TicketSummary:    ticketSummary(t),
		Description:      t.Description,
		OrgUnitID:        t.OrgUnitID,
		SystemID:         t.SystemID,
		CategoryID:       t.CategoryID,
		PriorityID:       t.PriorityID,
		TeamID:           t.TeamID,
		AssigneeID:       t.AssigneeID,
		FirstRespondedAt: t.FirstRespondedAt,
		ResolvedAt:       t.ResolvedAt,
		ClosedAt:         t.ClosedAt,
		Comments:         make([]dto.CommentResponse, 0, len(view.Comments)),
	}
	for i := range view.Comments {
		resp.Comments = append(resp.Comments, commentResponse(&view.Comments[i]))
	}
	if view.Survey != nil {
		resp.Survey = surveyResponse(view.Survey)
	}
	if forStaff {
		resp.ReporterEmail = t.ReporterEmail
		resp.ReporterPhone = t.ReporterPhone
		resp.CanReveal = t.EmployeeCodeEnc != nil
		resp.History = make([]dto.TicketHistoryResponse, 0, len(view.History))
		for _, h := range view.History {
			resp.History = append(resp.History, dto.TicketHistoryResponse{
				ID:            h.ID,
				ChangedByType: h.ChangedByType,
				ChangedByID:   h.ChangedByID,
				ChangeType:    h.ChangeType,
				OldValue:      h.OldValue,
				NewValue:      h.NewValue,
				CreatedAt:     h.CreatedAt,
			})
		}
	}
	return resp
}

func commentResponse(c *domain.TicketComment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:         c.ID,
		AuthorType: c.AuthorType,
		AuthorName: c.AuthorName,
		Body:       c.Body,
		IsInternal: c.IsInternal,
		CreatedAt:  c.CreatedAt,
	}
}

func surveyResponse(s *domain.TicketSurvey) *dto.SurveyResponse {
	return &dto.SurveyResponse{Rating: s.Rating, Comment: s.Comment, CreatedAt: s.CreatedAt}
}

func adminUserResponse(u *domain.AdminUser) dto.AdminUserResponse {
	return dto.AdminUserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		TeamID:    u.TeamID,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func categoryResponse(c domain.Category) dto.CategoryResponse {
	return dto.CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		SortOrder:   c.SortOrder,
		IsActive:    c.IsActive,
	}
}

func priorityResponse(p domain.Priority) dto.PriorityResponse {
	return dto.PriorityResponse{
		ID:                   p.ID,
		Name:                 p.Name,
		Severity:             p.Severity,
		Color:                p.Color,
		SLAFirstResponseMins: p.SLAFirstResponseMins,
		SLAResolveMins:       p.SLAResolveMins,
		IsActive:             p.IsActive,
	}
}

func systemResponse(s domain.System) dto.SystemResponse {
	return dto.SystemResponse{ID: s.ID, Name: s.Name, Description: s.Description, IsActive: s.IsActive}
}

func teamResponse(t domain.SupportTeam) dto.TeamResponse {
	return dto.TeamResponse{ID: t.ID, Name: t.Name, Description: t.Description, IsActive: t.IsActive}
}

func orgUnitNodes(nodes []*domain.OrgUnitNode) []dto.OrgUnitNodeResponse {
	out := make([]dto.OrgUnitNodeResponse, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, dto.OrgUnitNodeResponse{
			ID:       n.ID,
			Name:     n.Name,
			Code:     n.Code,
			ParentID: n.ParentID,
			IsActive: n.IsActive,
			Children: orgUnitNodes(n.Children),
		})
	}
	return out
}

func ruleResponse(r domain.AssignmentRule) dto.AssignmentRuleResponse {
	return dto.AssignmentRuleResponse{
		ID:         r.ID,
		Priority:   r.Priority,
		IsActive:   r.IsActive,
		IsDefault:  r.IsDefault(),
		SystemID:   r.SystemID,
		CategoryID: r.CategoryID,
		TeamID:     r.TeamID,
		TeamName:   r.Team.Name,
		CreatedAt:  r.CreatedAt,
	}
}

func articleSummary(a *domain.KnowledgeArticle) dto.ArticleSummary {
	return dto.ArticleSummary{
		ID:          a.ID,
		Slug:        a.Slug,
		Title:       a.Title,
		Summary:     a.Summary,
		CategoryID:  a.CategoryID,
		IsPublished: a.IsPublished,
		ViewCount:   a.ViewCount,
		PublishedAt: a.PublishedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func articleResponse(a *domain.KnowledgeArticle, withSource bool) dto.ArticleResponse {
	resp := dto.ArticleResponse{ArticleSummary: articleSummary(a), BodyHTML: a.BodyHTML}
	if withSource {
		resp.BodyMarkdown = a.BodyMarkdown
	}
	return resp
}

func channelResponse(ch *domain.NotificationChannel) dto.ChannelResponse {
	return dto.ChannelResponse{
		ID:        ch.ID,
		Name:      ch.Name,
		Type:      ch.Type,
		Target:    ch.Target,
		Events:    ch.Events,
		IsActive:  ch.IsActive,
		CreatedAt: ch.CreatedAt,
	}
}

func slaReportResponse(r sla.Report) dto.SLAReportResponse {
	return dto.SLAReportResponse{
		GeneratedAt: r.GeneratedAt,
		Summary: dto.SLASummaryResponse{
			Total:           r.Summary.Total,
			Breached:        r.Summary.Breached,
			AtRisk:          r.Summary.AtRisk,
			OnTrack:         r.Summary.OnTrack,
			BreachedPercent: r.Summary.BreachedPercent,
		},
		BreachedTickets: slaTickets(r.BreachedTickets),
		AtRiskTickets:   slaTickets(r.AtRiskTickets),
		OnTrackTickets:  slaTickets(r.OnTrackTickets),
		AllTickets:      slaTickets(r.AllTickets),
	}
}

func slaTickets(entries []sla.Entry) []dto.SLATicketResponse {
	out := make([]dto.SLATicketResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.SLATicketResponse{
			TicketID:           e.TicketID,
			Code:               e.Code,
			Title:              e.Title,
			Status:             string(e.TicketStatus),
			PriorityName:       e.PriorityName,
			TeamName:           e.TeamName,
			AssigneeName:       e.AssigneeName,
			CreatedAt:          e.CreatedAt,
			AgeMinutes:         e.AgeMinutes,
			AgeText:            e.AgeText,
			SLAResponseMinutes: e.ResponseMinutes,
			SLAResolveMinutes:  e.ResolveMinutes,
			ResponseBreached:   e.ResponseBreached,
			ResolveBreached:    e.ResolveBreached,
			ResponsePercent:    e.ResponsePercent,
			ResolvePercent:     e.ResolvePercent,
			Bucket:             string(e.Bucket),
		})
	}
	return out
}
