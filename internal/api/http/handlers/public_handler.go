package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/itops-lab/helpdesk/internal/api/dto"
	"github.com/itops-lab/helpdesk/internal/domain"
	"github.com/itops-lab/helpdesk/internal/events"
	"github.com/itops-lab/helpdesk/internal/repository"
	"github.com/itops-lab/helpdesk/internal/service"
)

// PublicHandler serves the reporter-facing endpoints. Reporters have no
// session; ownership is proven with the employee code on every call.
type PublicHandler struct {
	tickets    *service.TicketService
	masterData *service.MasterDataService
	articles   *service.ArticleService
}

// PublicDependencies bundles services.
type PublicDependencies struct {
	Tickets    *service.TicketService
	MasterData *service.MasterDataService
	Articles   *service.ArticleService
}

// NewPublicHandler constructs handler.
func NewPublicHandler(deps PublicDependencies) *PublicHandler {
	return &PublicHandler{tickets: deps.Tickets, masterData: deps.MasterData, articles: deps.Articles}
}

// MasterData GET /api/public/master-data.
func (h *PublicHandler) MasterData(c *fiber.Ctx) error {
	data, err := h.masterData.Public(c.UserContext())
	if err != nil {
		return err
	}
	resp := dto.PublicMasterDataResponse{
		Categories: make([]dto.CategoryResponse, 0, len(data.Categories)),
		Priorities: make([]dto.PriorityResponse, 0, len(data.Priorities)),
		Systems:    make([]dto.SystemResponse, 0, len(data.Systems)),
		OrgUnits:   orgUnitNodes(data.OrgUnits),
	}
	for _, cat := range data.Categories {
		resp.Categories = append(resp.Categories, categoryResponse(cat))
	}
	for _, p := range data.Priorities {
		resp.Priorities = append(resp.Priorities, priorityResponse(p))
	}
	for _, s := range data.Systems {
		resp.Systems = append(resp.Systems, systemResponse(s))
	}
	return ok(c, resp)
}

// CreateTicket POST /api/public/tickets.
func (h *PublicHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	actor := events.Actor{Type: domain.SubjectTypeReporter, Name: req.ReporterName}
	input := createInput(req)
	input.TeamID = nil

	ticket, err := h.tickets.CreateTicket(c.UserContext(), actor, input)
	if err != nil {
		return err
	}
	resp := dto.TicketCreatedResponse{
		ID:                 ticket.ID,
		Code:               ticket.Code,
		EmployeeCodeMasked: ticket.EmployeeCodeMasked,
		TeamID:             ticket.TeamID,
		Status:             string(ticket.Status),
	}
	if ticket.TeamName != "" {
		name := ticket.TeamName
		resp.TeamName = &name
	}
	return created(c, resp)
}

// TrackTicket POST /api/public/tickets/track.
func (h *PublicHandler) TrackTicket(c *fiber.Ctx) error {
	var req dto.TrackTicketRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	view, err := h.tickets.TrackTicket(c.UserContext(), req.TicketCode, req.EmployeeCode)
	if err != nil {
		return err
	}
	return ok(c, ticketDetail(view, false))
}

// AddComment POST /api/public/tickets/:code/comments.
func (h *PublicHandler) AddComment(c *fiber.Ctx) error {
	var req dto.ReporterCommentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	comment, err := h.tickets.AddReporterComment(c.UserContext(), c.Params("code"), req.EmployeeCode, req.AuthorName, req.Body)
	if err != nil {
		return err
	}
	return created(c, commentResponse(comment))
}

// SubmitSurvey POST /api/public/tickets/:code/survey.
func (h *PublicHandler) SubmitSurvey(c *fiber.Ctx) error {
	var req dto.SurveyRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	survey, err := h.tickets.SubmitSurvey(c.UserContext(), c.Params("code"), req.EmployeeCode, req.Rating, req.Comment)
	if err != nil {
		return err
	}
	return created(c, surveyResponse(survey))
}

// ListArticles GET /api/public/articles.
func (h *PublicHandler) ListArticles(c *fiber.Ctx) error {
	page, size := paging(c)
	categoryID, err := uuidQuery(c, "category_id")
	if err != nil {
		return err
	}
	articles, err := h.articles.ListPublished(c.UserContext(), repository.ArticleFilter{
		CategoryID: categoryID,
		SearchTerm: optionalQuery(c, "search"),
		Limit:      size,
		Offset:     (page - 1) * size,
	})
	if err != nil {
		return err
	}
	items := make([]dto.ArticleSummary, 0, len(articles))
	for i := range articles {
		items = append(items, articleSummary(&articles[i]))
	}
	return ok(c, items)
}

// ReadArticle GET /api/public/articles/:slug.
func (h *PublicHandler) ReadArticle(c *fiber.Ctx) error {
	article, err := h.articles.ReadPublished(c.UserContext(), c.Params("slug"))
	if err != nil {
		return err
	}
	return ok(c, articleResponse(article, false))
}

func createInput(req dto.CreateTicketRequest) service.TicketCreateInput {
	return service.TicketCreateInput{
		Title:         req.Title,
		Description:   req.Description,
		ReporterName:  req.ReporterName,
		ReporterEmail: req.ReporterEmail,
		ReporterPhone: req.ReporterPhone,
		EmployeeCode:  req.EmployeeCode,
		OrgUnitID:     req.OrgUnitID,
		SystemID:      req.SystemID,
		CategoryID:    req.CategoryID,
		PriorityID:    req.PriorityID,
		TeamID:        req.TeamID,
	}
}
