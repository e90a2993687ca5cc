package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/itops-lab/helpdesk/internal/api/dto"
	"github.com/itops-lab/helpdesk/internal/repository"
	"github.com/itops-lab/helpdesk/internal/service"
)

// ContentHandler manages knowledge base articles and notification channels.
type ContentHandler struct {
	articles      *service.ArticleService
	notifications *service.NotificationService
}

// NewContentHandler constructs handler.
func NewContentHandler(articles *service.ArticleService, notifications *service.NotificationService) *ContentHandler {
	return &ContentHandler{articles: articles, notifications: notifications}
}

// ListArticles GET /api/admin/articles.
func (h *ContentHandler) ListArticles(c *fiber.Ctx) error {
	page, size := paging(c)
	categoryID, err := uuidQuery(c, "category_id")
	if err != nil {
		return err
	}
	articles, err := h.articles.List(c.UserContext(), repository.ArticleFilter{
		PublishedOnly: c.QueryBool("published_only"),
		CategoryID:    categoryID,
		SearchTerm:    optionalQuery(c, "search"),
		Limit:         size,
		Offset:        (page - 1) * size,
	})
	if err != nil {
		return err
	}
	out := make([]dto.ArticleSummary, 0, len(articles))
	for i := range articles {
		out = append(out, articleSummary(&articles[i]))
	}
	return ok(c, out)
}

// GetArticle GET /api/admin/articles/:id.
func (h *ContentHandler) GetArticle(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	article, err := h.articles.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return ok(c, articleResponse(article, true))
}

// CreateArticle POST /api/admin/articles.
func (h *ContentHandler) CreateArticle(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ArticleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	article, err := h.articles.Create(c.UserContext(), staff, articleInput(req))
	if err != nil {
		return err
	}
	return created(c, articleResponse(article, true))
}

// UpdateArticle PUT /api/admin/articles/:id.
func (h *ContentHandler) UpdateArticle(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.ArticleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	article, err := h.articles.Update(c.UserContext(), id, articleInput(req))
	if err != nil {
		return err
	}
	return ok(c, articleResponse(article, true))
}

// DeleteArticle DELETE /api/admin/articles/:id.
func (h *ContentHandler) DeleteArticle(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.articles.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListChannels GET /api/admin/notification-channels.
func (h *ContentHandler) ListChannels(c *fiber.Ctx) error {
	channels, err := h.notifications.ListChannels(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.ChannelResponse, 0, len(channels))
	for i := range channels {
		out = append(out, channelResponse(&channels[i]))
	}
	return ok(c, out)
}

// CreateChannel POST /api/admin/notification-channels.
func (h *ContentHandler) CreateChannel(c *fiber.Ctx) error {
	var req dto.ChannelRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ch, err := h.notifications.CreateChannel(c.UserContext(), channelInput(req))
	if err != nil {
		return err
	}
	return created(c, channelResponse(ch))
}

// UpdateChannel PUT /api/admin/notification-channels/:id.
func (h *ContentHandler) UpdateChannel(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req dto.ChannelRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ch, err := h.notifications.UpdateChannel(c.UserContext(), id, channelInput(req))
	if err != nil {
		return err
	}
	return ok(c, channelResponse(ch))
}

// DeleteChannel DELETE /api/admin/notification-channels/:id.
func (h *ContentHandler) DeleteChannel(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.notifications.DeleteChannel(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func articleInput(req dto.ArticleRequest) service.ArticleInput {
	return service.ArticleInput{
		Title:        req.Title,
		Slug:         req.Slug,
		Summary:      req.Summary,
		BodyMarkdown: req.BodyMarkdown,
		CategoryID:   req.CategoryID,
		IsPublished:  req.IsPublished,
	}
}

func channelInput(req dto.ChannelRequest) service.ChannelInput {
	return service.ChannelInput{
		Name:     req.Name,
		Type:     req.Type,
		Target:   req.Target,
		Events:   req.Events,
		IsActive: boolOr(req.IsActive, true),
	}
}
