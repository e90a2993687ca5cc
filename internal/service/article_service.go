package service

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/itops-lab/helpdesk/internal/domain"
	"github.com/itops-lab/helpdesk/internal/markdown"
	"github.com/itops-lab/helpdesk/internal/repository"
	apperrors "github.com/itops-lab/helpdesk/pkg/util/errorutil"
)

// ArticleService manages the knowledge base.
type ArticleService struct {
	articles repository.ArticleRepository
	renderer markdown.Renderer
	logger   *zap.Logger
	now      func() time.Time
}

// ArticleDependencies bundles collaborators.
type ArticleDependencies struct {
	ArticleRepo repository.ArticleRepository
	Renderer    markdown.Renderer
	Logger      *zap.Logger
}

// ArticleInput carries writable article fields. An empty Slug is derived
// from the title.
type ArticleInput struct {
	Title        string
	Slug         string
	Summary      string
	BodyMarkdown string
	CategoryID   *string
	IsPublished  bool
}

// NewArticleService constructs the service.
func NewArticleService(deps ArticleDependencies) *ArticleService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	renderer := deps.Renderer
	if renderer == nil {
		renderer = markdown.NewRenderer()
	}
	return &ArticleService{
		articles: deps.ArticleRepo,
		renderer: renderer,
		logger:   logger,
		now:      time.Now,
	}
}

// List returns articles for staff, drafts included.
func (s *ArticleService) List(ctx context.Context, filter repository.ArticleFilter) ([]domain.KnowledgeArticle, error) {
	out, err := s.articles.List(ctx, filter)
	return out, apperrors.MapError(err)
}

// Get loads one article by id.
func (s *ArticleService) Get(ctx context.Context, id string) (*domain.KnowledgeArticle, error) {
	a, err := s.articles.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "article", map[string]any{"id": id})
	}
	return a, nil
}

// ListPublished returns the articles visible to reporters.
func (s *ArticleService) ListPublished(ctx context.Context, filter repository.ArticleFilter) ([]domain.KnowledgeArticle, error) {
	filter.PublishedOnly = true
	return s.List(ctx, filter)
}

// ReadPublished returns a published article by slug and counts the view.
// Drafts are reported as missing.
func (s *ArticleService) ReadPublished(ctx context.Context, slug string) (*domain.KnowledgeArticle, error) {
	a, err := s.articles.GetBySlug(ctx, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		return nil, apperrors.NotFoundOr(err, "article", map[string]any{"slug": slug})
	}
	if !a.IsPublished {
		return nil, apperrors.NewNotFound("article", map[string]any{"slug": slug})
	}
	if err := s.articles.IncrementViews(ctx, a.ID); err != nil {
		s.logger.Warn("article view not counted", zap.String("article_id", a.ID), zap.Error(err))
	} else {
		a.ViewCount++
	}
	return a, nil
}

// Create stores a new article authored by staff.
func (s *ArticleService) Create(ctx context.Context, staff *domain.AdminUser, input ArticleInput) (*domain.KnowledgeArticle, error) {
	a := &domain.KnowledgeArticle{}
	if staff != nil {
		id := staff.ID
		a.AuthorID = &id
	}
	if err := s.apply(a, input); err != nil {
		return nil, err
	}
	if err := s.articles.Create(ctx, a); err != nil {
		return nil, mapWriteError(err, "article")
	}
	return a, nil
}

// Update rewrites an article. PublishedAt is kept from the first publish.
func (s *ArticleService) Update(ctx context.Context, id string, input ArticleInput) (*domain.KnowledgeArticle, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(a, input); err != nil {
		return nil, err
	}
	if err := s.articles.Update(ctx, a); err != nil {
		return nil, mapWriteError(err, "article")
	}
	return a, nil
}

// Delete removes an article.
func (s *ArticleService) Delete(ctx context.Context, id string) error {
	return mapWriteError(s.articles.Delete(ctx, id), "article")
}

func (s *ArticleService) apply(a *domain.KnowledgeArticle, input ArticleInput) error {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return apperrors.NewValidationError("title is required", map[string]any{"title": "is required"})
	}
	body := strings.TrimSpace(input.BodyMarkdown)
	if body == "" {
		return apperrors.NewValidationError("body is required", map[string]any{"body_markdown": "is required"})
	}

	slug := Slugify(input.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		slug = "article-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}

	html, err := s.renderer.Render(body)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	a.Title = title
	a.Slug = slug
	a.Summary = strings.TrimSpace(input.Summary)
	a.BodyMarkdown = body
	a.BodyHTML = html
	a.CategoryID = blankToNil(input.CategoryID)
	a.IsPublished = input.IsPublished
	if a.IsPublished && a.PublishedAt == nil {
		now := s.now().UTC()
		a.PublishedAt = &now
	}
	return nil
}

// Slugify lowercases s and joins its letter and digit runs with hyphens.
// Non-Latin letters are kept.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
