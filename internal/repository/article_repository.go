package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/itops-lab/helpdesk/internal/domain"
)

// ArticleFilter narrows knowledge base listings.
type ArticleFilter struct {
	PublishedOnly bool
	CategoryID    *string
	SearchTerm    *string
	Limit         int
	Offset        int
}

// ArticleRepository persists knowledge base articles.
type ArticleRepository interface {
	Create(ctx context.Context, a *domain.KnowledgeArticle) error
	Update(ctx context.Context, a *domain.KnowledgeArticle) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.KnowledgeArticle, error)
	GetBySlug(ctx context.Context, slug string) (*domain.KnowledgeArticle, error)
	List(ctx context.Context, filter ArticleFilter) ([]domain.KnowledgeArticle, error)
	IncrementViews(ctx context.Context, id string) error
}

const articleSelect = `
        SELECT id, slug, title, summary, body_markdown, body_html, category_id, is_published,
               view_count, author_id, published_at, created_at, updated_at
        FROM kb_articles`

type articleRepository struct {
	pool *pgxpool.Pool
}

// NewArticleRepository constructs repository.
func NewArticleRepository(pool *pgxpool.Pool) ArticleRepository {
	return &articleRepository{pool: pool}
}

func (r *articleRepository) Create(ctx context.Context, a *domain.KnowledgeArticle) error {
	const query = `
        INSERT INTO kb_articles (slug, title, summary, body_markdown, body_html, category_id, is_published, author_id, published_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		a.Slug,
		a.Title,
		a.Summary,
		a.BodyMarkdown,
		a.BodyHTML,
		a.CategoryID,
		a.IsPublished,
		a.AuthorID,
		a.PublishedAt,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

func (r *articleRepository) Update(ctx context.Context, a *domain.KnowledgeArticle) error {
	const query = `
        UPDATE kb_articles SET slug=$1, title=$2, summary=$3, body_markdown=$4, body_html=$5,
            category_id=$6, is_published=$7, published_at=$8, updated_at=NOW()
        WHERE id=$9
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		a.Slug,
		a.Title,
		a.Summary,
		a.BodyMarkdown,
		a.BodyHTML,
		a.CategoryID,
		a.IsPublished,
		a.PublishedAt,
		a.ID,
	).Scan(&a.UpdatedAt)
}

func (r *articleRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.pool, `DELETE FROM kb_articles WHERE id=$1`, id)
}

func (r *articleRepository) GetByID(ctx context.Context, id string) (*domain.KnowledgeArticle, error) {
	return scanArticle(r.pool.QueryRow(ctx, articleSelect+` WHERE id=$1`, id))
}

func (r *articleRepository) GetBySlug(ctx context.Context, slug string) (*domain.KnowledgeArticle, error) {
	return scanArticle(r.pool.QueryRow(ctx, articleSelect+` WHERE slug=$1`, slug))
}

func (r *articleRepository) List(ctx context.Context, filter ArticleFilter) ([]domain.KnowledgeArticle, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.PublishedOnly {
		clauses = append(clauses, "is_published = TRUE")
	}
	if filter.CategoryID != nil && *filter.CategoryID != "" {
		args = append(args, *filter.CategoryID)
		clauses = append(clauses, fmt.Sprintf("category_id=$%d", len(args)))
	}
	if filter.SearchTerm != nil && strings.TrimSpace(*filter.SearchTerm) != "" {
		args = append(args, "%"+strings.ToLower(strings.TrimSpace(*filter.SearchTerm))+"%")
		p := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf("(LOWER(title) LIKE %s OR LOWER(summary) LIKE %s OR LOWER(body_markdown) LIKE %s)", p, p, p))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf("%s WHERE %s ORDER BY COALESCE(published_at, created_at) DESC LIMIT %d OFFSET %d",
		articleSelect, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.KnowledgeArticle{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

func (r *articleRepository) IncrementViews(ctx context.Context, id string) error {
	return execOne(ctx, r.pool, `UPDATE kb_articles SET view_count = view_count + 1 WHERE id=$1`, id)
}

func scanArticle(row scanner) (*domain.KnowledgeArticle, error) {
	var a domain.KnowledgeArticle
	if err := row.Scan(
		&a.ID,
		&a.Slug,
		&a.Title,
		&a.Summary,
		&a.BodyMarkdown,
		&a.BodyHTML,
		&a.CategoryID,
		&a.IsPublished,
		&a.ViewCount,
		&a.AuthorID,
		&a.PublishedAt,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}
