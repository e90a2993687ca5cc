package dto

import (
	"time"

	"github.com/itops-lab/helpdesk/internal/domain"
)

// ArticleRequest payload. An empty slug is generated from the title.
type ArticleRequest struct {
	Title        string  `json:"title" validate:"required,max=200"`
	Slug         string  `json:"slug" validate:"max=200"`
	Summary      string  `json:"summary" validate:"max=500"`
	BodyMarkdown string  `json:"body_markdown" validate:"required"`
	CategoryID   *string `json:"category_id" validate:"omitempty,uuid"`
	IsPublished  bool    `json:"is_published"`
}

// ArticleSummary is a list row.
type ArticleSummary struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary"`
	CategoryID  *string    `json:"category_id"`
	IsPublished bool       `json:"is_published"`
	ViewCount   int64      `json:"view_count"`
	PublishedAt *time.Time `json:"published_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ArticleResponse includes the rendered body. BodyMarkdown is only sent to
// staff.
type ArticleResponse struct {
	ArticleSummary
	BodyMarkdown string `json:"body_markdown,omitempty"`
	BodyHTML     string `json:"body_html"`
}

// ChannelRequest payload.
type ChannelRequest struct {
	Name     string             `json:"name" validate:"required,max=120"`
	Type     domain.ChannelType `json:"type" validate:"required,oneof=EMAIL LINE DISCORD"`
	Target   string             `json:"target" validate:"required,max=500"`
	Events   []string           `json:"events"`
	IsActive *bool              `json:"is_active"`
}

// ChannelResponse payload.
type ChannelResponse struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Type      domain.ChannelType `json:"type"`
	Target    string             `json:"target"`
	Events    []string           `json:"events"`
	IsActive  bool               `json:"is_active"`
	CreatedAt time.Time          `json:"created_at"`
}
