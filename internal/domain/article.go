package domain

import "time"

// KnowledgeArticle is a self-help article. BodyHTML is rendered from
// BodyMarkdown on every write.
type KnowledgeArticle struct {
	ID           string
	Slug         string
	Title        string
	Summary      string
	BodyMarkdown string
	BodyHTML     string
	CategoryID   *string
	IsPublished  bool
	ViewCount    int64
	AuthorID     *string
	PublishedAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
