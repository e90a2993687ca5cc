package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/itops-lab/helpdesk/internal/domain"
)

// CommentRepository stores ticket thread messages.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.TicketComment) error
	ListByTicket(ctx context.Context, ticketID string, includeInternal bool) ([]domain.TicketComment, error)
}

// HistoryRepository stores the ticket audit trail.
type HistoryRepository interface {
	Create(ctx context.Context, history *domain.TicketHistory) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error)
}

// SurveyRepository stores satisfaction ratings, at most one per ticket.
type SurveyRepository interface {
	Create(ctx context.Context, survey *domain.TicketSurvey) error
	GetByTicket(ctx context.Context, ticketID string) (*domain.TicketSurvey, error)
	Average(ctx context.Context) (avg float64, count int, err error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository constructs the comment repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.TicketComment) error {
	const query = `
        INSERT INTO ticket_comments (ticket_id, author_type, author_id, author_name, body, is_internal)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		comment.TicketID,
		comment.AuthorType,
		comment.AuthorID,
		comment.AuthorName,
		comment.Body,
		comment.IsInternal,
	).Scan(&comment.ID, &comment.CreatedAt)
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID string, includeInternal bool) ([]domain.TicketComment, error) {
	const query = `
        SELECT id, ticket_id, author_type, author_id, author_name, body, is_internal, created_at
        FROM ticket_comments
        WHERE ticket_id=$1 AND ($2 OR is_internal = FALSE)
        ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID, includeInternal)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.TicketComment{}
	for rows.Next() {
		var c domain.TicketComment
		if err := rows.Scan(&c.ID, &c.TicketID, &c.AuthorType, &c.AuthorID, &c.AuthorName, &c.Body, &c.IsInternal, &c.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

type historyRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository builds repository.
func NewHistoryRepository(pool *pgxpool.Pool) HistoryRepository {
	return &historyRepository{pool: pool}
}

func (r *historyRepository) Create(ctx context.Context, h *domain.TicketHistory) error {
	const query = `
        INSERT INTO ticket_history (ticket_id, changed_by_type, changed_by_id, change_type, old_value, new_value)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		h.TicketID,
		h.ChangedByType,
		h.ChangedByID,
		h.ChangeType,
		h.OldValue,
		h.NewValue,
	).Scan(&h.ID, &h.CreatedAt)
}

func (r *historyRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.TicketHistory, error) {
	const query = `
        SELECT id, ticket_id, changed_by_type, changed_by_id, change_type, old_value, new_value, created_at
        FROM ticket_history WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.TicketHistory{}
	for rows.Next() {
		var h domain.TicketHistory
		if err := rows.Scan(&h.ID, &h.TicketID, &h.ChangedByType, &h.ChangedByID, &h.ChangeType, &h.OldValue, &h.NewValue, &h.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	return result, rows.Err()
}

type surveyRepository struct {
	pool *pgxpool.Pool
}

// NewSurveyRepository builds repository.
func NewSurveyRepository(pool *pgxpool.Pool) SurveyRepository {
	return &surveyRepository{pool: pool}
}

func (r *surveyRepository) Create(ctx context.Context, s *domain.TicketSurvey) error {
	const query = `
        INSERT INTO ticket_surveys (ticket_id, rating, comment)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, s.TicketID, s.Rating, s.Comment).Scan(&s.ID, &s.CreatedAt)
}

func (r *surveyRepository) GetByTicket(ctx context.Context, ticketID string) (*domain.TicketSurvey, error) {
	const query = `
        SELECT id, ticket_id, rating, comment, created_at
        FROM ticket_surveys WHERE ticket_id=$1`
	var s domain.TicketSurvey
	if err := r.pool.QueryRow(ctx, query, ticketID).Scan(&s.ID, &s.TicketID, &s.Rating, &s.Comment, &s.CreatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *surveyRepository) Average(ctx context.Context) (float64, int, error) {
	const query = `SELECT COALESCE(AVG(rating), 0)::float8, COUNT(*) FROM ticket_surveys`
	var (
		avg   float64
		count int
	)
	if err := r.pool.QueryRow(ctx, query).Scan(&avg, &count); err != nil {
		return 0, 0, err
	}
	return avg, count, nil
}
