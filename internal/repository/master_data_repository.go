package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/itops-lab/helpdesk/internal/domain"
)

// CategoryRepository persists ticket categories.
type CategoryRepository interface {
	Create(ctx context.Context, c *domain.Category) error
	Update(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Category, error)
}

// PriorityRepository persists priorities and their SLA thresholds.
type PriorityRepository interface {
	Create(ctx context.Context, p *domain.Priority) error
	Update(ctx context.Context, p *domain.Priority) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Priority, error)
	List(ctx context.Context, activeOnly bool) ([]domain.Priority, error)
}

// SystemRepository persists reportable IT systems.
type SystemRepository interface {
	Create(ctx context.Context, s *domain.System) error
	Update(ctx context.Context, s *domain.System) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.System, error)
	List(ctx context.Context, activeOnly bool) ([]domain.System, error)
}

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository constructs repository.
func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{pool: pool}
}

func (r *categoryRepository) Create(ctx context.Context, c *domain.Category) error {
	const query = `
        INSERT INTO categories (name, description, sort_order, is_active)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, c.Name, c.Description, c.SortOrder, c.IsActive).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

func (r *categoryRepository) Update(ctx context.Context, c *domain.Category) error {
	const query = `
        UPDATE categories SET name=$1, description=$2, sort_order=$3, is_active=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query, c.Name, c.Description, c.SortOrder, c.IsActive, c.ID).Scan(&c.UpdatedAt)
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.pool, `DELETE FROM categories WHERE id=$1`, id)
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	const query = `
        SELECT id, name, description, sort_order, is_active, created_at, updated_at
        FROM categories WHERE id=$1`
	var c domain.Category
	if err := r.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.Description, &c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepository) List(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	const query = `
        SELECT id, name, description, sort_order, is_active, created_at, updated_at
        FROM categories WHERE ($1 = FALSE OR is_active = TRUE)
        ORDER BY sort_order, name`
	rows, err := r.pool.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

type priorityRepository struct {
	pool *pgxpool.Pool
}

// NewPriorityRepository constructs repository.
func NewPriorityRepository(pool *pgxpool.Pool) PriorityRepository {
	return &priorityRepository{pool: pool}
}

func (r *priorityRepository) Create(ctx context.Context, p *domain.Priority) error {
	const query = `
        INSERT INTO priorities (name, severity, color, sla_first_response_mins, sla_resolve_mins, is_active)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		p.Name,
		p.Severity,
		p.Color,
		p.SLAFirstResponseMins,
		p.SLAResolveMins,
		p.IsActive,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *priorityRepository) Update(ctx context.Context, p *domain.Priority) error {
	const query = `
        UPDATE priorities SET name=$1, severity=$2, color=$3, sla_first_response_mins=$4,
            sla_resolve_mins=$5, is_active=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		p.Name,
		p.Severity,
		p.Color,
		p.SLAFirstResponseMins,
		p.SLAResolveMins,
		p.IsActive,
		p.ID,
	).Scan(&p.UpdatedAt)
}

func (r *priorityRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.pool, `DELETE FROM priorities WHERE id=$1`, id)
}

func (r *priorityRepository) GetByID(ctx context.Context, id string) (*domain.Priority, error) {
	const query = `
        SELECT id, name, severity, color, sla_first_response_mins, sla_resolve_mins, is_active, created_at, updated_at
        FROM priorities WHERE id=$1`
	return scanPriority(r.pool.QueryRow(ctx, query, id))
}

func (r *priorityRepository) List(ctx context.Context, activeOnly bool) ([]domain.Priority, error) {
	const query = `
        SELECT id, name, severity, color, sla_first_response_mins, sla_resolve_mins, is_active, created_at, updated_at
        FROM priorities WHERE ($1 = FALSE OR is_active = TRUE)
        ORDER BY severity DESC, name`
	rows, err := r.pool.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Priority{}
	for rows.Next() {
		p, err := scanPriority(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	return result, rows.Err()
}

func scanPriority(row scanner) (*domain.Priority, error) {
	var p domain.Priority
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Severity,
		&p.Color,
		&p.SLAFirstResponseMins,
		&p.SLAResolveMins,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

type systemRepository struct {
	pool *pgxpool.Pool
}

// NewSystemRepository constructs repository.
func NewSystemRepository(pool *pgxpool.Pool) SystemRepository {
	return &systemRepository{pool: pool}
}

func (r *systemRepository) Create(ctx context.Context, s *domain.System) error {
	const query = `
        INSERT INTO systems (name, description, is_active)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, s.Name, s.Description, s.IsActive).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *systemRepository) Update(ctx context.Context, s *domain.System) error {
	const query = `
        UPDATE systems SET name=$1, description=$2, is_active=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query, s.Name, s.Description, s.IsActive, s.ID).Scan(&s.UpdatedAt)
}

func (r *systemRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.pool, `DELETE FROM systems WHERE id=$1`, id)
}

func (r *systemRepository) GetByID(ctx context.Context, id string) (*domain.System, error) {
	const query = `
        SELECT id, name, description, is_active, created_at, updated_at
        FROM systems WHERE id=$1`
	var s domain.System
	if err := r.pool.QueryRow(ctx, query, id).Scan(&s.ID, &s.Name, &s.Description, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *systemRepository) List(ctx context.Context, activeOnly bool) ([]domain.System, error) {
	const query = `
        SELECT id, name, description, is_active, created_at, updated_at
        FROM systems WHERE ($1 = FALSE OR is_active = TRUE) ORDER BY name`
	rows, err := r.pool.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.System{}
	for rows.Next() {
		var s domain.System
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
