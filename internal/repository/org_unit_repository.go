package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/itops-lab/helpdesk/internal/domain"
)

// OrgUnitRepository manages the organization hierarchy.
type OrgUnitRepository interface {
	Create(ctx context.Context, unit *domain.OrgUnit) error
	Update(ctx context.Context, unit *domain.OrgUnit) error
	GetByID(ctx context.Context, id string) (*domain.OrgUnit, error)
	List(ctx context.Context, activeOnly bool) ([]domain.OrgUnit, error)
	// DeleteMany removes units in the given order inside one transaction.
	DeleteMany(ctx context.Context, ids []string) error
}

type orgUnitRepository struct {
	pool *pgxpool.Pool
}

// NewOrgUnitRepository builds the repository.
func NewOrgUnitRepository(pool *pgxpool.Pool) OrgUnitRepository {
	return &orgUnitRepository{pool: pool}
}

func (r *orgUnitRepository) Create(ctx context.Context, unit *domain.OrgUnit) error {
	const query = `
        INSERT INTO org_units (name, code, parent_id, is_active)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		unit.Name,
		unit.Code,
		unit.ParentID,
		unit.IsActive,
	).Scan(&unit.ID, &unit.CreatedAt, &unit.UpdatedAt)
}

func (r *orgUnitRepository) Update(ctx context.Context, unit *domain.OrgUnit) error {
	const query = `
        UPDATE org_units SET name=$1, code=$2, parent_id=$3, is_active=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		unit.Name,
		unit.Code,
		unit.ParentID,
		unit.IsActive,
		unit.ID,
	).Scan(&unit.UpdatedAt)
}

func (r *orgUnitRepository) GetByID(ctx context.Context, id string) (*domain.OrgUnit, error) {
	const query = `
        SELECT id, name, code, parent_id, is_active, created_at, updated_at
        FROM org_units WHERE id=$1`
	var unit domain.OrgUnit
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&unit.ID,
		&unit.Name,
		&unit.Code,
		&unit.ParentID,
		&unit.IsActive,
		&unit.CreatedAt,
		&unit.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *orgUnitRepository) List(ctx context.Context, activeOnly bool) ([]domain.OrgUnit, error) {
	const query = `
        SELECT id, name, code, parent_id, is_active, created_at, updated_at
        FROM org_units WHERE ($1 = FALSE OR is_active = TRUE) ORDER BY name`
	rows, err := r.pool.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.OrgUnit{}
	for rows.Next() {
		var unit domain.OrgUnit
		if err := rows.Scan(&unit.ID, &unit.Name, &unit.Code, &unit.ParentID, &unit.IsActive, &unit.CreatedAt, &unit.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, unit)
	}
	return result, rows.Err()
}

func (r *orgUnitRepository) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		for _, id := range ids {
			cmd, err := tx.Exec(ctx, `DELETE FROM org_units WHERE id=$1`, id)
			if err != nil {
				return err
			}
			if cmd.RowsAffected() == 0 {
				return pgx.ErrNoRows
			}
		}
		return nil
	})
}
