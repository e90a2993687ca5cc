package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/itops-lab/helpdesk/internal/domain"
)

// AdminUserRepository handles persistence for admin console accounts.
type AdminUserRepository interface {
	Create(ctx context.Context, user *domain.AdminUser) error
	Update(ctx context.Context, user *domain.AdminUser) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.AdminUser, error)
	GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error)
	List(ctx context.Context, filter AdminUserFilter) ([]domain.AdminUser, error)
}

// AdminUserFilter defines query params for account listing.
type AdminUserFilter struct {
	Role   *domain.StaffRole
	TeamID *string
	Active *bool
}

const adminUserSelect = `
        SELECT id, name, email, password_hash, role, team_id, is_active, created_at, updated_at
        FROM admin_users`

type adminUserRepository struct {
	pool *pgxpool.Pool
}

// NewAdminUserRepository instantiates the repository.
func NewAdminUserRepository(pool *pgxpool.Pool) AdminUserRepository {
	return &adminUserRepository{pool: pool}
}

func (r *adminUserRepository) Create(ctx context.Context, user *domain.AdminUser) error {
	const query = `
        INSERT INTO admin_users (name, email, password_hash, role, team_id, is_active)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Name,
		strings.ToLower(user.Email),
		user.PasswordHash,
		user.Role,
		user.TeamID,
		user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *adminUserRepository) Update(ctx context.Context, user *domain.AdminUser) error {
	const query = `
        UPDATE admin_users
        SET name=$1, email=$2, password_hash=$3, role=$4, team_id=$5, is_active=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`

	return r.pool.QueryRow(ctx, query,
		user.Name,
		strings.ToLower(user.Email),
		user.PasswordHash,
		user.Role,
		user.TeamID,
		user.IsActive,
		user.ID,
	).Scan(&user.UpdatedAt)
}

func (r *adminUserRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.pool, `DELETE FROM admin_users WHERE id=$1`, id)
}

func (r *adminUserRepository) GetByID(ctx context.Context, id string) (*domain.AdminUser, error) {
	return scanAdminUser(r.pool.QueryRow(ctx, adminUserSelect+` WHERE id=$1`, id))
}

func (r *adminUserRepository) GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	return scanAdminUser(r.pool.QueryRow(ctx, adminUserSelect+` WHERE email=$1`, strings.ToLower(email)))
}

func (r *adminUserRepository) List(ctx context.Context, filter AdminUserFilter) ([]domain.AdminUser, error) {
	args := []any{}
	clauses := []string{"1=1"}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.TeamID != nil {
		args = append(args, *filter.TeamID)
		clauses = append(clauses, fmt.Sprintf("team_id=$%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		clauses = append(clauses, fmt.Sprintf("is_active=$%d", len(args)))
	}

	query := adminUserSelect + " WHERE " + strings.Join(clauses, " AND ") + " ORDER BY name"
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.AdminUser{}
	for rows.Next() {
		user, err := scanAdminUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *user)
	}
	return result, rows.Err()
}

func scanAdminUser(row scanner) (*domain.AdminUser, error) {
	var user domain.AdminUser
	if err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.TeamID,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
