package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/itops-lab/helpdesk/internal/domain"
)

// TeamRepository manages persistence for support teams.
type TeamRepository interface {
	Create(ctx context.Context, team *domain.SupportTeam) error
	Update(ctx context.Context, team *domain.SupportTeam) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.SupportTeam, error)
	List(ctx context.Context, activeOnly bool) ([]domain.SupportTeam, error)
}

// AssignmentRuleRepository manages routing rules.
type AssignmentRuleRepository interface {
	Create(ctx context.Context, rule *domain.AssignmentRule) error
	Update(ctx context.Context, rule *domain.AssignmentRule) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.AssignmentRule, error)
	List(ctx context.Context) ([]domain.AssignmentRule, error)
	ListActiveCandidates(ctx context.Context, systemID, categoryID *string) ([]domain.AssignmentRule, error)
}

type teamRepository struct {
	pool *pgxpool.Pool
}

// NewTeamRepository constructs repository.
func NewTeamRepository(pool *pgxpool.Pool) TeamRepository {
	return &teamRepository{pool: pool}
}

func (r *teamRepository) Create(ctx context.Context, team *domain.SupportTeam) error {
	const query = `
        INSERT INTO support_teams (name, description, is_active)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		team.Name,
		team.Description,
		team.IsActive,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)
}

func (r *teamRepository) Update(ctx context.Context, team *domain.SupportTeam) error {
	const query = `
        UPDATE support_teams SET name=$1, description=$2, is_active=$3, updated_at=NOW()
        WHERE id=$4
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		team.Name,
		team.Description,
		team.IsActive,
		team.ID,
	).Scan(&team.UpdatedAt)
}

func (r *teamRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.pool, `DELETE FROM support_teams WHERE id=$1`, id)
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.SupportTeam, error) {
	const query = `
        SELECT id, name, description, is_active, created_at, updated_at
        FROM support_teams WHERE id=$1`
	var team domain.SupportTeam
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&team.ID,
		&team.Name,
		&team.Description,
		&team.IsActive,
		&team.CreatedAt,
		&team.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) List(ctx context.Context, activeOnly bool) ([]domain.SupportTeam, error) {
	const query = `
        SELECT id, name, description, is_active, created_at, updated_at
        FROM support_teams WHERE ($1 = FALSE OR is_active = TRUE) ORDER BY name`
	rows, err := r.pool.Query(ctx, query, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.SupportTeam{}
	for rows.Next() {
		var team domain.SupportTeam
		if err := rows.Scan(&team.ID, &team.Name, &team.Description, &team.IsActive, &team.CreatedAt, &team.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, team)
	}
	return result, rows.Err()
}

type assignmentRuleRepository struct {
	pool *pgxpool.Pool
}

// NewAssignmentRuleRepository constructs repository.
func NewAssignmentRuleRepository(pool *pgxpool.Pool) AssignmentRuleRepository {
	return &assignmentRuleRepository{pool: pool}
}

const ruleSelect = `
        SELECT r.id, r.priority, r.is_active, r.system_id, r.category_id, r.team_id, r.created_at, r.updated_at,
               tm.id, tm.name, tm.description, tm.is_active, tm.created_at, tm.updated_at
        FROM assignment_rules r
        JOIN support_teams tm ON tm.id = r.team_id`

func (r *assignmentRuleRepository) Create(ctx context.Context, rule *domain.AssignmentRule) error {
	const query = `
        INSERT INTO assignment_rules (priority, is_active, system_id, category_id, team_id)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		rule.Priority,
		rule.IsActive,
		rule.SystemID,
		rule.CategoryID,
		rule.TeamID,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
}

func (r *assignmentRuleRepository) Update(ctx context.Context, rule *domain.AssignmentRule) error {
	const query = `
        UPDATE assignment_rules SET priority=$1, is_active=$2, system_id=$3, category_id=$4, team_id=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		rule.Priority,
		rule.IsActive,
		rule.SystemID,
		rule.CategoryID,
		rule.TeamID,
		rule.ID,
	).Scan(&rule.UpdatedAt)
}

func (r *assignmentRuleRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.pool, `DELETE FROM assignment_rules WHERE id=$1`, id)
}

func (r *assignmentRuleRepository) GetByID(ctx context.Context, id string) (*domain.AssignmentRule, error) {
	return scanRule(r.pool.QueryRow(ctx, ruleSelect+` WHERE r.id=$1`, id))
}

func (r *assignmentRuleRepository) List(ctx context.Context) ([]domain.AssignmentRule, error) {
	rows, err := r.pool.Query(ctx, ruleSelect+` ORDER BY r.priority DESC, r.created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRules(rows)
}

// ListActiveCandidates fetches active rules that match the inputs exactly,
// by system only, by category only, or as the default.
func (r *assignmentRuleRepository) ListActiveCandidates(ctx context.Context, systemID, categoryID *string) ([]domain.AssignmentRule, error) {
	const where = `
        WHERE r.is_active = TRUE AND (
            (r.system_id IS NULL AND r.category_id IS NULL)
            OR ($1::uuid IS NOT NULL AND r.system_id = $1::uuid AND r.category_id IS NULL)
            OR ($2::uuid IS NOT NULL AND r.category_id = $2::uuid AND r.system_id IS NULL)
            OR ($1::uuid IS NOT NULL AND $2::uuid IS NOT NULL AND r.system_id = $1::uuid AND r.category_id = $2::uuid)
        )
        ORDER BY r.priority DESC, r.created_at ASC`
	rows, err := r.pool.Query(ctx, ruleSelect+where, systemID, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRules(rows)
}

func scanRule(row scanner) (*domain.AssignmentRule, error) {
	var rule domain.AssignmentRule
	if err := row.Scan(
		&rule.ID,
		&rule.Priority,
		&rule.IsActive,
		&rule.SystemID,
		&rule.CategoryID,
		&rule.TeamID,
		&rule.CreatedAt,
		&rule.UpdatedAt,
		&rule.Team.ID,
		&rule.Team.Name,
		&rule.Team.Description,
		&rule.Team.IsActive,
		&rule.Team.CreatedAt,
		&rule.Team.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rule, nil
}

func scanRules(rows pgx.Rows) ([]domain.AssignmentRule, error) {
	result := []domain.AssignmentRule{}
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rule)
	}
	return result, rows.Err()
}
