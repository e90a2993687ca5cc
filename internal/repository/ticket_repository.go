package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/itops-lab/helpdesk/internal/domain"
)

// TicketFilter captures admin search parameters.
type TicketFilter struct {
	Statuses    []domain.TicketStatus
	PriorityID  *string
	TeamID      *string
	AssigneeID  *string
	CategoryID  *string
	SystemID    *string
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByCode(ctx context.Context, code string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, int, error)
	ListByStatus(ctx context.Context, statuses []domain.TicketStatus) ([]domain.Ticket, error)
	CountBy(ctx context.Context, dimension string) ([]domain.CountBucket, error)
}

// Grouping dimensions accepted by CountBy.
const (
	DimensionStatus   = "status"
	DimensionCategory = "category"
	DimensionPriority = "priority"
	DimensionTeam     = "team"
)

const ticketSelect = `
        SELECT t.id, t.code, t.title, t.description, t.reporter_name, t.reporter_email, t.reporter_phone,
               t.employee_code_hash, t.employee_code_masked, t.employee_code_enc,
               t.org_unit_id, t.system_id, t.category_id, t.priority_id, t.team_id, t.assignee_id,
               t.status, t.first_responded_at, t.resolved_at, t.closed_at, t.created_at, t.updated_at,
               COALESCE(o.name,''), COALESCE(s.name,''), COALESCE(c.name,''), COALESCE(p.name,''),
               COALESCE(tm.name,''), COALESCE(a.name,''), p.sla_first_response_mins, p.sla_resolve_mins
        FROM tickets t
        LEFT JOIN org_units o ON o.id = t.org_unit_id
        LEFT JOIN systems s ON s.id = t.system_id
        LEFT JOIN categories c ON c.id = t.category_id
        LEFT JOIN priorities p ON p.id = t.priority_id
        LEFT JOIN support_teams tm ON tm.id = t.team_id
        LEFT JOIN admin_users a ON a.id = t.assignee_id`

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (code, title, description, reporter_name, reporter_email, reporter_phone,
            employee_code_hash, employee_code_masked, employee_code_enc,
            org_unit_id, system_id, category_id, priority_id, team_id, assignee_id, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Code,
		ticket.Title,
		ticket.Description,
		ticket.ReporterName,
		ticket.ReporterEmail,
		ticket.ReporterPhone,
		ticket.EmployeeCodeHash,
		ticket.EmployeeCodeMasked,
		ticket.EmployeeCodeEnc,
		ticket.OrgUnitID,
		ticket.SystemID,
		ticket.CategoryID,
		ticket.PriorityID,
		ticket.TeamID,
		ticket.AssigneeID,
		ticket.Status,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, org_unit_id=$3, system_id=$4, category_id=$5,
            priority_id=$6, team_id=$7, assignee_id=$8, status=$9, first_responded_at=$10,
            resolved_at=$11, closed_at=$12, updated_at=NOW()
        WHERE id=$13
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.OrgUnitID,
		ticket.SystemID,
		ticket.CategoryID,
		ticket.PriorityID,
		ticket.TeamID,
		ticket.AssigneeID,
		ticket.Status,
		ticket.FirstRespondedAt,
		ticket.ResolvedAt,
		ticket.ClosedAt,
		ticket.ID,
	).Scan(&ticket.UpdatedAt)
	return err
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return scanTicket(r.pool.QueryRow(ctx, ticketSelect+` WHERE t.id=$1`, id))
}

func (r *ticketRepository) GetByCode(ctx context.Context, code string) (*domain.Ticket, error) {
	return scanTicket(r.pool.QueryRow(ctx, ticketSelect+` WHERE t.code=$1`, code))
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, int, error) {
	where, args := filter.where()

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets t WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY t.created_at DESC LIMIT %d OFFSET %d`,
		ticketSelect, where, limit, offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

func (r *ticketRepository) ListByStatus(ctx context.Context, statuses []domain.TicketStatus) ([]domain.Ticket, error) {
	filter := TicketFilter{Statuses: statuses}
	where, args := filter.where()
	rows, err := r.pool.Query(ctx, ticketSelect+` WHERE `+where+` ORDER BY t.created_at ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) CountBy(ctx context.Context, dimension string) ([]domain.CountBucket, error) {
	var query string
	switch dimension {
	case DimensionStatus:
		query = `SELECT t.status, t.status, COUNT(*) FROM tickets t GROUP BY t.status ORDER BY 3 DESC`
	case DimensionCategory:
		query = `SELECT COALESCE(c.id::text,''), COALESCE(c.name,''), COUNT(*)
                 FROM tickets t LEFT JOIN categories c ON c.id = t.category_id
                 GROUP BY c.id, c.name ORDER BY 3 DESC`
	case DimensionPriority:
		query = `SELECT COALESCE(p.id::text,''), COALESCE(p.name,''), COUNT(*)
                 FROM tickets t LEFT JOIN priorities p ON p.id = t.priority_id
                 GROUP BY p.id, p.name ORDER BY 3 DESC`
	case DimensionTeam:
		query = `SELECT COALESCE(tm.id::text,''), COALESCE(tm.name,''), COUNT(*)
                 FROM tickets t LEFT JOIN support_teams tm ON tm.id = t.team_id
                 GROUP BY tm.id, tm.name ORDER BY 3 DESC`
	default:
		return nil, fmt.Errorf("unknown ticket dimension %q", dimension)
	}

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.CountBucket{}
	for rows.Next() {
		var b domain.CountBucket
		if err := rows.Scan(&b.Key, &b.Label, &b.Count); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func (f TicketFilter) where() (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	eq := func(column string, value *string) {
		if value == nil || *value == "" {
			return
		}
		args = append(args, *value)
		clauses = append(clauses, fmt.Sprintf("%s=$%d", column, len(args)))
	}
	eq("t.priority_id", f.PriorityID)
	eq("t.team_id", f.TeamID)
	eq("t.assignee_id", f.AssigneeID)
	eq("t.category_id", f.CategoryID)
	eq("t.system_id", f.SystemID)

	if len(f.Statuses) > 0 {
		placeholders := make([]string, len(f.Statuses))
		for i, status := range f.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("t.status IN (%s)", strings.Join(placeholders, ",")))
	}
	if f.CreatedFrom != nil {
		args = append(args, *f.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("t.created_at >= $%d", len(args)))
	}
	if f.CreatedTo != nil {
		args = append(args, *f.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("t.created_at <= $%d", len(args)))
	}
	if f.SearchTerm != nil && strings.TrimSpace(*f.SearchTerm) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*f.SearchTerm)) + "%"
		args = append(args, search)
		p := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(t.title) LIKE %s OR LOWER(t.code) LIKE %s OR LOWER(t.reporter_name) LIKE %s)", p, p, p))
	}
	return strings.Join(clauses, " AND "), args
}

func scanTicket(row scanner) (*domain.Ticket, error) {
	var t domain.Ticket
	if err := row.Scan(
		&t.ID,
		&t.Code,
		&t.Title,
		&t.Description,
		&t.ReporterName,
		&t.ReporterEmail,
		&t.ReporterPhone,
		&t.EmployeeCodeHash,
		&t.EmployeeCodeMasked,
		&t.EmployeeCodeEnc,
		&t.OrgUnitID,
		&t.SystemID,
		&t.CategoryID,
		&t.PriorityID,
		&t.TeamID,
		&t.AssigneeID,
		&t.Status,
		&t.FirstRespondedAt,
		&t.ResolvedAt,
		&t.ClosedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.OrgUnitName,
		&t.SystemName,
		&t.CategoryName,
		&t.PriorityName,
		&t.TeamName,
		&t.AssigneeName,
		&t.SLAFirstResponseMins,
		&t.SLAResolveMins,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	result := []domain.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	return result, rows.Err()
}
