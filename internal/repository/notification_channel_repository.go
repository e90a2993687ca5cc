package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/itops-lab/helpdesk/internal/domain"
)

// NotificationChannelRepository persists notification destinations.
type NotificationChannelRepository interface {
	Create(ctx context.Context, ch *domain.NotificationChannel) error
	Update(ctx context.Context, ch *domain.NotificationChannel) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.NotificationChannel, error)
	List(ctx context.Context) ([]domain.NotificationChannel, error)
	ListActiveForEvent(ctx context.Context, eventType string) ([]domain.NotificationChannel, error)
}

const channelSelect = `
        SELECT id, name, type, target, events, is_active, created_at, updated_at
        FROM notification_channels`

type notificationChannelRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationChannelRepository constructs repository.
func NewNotificationChannelRepository(pool *pgxpool.Pool) NotificationChannelRepository {
	return &notificationChannelRepository{pool: pool}
}

func (r *notificationChannelRepository) Create(ctx context.Context, ch *domain.NotificationChannel) error {
	const query = `
        INSERT INTO notification_channels (name, type, target, events, is_active)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query, ch.Name, ch.Type, ch.Target, ch.Events, ch.IsActive).
		Scan(&ch.ID, &ch.CreatedAt, &ch.UpdatedAt)
}

func (r *notificationChannelRepository) Update(ctx context.Context, ch *domain.NotificationChannel) error {
	const query = `
        UPDATE notification_channels SET name=$1, type=$2, target=$3, events=$4, is_active=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query, ch.Name, ch.Type, ch.Target, ch.Events, ch.IsActive, ch.ID).Scan(&ch.UpdatedAt)
}

func (r *notificationChannelRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.pool, `DELETE FROM notification_channels WHERE id=$1`, id)
}

func (r *notificationChannelRepository) GetByID(ctx context.Context, id string) (*domain.NotificationChannel, error) {
	return scanChannel(r.pool.QueryRow(ctx, channelSelect+` WHERE id=$1`, id))
}

func (r *notificationChannelRepository) List(ctx context.Context) ([]domain.NotificationChannel, error) {
	return r.query(ctx, channelSelect+` ORDER BY name`)
}

func (r *notificationChannelRepository) ListActiveForEvent(ctx context.Context, eventType string) ([]domain.NotificationChannel, error) {
	return r.query(ctx, channelSelect+` WHERE is_active = TRUE AND $1 = ANY(events) ORDER BY name`, eventType)
}

func (r *notificationChannelRepository) query(ctx context.Context, query string, args ...any) ([]domain.NotificationChannel, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.NotificationChannel{}
	for rows.Next() {
		ch, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ch)
	}
	return result, rows.Err()
}

func scanChannel(row scanner) (*domain.NotificationChannel, error) {
	var ch domain.NotificationChannel
	if err := row.Scan(&ch.ID, &ch.Name, &ch.Type, &ch.Target, &ch.Events, &ch.IsActive, &ch.CreatedAt, &ch.UpdatedAt); err != nil {
		return nil, err
	}
	return &ch, nil
}
