package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/venuepass/ticketing-service/internal/domain"
	"github.com/venuepass/ticketing-service/pkg/util/errorutil"
)

// EventRepository encapsulates event persistence.
type EventRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Event, error)
	Create(ctx context.Context, event *domain.Event) error
	ListActive(ctx context.Context) ([]domain.Event, error)
	SetActive(ctx context.Context, id string, active bool) error
}

type eventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository instantiates the Postgres-backed repository.
func NewEventRepository(pool *pgxpool.Pool) EventRepository {
	return &eventRepository{pool: pool}
}

func (r *eventRepository) Create(ctx context.Context, event *domain.Event) error {
	const query = `
        INSERT INTO events (name, description, date, start_time, end_time, location, capacity, is_active, token_secret)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		event.Name,
		event.Description,
		event.Date,
		event.StartTime,
		event.EndTime,
		event.Location,
		event.Capacity,
		event.IsActive,
		event.TokenSecret,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
}

const eventSelect = `
        SELECT id, name, description, date, start_time, end_time, location, capacity, is_active, COALESCE(token_secret,''), created_at, updated_at
        FROM events`

func (r *eventRepository) FindByID(ctx context.Context, id string) (*domain.Event, error) {
	var event domain.Event
	if err := r.pool.QueryRow(ctx, eventSelect+` WHERE id=$1`, id).Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&event.Date,
		&event.StartTime,
		&event.EndTime,
		&event.Location,
		&event.Capacity,
		&event.IsActive,
		&event.TokenSecret,
		&event.CreatedAt,
		&event.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("event", nil)
		}
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) ListActive(ctx context.Context) ([]domain.Event, error) {
	rows, err := r.pool.Query(ctx, eventSelect+` WHERE is_active = TRUE ORDER BY date ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Event
	for rows.Next() {
		var event domain.Event
		if err := rows.Scan(
			&event.ID,
			&event.Name,
			&event.Description,
			&event.Date,
			&event.StartTime,
			&event.EndTime,
			&event.Location,
			&event.Capacity,
			&event.IsActive,
			&event.TokenSecret,
			&event.CreatedAt,
			&event.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}

func (r *eventRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE events SET is_active=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.pool.Exec(ctx, query, active, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return errorutil.NewNotFound("event", nil)
	}
	return nil
}
