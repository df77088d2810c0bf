package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/venuepass/ticketing-service/internal/domain"
	"github.com/venuepass/ticketing-service/pkg/util/errorutil"
)

// TicketTemplateRepository encapsulates template persistence.
type TicketTemplateRepository interface {
	FindByID(ctx context.Context, id string) (*domain.TicketTemplate, error)
	Create(ctx context.Context, template *domain.TicketTemplate) error
	ListByEvent(ctx context.Context, eventID string) ([]domain.TicketTemplate, error)
}

type ticketTemplateRepository struct {
	pool *pgxpool.Pool
}

// NewTicketTemplateRepository instantiates the Postgres-backed repository.
func NewTicketTemplateRepository(pool *pgxpool.Pool) TicketTemplateRepository {
	return &ticketTemplateRepository{pool: pool}
}

func (r *ticketTemplateRepository) Create(ctx context.Context, template *domain.TicketTemplate) error {
	const query = `
        INSERT INTO ticket_templates (event_id, name, description, price, max_quantity, client_min_age, is_active)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		template.EventID,
		template.Name,
		template.Description,
		template.Price,
		template.MaxQuantity,
		template.ClientMinAge,
		template.IsActive,
	).Scan(&template.ID, &template.CreatedAt, &template.UpdatedAt)
}

const templateSelect = `
        SELECT id, event_id, name, description, price, max_quantity, client_min_age, is_active, created_at, updated_at
        FROM ticket_templates`

func (r *ticketTemplateRepository) FindByID(ctx context.Context, id string) (*domain.TicketTemplate, error) {
	var template domain.TicketTemplate
	if err := r.pool.QueryRow(ctx, templateSelect+` WHERE id=$1`, id).Scan(
		&template.ID,
		&template.EventID,
		&template.Name,
		&template.Description,
		&template.Price,
		&template.MaxQuantity,
		&template.ClientMinAge,
		&template.IsActive,
		&template.CreatedAt,
		&template.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("ticket template", nil)
		}
		return nil, err
	}
	return &template, nil
}

func (r *ticketTemplateRepository) ListByEvent(ctx context.Context, eventID string) ([]domain.TicketTemplate, error) {
	rows, err := r.pool.Query(ctx, templateSelect+` WHERE event_id=$1 ORDER BY created_at ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketTemplate
	for rows.Next() {
		var template domain.TicketTemplate
		if err := rows.Scan(
			&template.ID,
			&template.EventID,
			&template.Name,
			&template.Description,
			&template.Price,
			&template.MaxQuantity,
			&template.ClientMinAge,
			&template.IsActive,
			&template.CreatedAt,
			&template.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, template)
	}
	return result, rows.Err()
}
