package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/venuepass/ticketing-service/internal/domain"
	"github.com/venuepass/ticketing-service/pkg/util/errorutil"
)

// TicketRepository encapsulates ticket persistence. Update merges only the
// fields set on the TicketUpdate, guarded by an optimistic check on the
// ticket's updated_at so concurrent transitions cannot silently lose
// history appends.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket, update domain.TicketUpdate) error
	FindByID(ctx context.Context, id string) (*domain.Ticket, error)
	FindByToken(ctx context.Context, token string) (*domain.Ticket, error)
	ListByEvent(ctx context.Context, eventID string) ([]domain.Ticket, error)
	ListByClient(ctx context.Context, clientID string) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the Postgres-backed repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	history, err := json.Marshal(ticket.History)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	entry, err := marshalEntry(ticket.Entry)
	if err != nil {
		return err
	}

	const query = `
        INSERT INTO tickets (template_id, client_id, event_id, token, price, issue_date, purchase_date, status, entry, history)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at, updated_at`
	err = r.pool.QueryRow(ctx, query,
		ticket.TemplateID,
		ticket.ClientID,
		ticket.EventID,
		ticket.Token,
		ticket.Price,
		ticket.IssueDate,
		ticket.PurchaseDate,
		ticket.Status,
		entry,
		history,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	return mapConflict(err, "ticket token already exists")
}

// Update builds the SET list from the non-nil fields of update. The WHERE
// clause includes the loaded row's updated_at: zero rows affected on an
// existing ticket means a concurrent writer got there first.
func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket, update domain.TicketUpdate) error {
	sets := []string{"updated_at=NOW()"}
	args := []any{}

	if update.Status != nil {
		args = append(args, *update.Status)
		sets = append(sets, fmt.Sprintf("status=$%d", len(args)))
	}
	if update.PurchaseDate != nil {
		args = append(args, *update.PurchaseDate)
		sets = append(sets, fmt.Sprintf("purchase_date=$%d", len(args)))
	}
	if update.Entry != nil {
		entry, err := marshalEntry(update.Entry)
		if err != nil {
			return err
		}
		args = append(args, entry)
		sets = append(sets, fmt.Sprintf("entry=$%d", len(args)))
	}
	if update.History != nil {
		history, err := json.Marshal(update.History)
		if err != nil {
			return fmt.Errorf("marshal history: %w", err)
		}
		args = append(args, history)
		sets = append(sets, fmt.Sprintf("history=$%d", len(args)))
	}

	args = append(args, ticket.ID)
	idPlaceholder := len(args)
	args = append(args, ticket.UpdatedAt)
	versionPlaceholder := len(args)

	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id=$%d AND updated_at=$%d RETURNING updated_at`,
		strings.Join(sets, ", "), idPlaceholder, versionPlaceholder)

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&ticket.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return errorutil.NewConflict("ticket was modified concurrently", map[string]any{"ticketId": ticket.ID})
		}
		return err
	}
	return nil
}

const ticketSelect = `
        SELECT id, template_id, client_id, event_id, token, price, issue_date, purchase_date, status, entry, history, created_at, updated_at
        FROM tickets`

func (r *ticketRepository) FindByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, ticketSelect+` WHERE id=$1`, id)
}

func (r *ticketRepository) FindByToken(ctx context.Context, token string) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, ticketSelect+` WHERE token=$1`, token)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets, err := scanTickets(rows)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, errorutil.NewNotFound("ticket", nil)
	}
	return &tickets[0], nil
}

func (r *ticketRepository) ListByEvent(ctx context.Context, eventID string) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, ticketSelect+` WHERE event_id=$1 ORDER BY issue_date ASC`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListByClient(ctx context.Context, clientID string) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, ticketSelect+` WHERE client_id=$1 ORDER BY issue_date ASC`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var (
			ticket  domain.Ticket
			entry   []byte
			history []byte
		)
		if err := rows.Scan(
			&ticket.ID,
			&ticket.TemplateID,
			&ticket.ClientID,
			&ticket.EventID,
			&ticket.Token,
			&ticket.Price,
			&ticket.IssueDate,
			&ticket.PurchaseDate,
			&ticket.Status,
			&entry,
			&history,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if len(entry) > 0 {
			ticket.Entry = &domain.Entry{}
			if err := json.Unmarshal(entry, ticket.Entry); err != nil {
				return nil, fmt.Errorf("unmarshal entry: %w", err)
			}
		}
		if len(history) > 0 {
			if err := json.Unmarshal(history, &ticket.History); err != nil {
				return nil, fmt.Errorf("unmarshal history: %w", err)
			}
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func marshalEntry(entry *domain.Entry) ([]byte, error) {
	if entry == nil {
		return nil, nil
	}
	raw, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("marshal entry: %w", err)
	}
	return raw, nil
}
