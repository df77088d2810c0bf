package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/venuepass/ticketing-service/internal/domain"
	"github.com/venuepass/ticketing-service/pkg/util/errorutil"
)

// uniqueViolation is the Postgres error code for unique constraint hits.
const uniqueViolation = "23505"

// ClientRepository encapsulates client persistence. Implementations return
// NOT_FOUND for missing rows and CONFLICT for unique-key violations, so
// workflows can branch on the error code.
type ClientRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Client, error)
	FindByDocumentID(ctx context.Context, documentID string) (*domain.Client, error)
	FindByEmail(ctx context.Context, email string) (*domain.Client, error)
	Create(ctx context.Context, client *domain.Client) error
}

type clientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository instantiates the Postgres-backed repository.
func NewClientRepository(pool *pgxpool.Pool) ClientRepository {
	return &clientRepository{pool: pool}
}

func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	const query = `
        INSERT INTO clients (name, email, phone, document_id, birth_date)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		client.Name,
		nullable(client.Email),
		nullable(client.Phone),
		client.DocumentID,
		client.BirthDate,
	).Scan(&client.ID, &client.CreatedAt, &client.UpdatedAt)
	return mapConflict(err, "client already exists")
}

func (r *clientRepository) FindByID(ctx context.Context, id string) (*domain.Client, error) {
	const query = clientSelect + ` WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *clientRepository) FindByDocumentID(ctx context.Context, documentID string) (*domain.Client, error) {
	const query = clientSelect + ` WHERE document_id=$1`
	return r.fetchSingle(ctx, query, documentID)
}

func (r *clientRepository) FindByEmail(ctx context.Context, email string) (*domain.Client, error) {
	const query = clientSelect + ` WHERE email=$1`
	return r.fetchSingle(ctx, query, email)
}

const clientSelect = `
        SELECT id, name, COALESCE(email,''), COALESCE(phone,''), document_id, birth_date, created_at, updated_at
        FROM clients`

func (r *clientRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Client, error) {
	var client domain.Client
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&client.ID,
		&client.Name,
		&client.Email,
		&client.Phone,
		&client.DocumentID,
		&client.BirthDate,
		&client.CreatedAt,
		&client.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errorutil.NewNotFound("client", nil)
		}
		return nil, err
	}
	return &client, nil
}

// nullable maps empty strings to NULL so partial unique indexes on optional
// columns behave.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func mapConflict(err error, message string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return errorutil.NewConflict(message, map[string]any{"constraint": pgErr.ConstraintName})
	}
	return err
}
