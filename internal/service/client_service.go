package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/venuepass/ticketing-service/internal/domain"
	"github.com/venuepass/ticketing-service/internal/repository"
	"github.com/venuepass/ticketing-service/internal/validation"
	"github.com/venuepass/ticketing-service/pkg/util/errorutil"
)

// ClientService manages direct client registration (issuance creates
// clients lazily through the ticket service instead).
type ClientService struct {
	clients repository.ClientRepository
	schema  validation.Schema
	logger  *zap.Logger
}

// NewClientService constructs the service.
func NewClientService(clients repository.ClientRepository, schema validation.Schema, logger *zap.Logger) *ClientService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientService{clients: clients, schema: schema, logger: logger}
}

// CreateClientInput is the client creation payload.
type CreateClientInput struct {
	Name       string
	DocumentID string
	Email      string
	Phone      string
	BirthDate  time.Time
}

func (in CreateClientInput) record() validation.Record {
	record := validation.Record{
		"name":       in.Name,
		"documentId": in.DocumentID,
		"email":      in.Email,
		"phone":      in.Phone,
	}
	if !in.BirthDate.IsZero() {
		record["birthDate"] = in.BirthDate
	}
	return record
}

// CreateClient validates the payload and persists the client, rejecting
// duplicate document ids and emails.
func (s *ClientService) CreateClient(ctx context.Context, input CreateClientInput) (*domain.Client, error) {
	if err := validation.Validate(input.record(), s.schema); err != nil {
		return nil, asValidationError(err)
	}

	if _, err := s.clients.FindByDocumentID(ctx, input.DocumentID); err == nil {
		return nil, errorutil.NewConflict("a client with this document id already exists",
			map[string]any{"documentId": input.DocumentID})
	} else if !errorutil.IsNotFound(err) {
		return nil, err
	}

	if input.Email != "" {
		if _, err := s.clients.FindByEmail(ctx, input.Email); err == nil {
			return nil, errorutil.NewConflict("a client with this email already exists",
				map[string]any{"email": input.Email})
		} else if !errorutil.IsNotFound(err) {
			return nil, err
		}
	}

	client := &domain.Client{
		Name:       input.Name,
		DocumentID: input.DocumentID,
		Email:      input.Email,
		Phone:      input.Phone,
		BirthDate:  input.BirthDate,
	}
	if err := s.clients.Create(ctx, client); err != nil {
		return nil, err
	}
	s.logger.Info("client created", zap.String("client_id", client.ID))
	return client, nil
}

// GetClient loads one client.
func (s *ClientService) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	return s.clients.FindByID(ctx, id)
}

// GetClientByDocument loads a client by its natural key.
func (s *ClientService) GetClientByDocument(ctx context.Context, documentID string) (*domain.Client, error) {
	return s.clients.FindByDocumentID(ctx, documentID)
}
