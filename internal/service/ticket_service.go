package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/venuepass/ticketing-service/internal/domain"
	"github.com/venuepass/ticketing-service/internal/lifecycle"
	"github.com/venuepass/ticketing-service/internal/repository"
	"github.com/venuepass/ticketing-service/internal/token"
	"github.com/venuepass/ticketing-service/internal/validation"
	"github.com/venuepass/ticketing-service/pkg/util/errorutil"
)

// TicketService coordinates the ticket issuance and lifecycle workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	templates   repository.TicketTemplateRepository
	events      repository.EventRepository
	clients     repository.ClientRepository
	tokens      *token.Service
	issueSchema validation.Schema
	tokenTTL    time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	TemplateRepo repository.TicketTemplateRepository
	EventRepo    repository.EventRepository
	ClientRepo   repository.ClientRepository
	Tokens       *token.Service
	TokenTTL     time.Duration
	Logger       *zap.Logger
	Clock        func() time.Time
}

// NewTicketService constructs the service. The issuance schema is passed in
// rather than owned here, keeping rule data decoupled from orchestration.
func NewTicketService(deps TicketDependencies, issueSchema validation.Schema) *TicketService {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:     deps.TicketRepo,
		templates:   deps.TemplateRepo,
		events:      deps.EventRepo,
		clients:     deps.ClientRepo,
		tokens:      deps.Tokens,
		issueSchema: issueSchema,
		tokenTTL:    deps.TokenTTL,
		logger:      logger,
		now:         now,
	}
}

// IssueClientInput identifies or describes the client a ticket is issued
// to: an existing client id, or a document id with enough detail to create
// the client lazily.
type IssueClientInput struct {
	ID         string
	DocumentID string
	Name       string
	Email      string
	Phone      string
	BirthDate  *time.Time
}

// IssueTicketInput is the issuance request.
type IssueTicketInput struct {
	TemplateID string
	EventID    string
	Client     IssueClientInput
	TokenTTL   time.Duration
}

func (in IssueTicketInput) record() validation.Record {
	client := validation.Record{}
	if in.Client.ID != "" {
		client["id"] = in.Client.ID
	}
	if in.Client.DocumentID != "" {
		client["documentId"] = in.Client.DocumentID
	}
	if in.Client.Name != "" {
		client["name"] = in.Client.Name
	}
	if in.Client.Email != "" {
		client["email"] = in.Client.Email
	}
	if in.Client.Phone != "" {
		client["phone"] = in.Client.Phone
	}
	return validation.Record{
		"templateId": in.TemplateID,
		"eventId":    in.EventID,
		"client":     client,
	}
}

// Issue creates a ticket bound to a template, event and client. Steps run
// strictly sequentially; any failure aborts the workflow with no ticket
// persisted. A client created on the way is deliberately not rolled back on
// a later failure (callers needing exactly-once semantics wrap the workflow
// in an outer transaction).
func (s *TicketService) Issue(ctx context.Context, input IssueTicketInput, actorID string) (*domain.Ticket, error) {
	if err := validation.Validate(input.record(), s.issueSchema); err != nil {
		return nil, asValidationError(err)
	}

	clientID, err := s.resolveClient(ctx, input.Client)
	if err != nil {
		return nil, err
	}

	template, err := s.templates.FindByID(ctx, input.TemplateID)
	if err != nil {
		return nil, err
	}

	event, err := s.events.FindByID(ctx, input.EventID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !event.IsActive {
		return nil, errorutil.NewPreconditionFailed("event is not active", map[string]any{"eventId": event.ID})
	}
	if event.Date.Before(now) {
		return nil, errorutil.NewPreconditionFailed("event date has passed", map[string]any{"eventId": event.ID, "date": event.Date})
	}

	key, usedFallback := s.tokens.KeyForEvent(event)
	if usedFallback {
		s.logger.Warn("event has no token secret, signing with fallback", zap.String("event_id", event.ID))
	}
	ttl := input.TokenTTL
	if ttl <= 0 {
		ttl = s.tokenTTL
	}
	signed, err := s.tokens.Sign(token.TicketPayload{
		EventID:    event.ID,
		TemplateID: template.ID,
		ClientID:   clientID,
		Timestamp:  now,
	}, key, ttl)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		TemplateID:   template.ID,
		ClientID:     clientID,
		EventID:      event.ID,
		Token:        signed,
		Price:        template.Price,
		IssueDate:    now,
		PurchaseDate: now,
		Status:       domain.TicketStatusPendiente,
	}
	if err := ticket.AppendEvent(domain.TicketEvent{
		Type:      domain.TicketEventCreado,
		Timestamp: now,
		NewStatus: domain.TicketStatusPendiente,
		UserID:    actorID,
		Metadata: map[string]any{
			"templateId": template.ID,
			"eventId":    event.ID,
			"price":      template.Price,
		},
	}); err != nil {
		return nil, err
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.logger.Info("ticket issued",
		zap.String("ticket_id", ticket.ID),
		zap.String("event_id", event.ID),
		zap.String("template_id", template.ID),
		zap.String("client_id", clientID),
	)
	return ticket, nil
}

// resolveClient returns the client id for the issuance request: a supplied
// id is used as-is, otherwise the document id is looked up and the client
// created lazily. A uniqueness conflict on creation means a concurrent
// request created the same client between our lookup and insert, so the
// lookup is retried instead of failing.
func (s *TicketService) resolveClient(ctx context.Context, input IssueClientInput) (string, error) {
	if input.ID != "" {
		return input.ID, nil
	}

	existing, err := s.clients.FindByDocumentID(ctx, input.DocumentID)
	if err == nil {
		return existing.ID, nil
	}
	if !errorutil.IsNotFound(err) {
		return "", err
	}

	if input.Name == "" {
		return "", errorutil.NewValidationError("client name is required to create a new client",
			map[string]any{"client": "name is required"})
	}

	// BirthDate defaults to the issuance instant when unspecified; callers
	// wanting age checks at issuance must supply the real date.
	birthDate := s.now()
	if input.BirthDate != nil {
		birthDate = *input.BirthDate
	}
	client := &domain.Client{
		Name:       input.Name,
		Email:      input.Email,
		Phone:      input.Phone,
		DocumentID: input.DocumentID,
		BirthDate:  birthDate,
	}
	if err := s.clients.Create(ctx, client); err != nil {
		if errorutil.IsConflict(err) {
			winner, lookupErr := s.clients.FindByDocumentID(ctx, input.DocumentID)
			if lookupErr != nil {
				return "", lookupErr
			}
			return winner.ID, nil
		}
		return "", err
	}
	return client.ID, nil
}

// Transition applies one status transition to an existing ticket and
// persists the merged update.
func (s *TicketService) Transition(ctx context.Context, ticketID string, newStatus domain.TicketStatus, actorID string, metadata map[string]any, entry *domain.Entry) (*domain.Ticket, error) {
	if !domain.IsValidTicketStatus(newStatus) {
		return nil, errorutil.NewValidationError("unknown ticket status",
			map[string]any{"newStatus": string(newStatus)})
	}

	ticket, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if entry != nil && entry.Timestamp.IsZero() {
		entry.Timestamp = now
	}

	update, event, err := lifecycle.Apply(ticket, newStatus, actorID, metadata, entry, now)
	if err != nil {
		return nil, err
	}

	if err := s.tickets.Update(ctx, ticket, update); err != nil {
		return nil, err
	}
	s.logger.Info("ticket transitioned",
		zap.String("ticket_id", ticket.ID),
		zap.String("from", string(event.PreviousStatus)),
		zap.String("to", string(event.NewStatus)),
		zap.String("actor", actorID),
	)
	return ticket, nil
}

// TokenValidation is the outcome of checking a presented token.
type TokenValidation struct {
	Valid  bool
	Ticket *domain.Ticket
}

// ValidateToken checks a presented token against the issuing event's key.
// An unknown token is a clean negative result, not an error. The signature
// check alone does not prove the claims still match stored state: the
// returned ticket lets callers compare eventId/templateId/clientId against
// the token's claims.
func (s *TicketService) ValidateToken(ctx context.Context, tokenStr, eventID string) (*TokenValidation, error) {
	ticket, err := s.tickets.FindByToken(ctx, tokenStr)
	if err != nil {
		if errorutil.IsNotFound(err) {
			return &TokenValidation{Valid: false}, nil
		}
		return nil, err
	}

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	key, usedFallback := s.tokens.KeyForEvent(event)
	if usedFallback {
		s.logger.Warn("event has no token secret, verifying with fallback", zap.String("event_id", event.ID))
	}
	valid := s.tokens.Verify(tokenStr, key)

	if ticket.Status == domain.TicketStatusUtilizado {
		return nil, errorutil.NewPreconditionFailed("ticket has already been used",
			map[string]any{"ticketId": ticket.ID})
	}

	return &TokenValidation{Valid: valid, Ticket: ticket}, nil
}

// TicketByID loads a single ticket.
func (s *TicketService) TicketByID(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return s.tickets.FindByID(ctx, ticketID)
}

// ListByEvent returns the tickets issued against an event.
func (s *TicketService) ListByEvent(ctx context.Context, eventID string) ([]domain.Ticket, error) {
	return s.tickets.ListByEvent(ctx, eventID)
}

// ListByClient returns the tickets issued to a client.
func (s *TicketService) ListByClient(ctx context.Context, clientID string) ([]domain.Ticket, error) {
	return s.tickets.ListByClient(ctx, clientID)
}

func asValidationError(err error) error {
	if verr, ok := err.(*validation.Error); ok {
		return errorutil.NewValidationError(verr.Error(), verr.Details())
	}
	return err
}
