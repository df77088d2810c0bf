package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/venuepass/ticketing-service/internal/domain"
	"github.com/venuepass/ticketing-service/internal/repository"
	"github.com/venuepass/ticketing-service/internal/token"
	"github.com/venuepass/ticketing-service/internal/validation"
)

// EventService manages events and their ticket templates.
type EventService struct {
	events         repository.EventRepository
	templates      repository.TicketTemplateRepository
	eventSchema    validation.Schema
	templateSchema validation.Schema
	logger         *zap.Logger
	now            func() time.Time
}

// EventDependencies bundles collaborators for the event service.
type EventDependencies struct {
	EventRepo    repository.EventRepository
	TemplateRepo repository.TicketTemplateRepository
	Logger       *zap.Logger
	Clock        func() time.Time
}

// NewEventService constructs the service.
func NewEventService(deps EventDependencies, eventSchema, templateSchema validation.Schema) *EventService {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{
		events:         deps.EventRepo,
		templates:      deps.TemplateRepo,
		eventSchema:    eventSchema,
		templateSchema: templateSchema,
		logger:         logger,
		now:            now,
	}
}

// CreateEventInput is the event creation payload.
type CreateEventInput struct {
	Name        string
	Description string
	Date        time.Time
	StartTime   string
	EndTime     string
	Location    string
	Capacity    int
	IsActive    bool
}

func (in CreateEventInput) record() validation.Record {
	record := validation.Record{
		"name":        in.Name,
		"description": in.Description,
		"startTime":   in.StartTime,
		"endTime":     in.EndTime,
		"location":    in.Location,
		"capacity":    in.Capacity,
		"isActive":    in.IsActive,
	}
	if !in.Date.IsZero() {
		record["date"] = in.Date
	}
	return record
}

// CreateEvent validates the payload, generates the event's signing secret
// and persists it. The secret is generated exactly once here: every new
// event signs its own tickets.
func (s *EventService) CreateEvent(ctx context.Context, input CreateEventInput) (*domain.Event, error) {
	if err := validation.Validate(input.record(), s.eventSchema); err != nil {
		return nil, asValidationError(err)
	}

	secret, err := token.GenerateEventSecret()
	if err != nil {
		return nil, err
	}

	event := &domain.Event{
		Name:        input.Name,
		Description: input.Description,
		Date:        input.Date,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Location:    input.Location,
		Capacity:    input.Capacity,
		IsActive:    input.IsActive,
		TokenSecret: secret,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}
	s.logger.Info("event created", zap.String("event_id", event.ID), zap.String("name", event.Name))
	return event, nil
}

// GetEvent loads one event.
func (s *EventService) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	return s.events.FindByID(ctx, id)
}

// ListActiveEvents returns events open for issuance.
func (s *EventService) ListActiveEvents(ctx context.Context) ([]domain.Event, error) {
	return s.events.ListActive(ctx)
}

// SetEventActive toggles issuance for an event.
func (s *EventService) SetEventActive(ctx context.Context, id string, active bool) error {
	return s.events.SetActive(ctx, id, active)
}

// CreateTemplateInput is the template creation payload.
type CreateTemplateInput struct {
	EventID      string
	Name         string
	Description  string
	Price        decimal.Decimal
	MaxQuantity  int
	ClientMinAge int
	IsActive     bool
}

func (in CreateTemplateInput) record() validation.Record {
	return validation.Record{
		"eventId":      in.EventID,
		"name":         in.Name,
		"description":  in.Description,
		"price":        in.Price,
		"maxQuantity":  in.MaxQuantity,
		"clientMinAge": in.ClientMinAge,
	}
}

// CreateTemplate validates the payload and persists a template under an
// existing event.
func (s *EventService) CreateTemplate(ctx context.Context, input CreateTemplateInput) (*domain.TicketTemplate, error) {
	if err := validation.Validate(input.record(), s.templateSchema); err != nil {
		return nil, asValidationError(err)
	}

	if _, err := s.events.FindByID(ctx, input.EventID); err != nil {
		return nil, err
	}

	template := &domain.TicketTemplate{
		EventID:      input.EventID,
		Name:         input.Name,
		Description:  input.Description,
		Price:        input.Price,
		MaxQuantity:  input.MaxQuantity,
		ClientMinAge: input.ClientMinAge,
		IsActive:     input.IsActive,
	}
	if err := s.templates.Create(ctx, template); err != nil {
		return nil, err
	}
	s.logger.Info("ticket template created", zap.String("template_id", template.ID), zap.String("event_id", template.EventID))
	return template, nil
}

// TemplatesByEvent lists the templates of an event.
func (s *EventService) TemplatesByEvent(ctx context.Context, eventID string) ([]domain.TicketTemplate, error) {
	return s.templates.ListByEvent(ctx, eventID)
}
