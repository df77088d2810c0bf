package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/venuepass/ticketing-service/internal/api/dto"
	"github.com/venuepass/ticketing-service/internal/domain"
	"github.com/venuepass/ticketing-service/internal/service"
	apperrors "github.com/venuepass/ticketing-service/pkg/util/errorutil"
)

// EventsHandler manages events and their ticket templates.
type EventsHandler struct {
	service *service.EventService
}

// NewEventsHandler constructs handler.
func NewEventsHandler(eventService *service.EventService) *EventsHandler {
	return &EventsHandler{service: eventService}
}

// CreateEvent POST /events.
func (h *EventsHandler) CreateEvent(c *fiber.Ctx) error {
	var req dto.CreateEventRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	event, err := h.service.CreateEvent(c.UserContext(), service.CreateEventInput{
		Name:        req.Name,
		Description: req.Description,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Location:    req.Location,
		Capacity:    req.Capacity,
		IsActive:    isActive,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": eventResponse(event)})
}

// GetEvent GET /events/:id.
func (h *EventsHandler) GetEvent(c *fiber.Ctx) error {
	event, err := h.service.GetEvent(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": eventResponse(event)})
}

// ListActive GET /events.
func (h *EventsHandler) ListActive(c *fiber.Ctx) error {
	events, err := h.service.ListActiveEvents(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		items = append(items, eventResponse(&events[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// SetActive PATCH /events/:id/active.
func (h *EventsHandler) SetActive(c *fiber.Ctx) error {
	var req dto.SetEventActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.service.SetEventActive(c.UserContext(), c.Params("id"), req.IsActive); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": c.Params("id"), "isActive": req.IsActive}})
}

// CreateTemplate POST /events/:id/templates.
func (h *EventsHandler) CreateTemplate(c *fiber.Ctx) error {
	var req dto.CreateTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	template, err := h.service.CreateTemplate(c.UserContext(), service.CreateTemplateInput{
		EventID:      c.Params("id"),
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		MaxQuantity:  req.MaxQuantity,
		ClientMinAge: req.ClientMinAge,
		IsActive:     isActive,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": templateResponse(template)})
}

// ListTemplates GET /events/:id/templates.
func (h *EventsHandler) ListTemplates(c *fiber.Ctx) error {
	templates, err := h.service.TemplatesByEvent(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.TemplateResponse, 0, len(templates))
	for i := range templates {
		items = append(items, templateResponse(&templates[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func eventResponse(event *domain.Event) dto.EventResponse {
	return dto.EventResponse{
		ID:          event.ID,
		Name:        event.Name,
		Description: event.Description,
		Date:        event.Date,
		StartTime:   event.StartTime,
		EndTime:     event.EndTime,
		Location:    event.Location,
		Capacity:    event.Capacity,
		IsActive:    event.IsActive,
		CreatedAt:   event.CreatedAt,
		UpdatedAt:   event.UpdatedAt,
	}
}

func templateResponse(template *domain.TicketTemplate) dto.TemplateResponse {
	return dto.TemplateResponse{
		ID:           template.ID,
		EventID:      template.EventID,
		Name:         template.Name,
		Description:  template.Description,
		Price:        template.Price,
		MaxQuantity:  template.MaxQuantity,
		ClientMinAge: template.ClientMinAge,
		IsActive:     template.IsActive,
		CreatedAt:    template.CreatedAt,
		UpdatedAt:    template.UpdatedAt,
	}
}
