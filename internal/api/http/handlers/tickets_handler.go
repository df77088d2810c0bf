package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/venuepass/ticketing-service/internal/api/dto"
	"github.com/venuepass/ticketing-service/internal/auth"
	"github.com/venuepass/ticketing-service/internal/domain"
	"github.com/venuepass/ticketing-service/internal/service"
	apperrors "github.com/venuepass/ticketing-service/pkg/util/errorutil"
)

// TicketsHandler manages ticket issuance, lifecycle and token validation.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Issue POST /tickets.
func (h *TicketsHandler) Issue(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("operator required")
	}
	var req dto.IssueTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.IssueTicketInput{
		TemplateID: req.TemplateID,
		EventID:    req.EventID,
		Client: service.IssueClientInput{
			ID:         req.Client.ID,
			DocumentID: req.Client.DocumentID,
			Name:       req.Client.Name,
			Email:      req.Client.Email,
			Phone:      req.Client.Phone,
			BirthDate:  req.Client.BirthDate,
		},
	}
	ticket, err := h.service.Issue(c.UserContext(), input, principal.User.ID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// Transition POST /tickets/:id/status.
func (h *TicketsHandler) Transition(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("operator required")
	}
	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.NewStatus == "" {
		return apperrors.NewValidationError("newStatus required", nil)
	}

	var entry *domain.Entry
	if req.Entry != nil {
		validatedBy := req.Entry.ValidatedBy
		if validatedBy == "" {
			validatedBy = principal.User.ID
		}
		entry = &domain.Entry{Location: req.Entry.Location, ValidatedBy: validatedBy}
		if req.Entry.Timestamp != nil {
			entry.Timestamp = *req.Entry.Timestamp
		}
	}

	ticket, err := h.service.Transition(c.UserContext(), c.Params("id"),
		domain.TicketStatus(req.NewStatus), principal.User.ID, req.Metadata, entry)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ValidateToken POST /tickets/validate.
func (h *TicketsHandler) ValidateToken(c *fiber.Ctx) error {
	var req dto.ValidateTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Token == "" || req.EventID == "" {
		return apperrors.NewValidationError("token and eventId required", nil)
	}

	result, err := h.service.ValidateToken(c.UserContext(), req.Token, req.EventID)
	if err != nil {
		return err
	}
	resp := dto.ValidateTokenResponse{Valid: result.Valid}
	if result.Ticket != nil {
		full := ticketResponse(result.Ticket)
		resp.Ticket = &full
	}
	return c.JSON(fiber.Map{"data": resp})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, err := h.service.TicketByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// ListByEvent GET /events/:id/tickets.
func (h *TicketsHandler) ListByEvent(c *fiber.Ctx) error {
	tickets, err := h.service.ListByEvent(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

// ListByClient GET /clients/:id/tickets.
func (h *TicketsHandler) ListByClient(c *fiber.Ctx) error {
	tickets, err := h.service.ListByClient(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponses(tickets)})
}

func ticketResponses(tickets []domain.Ticket) []dto.TicketResponse {
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return items
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	history := make([]dto.TicketEventResponse, 0, len(ticket.History))
	for _, ev := range ticket.History {
		history = append(history, dto.TicketEventResponse{
			Type:           ev.Type,
			Timestamp:      ev.Timestamp,
			PreviousStatus: ev.PreviousStatus,
			NewStatus:      ev.NewStatus,
			UserID:         ev.UserID,
			Metadata:       ev.Metadata,
		})
	}
	resp := dto.TicketResponse{
		ID:           ticket.ID,
		TemplateID:   ticket.TemplateID,
		ClientID:     ticket.ClientID,
		EventID:      ticket.EventID,
		Token:        ticket.Token,
		Price:        ticket.Price,
		IssueDate:    ticket.IssueDate,
		PurchaseDate: ticket.PurchaseDate,
		Status:       ticket.Status,
		History:      history,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
	}
	if ticket.Entry != nil {
		resp.Entry = &dto.EntryResponse{
			Timestamp:   ticket.Entry.Timestamp,
			Location:    ticket.Entry.Location,
			ValidatedBy: ticket.Entry.ValidatedBy,
		}
	}
	return resp
}
