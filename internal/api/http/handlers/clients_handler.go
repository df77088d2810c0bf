package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/venuepass/ticketing-service/internal/api/dto"
	"github.com/venuepass/ticketing-service/internal/domain"
	"github.com/venuepass/ticketing-service/internal/service"
	apperrors "github.com/venuepass/ticketing-service/pkg/util/errorutil"
)

// ClientsHandler manages end-customer records.
type ClientsHandler struct {
	service *service.ClientService
}

// NewClientsHandler constructs handler.
func NewClientsHandler(clientService *service.ClientService) *ClientsHandler {
	return &ClientsHandler{service: clientService}
}

// Create POST /clients.
func (h *ClientsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateClientRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	var birthDate time.Time
	if req.BirthDate != nil {
		birthDate = *req.BirthDate
	}
	client, err := h.service.CreateClient(c.UserContext(), service.CreateClientInput{
		Name:       req.Name,
		DocumentID: req.DocumentID,
		Email:      req.Email,
		Phone:      req.Phone,
		BirthDate:  birthDate,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": clientResponse(client)})
}

// Get GET /clients/:id.
func (h *ClientsHandler) Get(c *fiber.Ctx) error {
	client, err := h.service.GetClient(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": clientResponse(client)})
}

// GetByDocument GET /clients/document/:documentId.
func (h *ClientsHandler) GetByDocument(c *fiber.Ctx) error {
	client, err := h.service.GetClientByDocument(c.UserContext(), c.Params("documentId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": clientResponse(client)})
}

func clientResponse(client *domain.Client) dto.ClientResponse {
	return dto.ClientResponse{
		ID:         client.ID,
		Name:       client.Name,
		Email:      client.Email,
		Phone:      client.Phone,
		DocumentID: client.DocumentID,
		BirthDate:  client.BirthDate,
		CreatedAt:  client.CreatedAt,
		UpdatedAt:  client.UpdatedAt,
	}
}
