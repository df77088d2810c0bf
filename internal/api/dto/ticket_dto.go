package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/venuepass/ticketing-service/internal/domain"
)

// IssueTicketRequest payload.
type IssueTicketRequest struct {
	TemplateID string           `json:"templateId"`
	EventID    string           `json:"eventId"`
	Client     ClientRefRequest `json:"client"`
}

// ClientRefRequest identifies the client of an issuance: an existing id, or
// a document id plus enough detail to create the client on the fly.
type ClientRefRequest struct {
	ID         string     `json:"id,omitempty"`
	DocumentID string     `json:"documentId,omitempty"`
	Name       string     `json:"name,omitempty"`
	Email      string     `json:"email,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	BirthDate  *time.Time `json:"birthDate,omitempty"`
}

// TransitionRequest payload for status changes.
type TransitionRequest struct {
	NewStatus string         `json:"newStatus"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Entry     *EntryRequest  `json:"entry,omitempty"`
}

// EntryRequest describes the venue entry recorded on a UTILIZADO
// transition. An omitted timestamp defaults to the transition instant.
type EntryRequest struct {
	Timestamp   *time.Time `json:"timestamp,omitempty"`
	Location    string     `json:"location"`
	ValidatedBy string     `json:"validatedBy"`
}

// ValidateTokenRequest payload.
type ValidateTokenRequest struct {
	Token   string `json:"token"`
	EventID string `json:"eventId"`
}

// ValidateTokenResponse reports the verification outcome.
type ValidateTokenResponse struct {
	Valid  bool            `json:"valid"`
	Ticket *TicketResponse `json:"ticket,omitempty"`
}

// TicketResponse is the full ticket representation.
type TicketResponse struct {
	ID           string                `json:"id"`
	TemplateID   string                `json:"templateId"`
	ClientID     string                `json:"clientId"`
	EventID      string                `json:"eventId"`
	Token        string                `json:"token"`
	Price        decimal.Decimal       `json:"price"`
	IssueDate    time.Time             `json:"issueDate"`
	PurchaseDate time.Time             `json:"purchaseDate"`
	Status       domain.TicketStatus   `json:"status"`
	Entry        *EntryResponse        `json:"entry,omitempty"`
	History      []TicketEventResponse `json:"history"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

// EntryResponse mirrors the stored entry record.
type EntryResponse struct {
	Timestamp   time.Time `json:"timestamp"`
	Location    string    `json:"location"`
	ValidatedBy string    `json:"validatedBy"`
}

// TicketEventResponse is one audit history event.
type TicketEventResponse struct {
	Type           domain.TicketEventType `json:"type"`
	Timestamp      time.Time              `json:"timestamp"`
	PreviousStatus domain.TicketStatus    `json:"previousStatus,omitempty"`
	NewStatus      domain.TicketStatus    `json:"newStatus"`
	UserID         string                 `json:"userId,omitempty"`
	Metadata       map[string]any         `json:"metadata,omitempty"`
}
