package domain

import "time"

// TicketEventType captures what kind of audit record was appended.
type TicketEventType string

const (
	TicketEventCreado         TicketEventType = "CREADO"
	TicketEventCambioDeEstado TicketEventType = "CAMBIO_DE_ESTADO"
	TicketEventValidado       TicketEventType = "VALIDADO"
	TicketEventAnulado        TicketEventType = "ANULADO"
)

// TicketEvent is one immutable audit record in a ticket's history. The JSON
// tags define the shape persisted inside the ticket row's history column.
type TicketEvent struct {
	Type           TicketEventType `json:"type"`
	Timestamp      time.Time       `json:"timestamp"`
	PreviousStatus TicketStatus    `json:"previousStatus,omitempty"`
	NewStatus      TicketStatus    `json:"newStatus,omitempty"`
	UserID         string          `json:"userId,omitempty"`
	Metadata       map[string]any  `json:"metadata,omitempty"`
}
