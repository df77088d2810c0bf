package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// TicketStatus enumerates lifecycle states for issued tickets.
type TicketStatus string

const (
	TicketStatusPendiente TicketStatus = "PENDIENTE"
	TicketStatusPagado    TicketStatus = "PAGADO"
	TicketStatusUtilizado TicketStatus = "UTILIZADO"
	TicketStatusAnulado   TicketStatus = "ANULADO"
)

// TicketStatuses lists every valid status value.
func TicketStatuses() []TicketStatus {
	return []TicketStatus{
		TicketStatusPendiente,
		TicketStatusPagado,
		TicketStatusUtilizado,
		TicketStatusAnulado,
	}
}

// IsValidTicketStatus reports whether s is a known status value.
func IsValidTicketStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusPendiente, TicketStatusPagado, TicketStatusUtilizado, TicketStatusAnulado:
		return true
	}
	return false
}

// Entry records the physical admission of a ticket holder. It is set
// exactly once, on the transition to UTILIZADO.
type Entry struct {
	Timestamp   time.Time `json:"timestamp"`
	Location    string    `json:"location"`
	ValidatedBy string    `json:"validatedBy"`
}

// Ticket is the aggregate for issued tickets. Token and Price are fixed at
// issuance: the token is never regenerated and the price is a copy of the
// template price at that moment, so later template edits never affect
// already-issued tickets.
type Ticket struct {
	ID           string
	TemplateID   string
	ClientID     string
	EventID      string
	Token        string
	Price        decimal.Decimal
	IssueDate    time.Time
	PurchaseDate time.Time
	Status       TicketStatus
	Entry        *Entry
	History      []TicketEvent
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var (
	// ErrHistoryMustStartWithCreado rejects a first history event that is
	// not the issuance record.
	ErrHistoryMustStartWithCreado = errors.New("ticket history must start with a CREADO event")
	// ErrHistoryEventUntimestamped rejects events without a timestamp.
	ErrHistoryEventUntimestamped = errors.New("ticket history event requires a timestamp")
)

// AppendEvent appends one audit event to the ticket history. The history is
// append-only and insertion-ordered: the first event must be CREADO with
// NewStatus PENDIENTE, and events are never removed or reordered. When the
// event carries a NewStatus the ticket status is synced to it, keeping the
// invariant that Status always equals the last event's NewStatus.
func (t *Ticket) AppendEvent(ev TicketEvent) error {
	if ev.Timestamp.IsZero() {
		return ErrHistoryEventUntimestamped
	}
	if len(t.History) == 0 {
		if ev.Type != TicketEventCreado || ev.NewStatus != TicketStatusPendiente {
			return ErrHistoryMustStartWithCreado
		}
	}
	t.History = append(t.History, ev)
	if ev.NewStatus != "" {
		t.Status = ev.NewStatus
	}
	return nil
}

// LastEvent returns the most recent history event, or nil for a ticket with
// no history (which only occurs for partially hydrated rows).
func (t *Ticket) LastEvent() *TicketEvent {
	if len(t.History) == 0 {
		return nil
	}
	return &t.History[len(t.History)-1]
}

// TicketUpdate is a partial-merge update for the ticket row. Nil fields are
// left untouched by the repository.
type TicketUpdate struct {
	Status       *TicketStatus
	PurchaseDate *time.Time
	Entry        *Entry
	History      []TicketEvent
}
