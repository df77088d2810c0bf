// Package lifecycle enforces the ticket status state machine and produces
// the audit events each transition appends to the ticket history.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/venuepass/ticketing-service/internal/domain"
	"github.com/venuepass/ticketing-service/pkg/util/errorutil"
)

// DefaultCancellationReason is recorded when an ANULADO transition carries
// no reason.
const DefaultCancellationReason = "No especificado"

var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusPendiente: {domain.TicketStatusPagado, domain.TicketStatusAnulado},
	domain.TicketStatusPagado:    {domain.TicketStatusUtilizado, domain.TicketStatusAnulado},
	domain.TicketStatusUtilizado: {domain.TicketStatusAnulado},
	domain.TicketStatusAnulado:   {},
}

// CanTransition reports whether moving from current to next is legal.
// Legality depends on the two statuses alone.
func CanTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// AllowedFrom returns the legal targets from a status.
func AllowedFrom(current domain.TicketStatus) []domain.TicketStatus {
	return append([]domain.TicketStatus(nil), allowedTransitions[current]...)
}

// Apply performs one status transition on the ticket: it validates legality,
// applies the target-state side effects, appends exactly one
// CAMBIO_DE_ESTADO event to the history and returns the partial update to
// persist. The caller supplies the clock so transitions are reproducible in
// tests; Apply reads no ambient time itself.
func Apply(ticket *domain.Ticket, newStatus domain.TicketStatus, actorID string, metadata map[string]any, entry *domain.Entry, now time.Time) (domain.TicketUpdate, domain.TicketEvent, error) {
	if !CanTransition(ticket.Status, newStatus) {
		return domain.TicketUpdate{}, domain.TicketEvent{}, errorutil.NewPreconditionFailed(
			fmt.Sprintf("cannot transition ticket from %s to %s", ticket.Status, newStatus),
			map[string]any{"currentStatus": ticket.Status, "newStatus": newStatus},
		)
	}

	event := domain.TicketEvent{
		Type:           domain.TicketEventCambioDeEstado,
		Timestamp:      now,
		PreviousStatus: ticket.Status,
		NewStatus:      newStatus,
		UserID:         actorID,
		Metadata:       map[string]any{},
	}
	status := newStatus
	update := domain.TicketUpdate{Status: &status}

	switch newStatus {
	case domain.TicketStatusPagado:
		purchaseDate := now
		update.PurchaseDate = &purchaseDate
		event.Metadata["purchaseDate"] = purchaseDate
	case domain.TicketStatusUtilizado:
		update.Entry = entry
		event.Metadata["entry"] = entry
	case domain.TicketStatusAnulado:
		reason := DefaultCancellationReason
		if r, ok := metadata["reason"].(string); ok && r != "" {
			reason = r
		}
		event.Metadata["cancellationReason"] = reason
	}

	if err := ticket.AppendEvent(event); err != nil {
		return domain.TicketUpdate{}, domain.TicketEvent{}, err
	}
	if newStatus == domain.TicketStatusUtilizado {
		ticket.Entry = entry
	}
	if update.PurchaseDate != nil {
		ticket.PurchaseDate = *update.PurchaseDate
	}
	update.History = ticket.History

	return update, event, nil
}
