package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuepass/ticketing-service/internal/domain"
	"github.com/venuepass/ticketing-service/pkg/util/errorutil"
)

var testClock = time.Date(2025, 7, 1, 18, 30, 0, 0, time.UTC)

func issuedTicket(t *testing.T, status domain.TicketStatus) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{
		ID:         "tk1",
		TemplateID: "t1",
		ClientID:   "c1",
		EventID:    "e1",
		Status:     domain.TicketStatusPendiente,
		IssueDate:  testClock.Add(-time.Hour),
	}
	require.NoError(t, ticket.AppendEvent(domain.TicketEvent{
		Type:      domain.TicketEventCreado,
		Timestamp: testClock.Add(-time.Hour),
		NewStatus: domain.TicketStatusPendiente,
		UserID:    "operator1",
	}))
	// walk the ticket to the requested starting status
	switch status {
	case domain.TicketStatusPagado, domain.TicketStatusUtilizado:
		_, _, err := Apply(ticket, domain.TicketStatusPagado, "operator1", nil, nil, testClock.Add(-30*time.Minute))
		require.NoError(t, err)
	}
	if status == domain.TicketStatusUtilizado {
		entry := &domain.Entry{Timestamp: testClock.Add(-10 * time.Minute), Location: "Main Gate", ValidatedBy: "operator1"}
		_, _, err := Apply(ticket, domain.TicketStatusUtilizado, "operator1", nil, entry, testClock.Add(-10*time.Minute))
		require.NoError(t, err)
	}
	if status == domain.TicketStatusAnulado {
		_, _, err := Apply(ticket, domain.TicketStatusAnulado, "operator1", nil, nil, testClock.Add(-5*time.Minute))
		require.NoError(t, err)
	}
	require.Equal(t, status, ticket.Status)
	return ticket
}

func TestTransitionTable(t *testing.T) {
	legal := map[domain.TicketStatus][]domain.TicketStatus{
		domain.TicketStatusPendiente: {domain.TicketStatusPagado, domain.TicketStatusAnulado},
		domain.TicketStatusPagado:    {domain.TicketStatusUtilizado, domain.TicketStatusAnulado},
		domain.TicketStatusUtilizado: {domain.TicketStatusAnulado},
		domain.TicketStatusAnulado:   {},
	}

	for _, current := range domain.TicketStatuses() {
		for _, next := range domain.TicketStatuses() {
			allowed := false
			for _, candidate := range legal[current] {
				if candidate == next {
					allowed = true
				}
			}
			assert.Equal(t, allowed, CanTransition(current, next), "%s -> %s", current, next)
		}
	}
}

func TestApplyRejectsIllegalTransitions(t *testing.T) {
	for _, current := range domain.TicketStatuses() {
		for _, next := range domain.TicketStatuses() {
			if CanTransition(current, next) {
				continue
			}
			ticket := issuedTicket(t, current)
			before := len(ticket.History)

			_, _, err := Apply(ticket, next, "u1", nil, nil, testClock)
			require.Error(t, err, "%s -> %s", current, next)
			assert.True(t, errorutil.IsPreconditionFailed(err))
			assert.Equal(t, current, ticket.Status)
			assert.Len(t, ticket.History, before)
		}
	}
}

func TestApplyAppendsExactlyOneHistoryEvent(t *testing.T) {
	for _, current := range domain.TicketStatuses() {
		for _, next := range AllowedFrom(current) {
			ticket := issuedTicket(t, current)
			before := len(ticket.History)

			_, event, err := Apply(ticket, next, "u1", nil, nil, testClock)
			require.NoError(t, err, "%s -> %s", current, next)

			require.Len(t, ticket.History, before+1)
			assert.Equal(t, domain.TicketEventCambioDeEstado, event.Type)
			assert.Equal(t, current, event.PreviousStatus)
			assert.Equal(t, next, event.NewStatus)
			assert.Equal(t, "u1", event.UserID)
			assert.Equal(t, testClock, event.Timestamp)
			assert.Equal(t, next, ticket.Status)
			assert.Equal(t, event, ticket.History[len(ticket.History)-1])
		}
	}
}

func TestPendienteCannotGoDirectlyToUtilizado(t *testing.T) {
	ticket := issuedTicket(t, domain.TicketStatusPendiente)

	_, _, err := Apply(ticket, domain.TicketStatusUtilizado, "u1", nil, nil, testClock)
	require.Error(t, err)
	assert.True(t, errorutil.IsPreconditionFailed(err))
}

func TestPagadoSetsPurchaseDate(t *testing.T) {
	ticket := issuedTicket(t, domain.TicketStatusPendiente)

	update, event, err := Apply(ticket, domain.TicketStatusPagado, "u1", nil, nil, testClock)
	require.NoError(t, err)

	require.NotNil(t, update.PurchaseDate)
	assert.Equal(t, testClock, *update.PurchaseDate)
	assert.Equal(t, testClock, ticket.PurchaseDate)
	assert.Equal(t, testClock, event.Metadata["purchaseDate"])
}

func TestUtilizadoRecordsEntry(t *testing.T) {
	ticket := issuedTicket(t, domain.TicketStatusPagado)
	entry := &domain.Entry{
		Timestamp:   testClock,
		Location:    "Main Gate",
		ValidatedBy: "u1",
	}

	update, event, err := Apply(ticket, domain.TicketStatusUtilizado, "u1", nil, entry, testClock)
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusUtilizado, ticket.Status)
	assert.Equal(t, entry, ticket.Entry)
	assert.Equal(t, entry, update.Entry)
	assert.Equal(t, entry, event.Metadata["entry"])
}

func TestAnuladoRecordsCancellationReason(t *testing.T) {
	ticket := issuedTicket(t, domain.TicketStatusPagado)
	_, event, err := Apply(ticket, domain.TicketStatusAnulado, "u1", map[string]any{"reason": "refund requested"}, nil, testClock)
	require.NoError(t, err)
	assert.Equal(t, "refund requested", event.Metadata["cancellationReason"])

	ticket = issuedTicket(t, domain.TicketStatusPagado)
	_, event, err = Apply(ticket, domain.TicketStatusAnulado, "u1", nil, nil, testClock)
	require.NoError(t, err)
	assert.Equal(t, DefaultCancellationReason, event.Metadata["cancellationReason"])
}

func TestApplyReturnsFullHistoryForPersistence(t *testing.T) {
	ticket := issuedTicket(t, domain.TicketStatusPendiente)

	update, _, err := Apply(ticket, domain.TicketStatusPagado, "u1", nil, nil, testClock)
	require.NoError(t, err)

	require.Len(t, update.History, 2)
	assert.Equal(t, domain.TicketEventCreado, update.History[0].Type)
	assert.Equal(t, domain.TicketEventCambioDeEstado, update.History[1].Type)
	require.NotNil(t, update.Status)
	assert.Equal(t, domain.TicketStatusPagado, *update.Status)
}
