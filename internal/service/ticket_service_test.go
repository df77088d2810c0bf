package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuepass/ticketing-service/internal/domain"
	"github.com/venuepass/ticketing-service/internal/token"
	"github.com/venuepass/ticketing-service/pkg/util/errorutil"
)

var issuedAt = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return issuedAt }

type fakeTicketRepo struct {
	byID    map[string]*domain.Ticket
	updates int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{byID: map[string]*domain.Ticket{}}
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	for _, existing := range f.byID {
		if existing.Token == ticket.Token {
			return errorutil.NewConflict("ticket token already exists", nil)
		}
	}
	ticket.ID = uuid.NewString()
	ticket.CreatedAt = issuedAt
	ticket.UpdatedAt = issuedAt
	stored := *ticket
	f.byID[ticket.ID] = &stored
	return nil
}

func (f *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket, update domain.TicketUpdate) error {
	stored, ok := f.byID[ticket.ID]
	if !ok {
		return errorutil.NewNotFound("ticket", nil)
	}
	if !stored.UpdatedAt.Equal(ticket.UpdatedAt) {
		return errorutil.NewConflict("ticket was modified concurrently", nil)
	}
	if update.Status != nil {
		stored.Status = *update.Status
	}
	if update.PurchaseDate != nil {
		stored.PurchaseDate = *update.PurchaseDate
	}
	if update.Entry != nil {
		stored.Entry = update.Entry
	}
	if update.History != nil {
		stored.History = update.History
	}
	stored.UpdatedAt = stored.UpdatedAt.Add(time.Second)
	ticket.UpdatedAt = stored.UpdatedAt
	f.updates++
	return nil
}

func (f *fakeTicketRepo) FindByID(_ context.Context, id string) (*domain.Ticket, error) {
	stored, ok := f.byID[id]
	if !ok {
		return nil, errorutil.NewNotFound("ticket", nil)
	}
	clone := *stored
	return &clone, nil
}

func (f *fakeTicketRepo) FindByToken(_ context.Context, tokenStr string) (*domain.Ticket, error) {
	for _, stored := range f.byID {
		if stored.Token == tokenStr {
			clone := *stored
			return &clone, nil
		}
	}
	return nil, errorutil.NewNotFound("ticket", nil)
}

func (f *fakeTicketRepo) ListByEvent(_ context.Context, eventID string) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, stored := range f.byID {
		if stored.EventID == eventID {
			result = append(result, *stored)
		}
	}
	return result, nil
}

func (f *fakeTicketRepo) ListByClient(_ context.Context, clientID string) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, stored := range f.byID {
		if stored.ClientID == clientID {
			result = append(result, *stored)
		}
	}
	return result, nil
}

type fakeTemplateRepo struct {
	byID map[string]*domain.TicketTemplate
}

func (f *fakeTemplateRepo) FindByID(_ context.Context, id string) (*domain.TicketTemplate, error) {
	template, ok := f.byID[id]
	if !ok {
		return nil, errorutil.NewNotFound("ticket template", nil)
	}
	return template, nil
}

func (f *fakeTemplateRepo) Create(_ context.Context, template *domain.TicketTemplate) error {
	template.ID = uuid.NewString()
	f.byID[template.ID] = template
	return nil
}

func (f *fakeTemplateRepo) ListByEvent(_ context.Context, eventID string) ([]domain.TicketTemplate, error) {
	var result []domain.TicketTemplate
	for _, template := range f.byID {
		if template.EventID == eventID {
			result = append(result, *template)
		}
	}
	return result, nil
}

type fakeEventRepo struct {
	byID map[string]*domain.Event
}

func (f *fakeEventRepo) FindByID(_ context.Context, id string) (*domain.Event, error) {
	event, ok := f.byID[id]
	if !ok {
		return nil, errorutil.NewNotFound("event", nil)
	}
	return event, nil
}

func (f *fakeEventRepo) Create(_ context.Context, event *domain.Event) error {
	event.ID = uuid.NewString()
	f.byID[event.ID] = event
	return nil
}

func (f *fakeEventRepo) ListActive(_ context.Context) ([]domain.Event, error) {
	var result []domain.Event
	for _, event := range f.byID {
		if event.IsActive {
			result = append(result, *event)
		}
	}
	return result, nil
}

func (f *fakeEventRepo) SetActive(_ context.Context, id string, active bool) error {
	event, ok := f.byID[id]
	if !ok {
		return errorutil.NewNotFound("event", nil)
	}
	event.IsActive = active
	return nil
}

type fakeClientRepo struct {
	byDoc   map[string]*domain.Client
	created int

	// conflictWinner, when set, makes Create fail with CONFLICT after
	// registering the winner, simulating a concurrent request inserting the
	// same document id between lookup and insert.
	conflictWinner *domain.Client
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{byDoc: map[string]*domain.Client{}}
}

func (f *fakeClientRepo) FindByID(_ context.Context, id string) (*domain.Client, error) {
	for _, client := range f.byDoc {
		if client.ID == id {
			return client, nil
		}
	}
	return nil, errorutil.NewNotFound("client", nil)
}

func (f *fakeClientRepo) FindByDocumentID(_ context.Context, documentID string) (*domain.Client, error) {
	client, ok := f.byDoc[documentID]
	if !ok {
		return nil, errorutil.NewNotFound("client", nil)
	}
	return client, nil
}

func (f *fakeClientRepo) FindByEmail(_ context.Context, email string) (*domain.Client, error) {
	for _, client := range f.byDoc {
		if client.Email == email {
			return client, nil
		}
	}
	return nil, errorutil.NewNotFound("client", nil)
}

func (f *fakeClientRepo) Create(_ context.Context, client *domain.Client) error {
	if f.conflictWinner != nil {
		f.byDoc[f.conflictWinner.DocumentID] = f.conflictWinner
		f.conflictWinner = nil
		return errorutil.NewConflict("client document id already exists", nil)
	}
	if _, exists := f.byDoc[client.DocumentID]; exists {
		return errorutil.NewConflict("client document id already exists", nil)
	}
	client.ID = uuid.NewString()
	f.byDoc[client.DocumentID] = client
	f.created++
	return nil
}

type ticketFixture struct {
	service  *TicketService
	tickets  *fakeTicketRepo
	clients  *fakeClientRepo
	events   *fakeEventRepo
	tokens   *token.Service
	event    *domain.Event
	template *domain.TicketTemplate
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()

	events := &fakeEventRepo{byID: map[string]*domain.Event{}}
	event := &domain.Event{
		Name:        "Concierto de Primavera",
		Date:        issuedAt.Add(30 * 24 * time.Hour),
		IsActive:    true,
		TokenSecret: "0b54622580bd453e9f3fe7077065b9bc0b54622580bd453e9f3fe7077065b9bc",
	}
	require.NoError(t, events.Create(context.Background(), event))

	templates := &fakeTemplateRepo{byID: map[string]*domain.TicketTemplate{}}
	template := &domain.TicketTemplate{
		EventID:  event.ID,
		Name:     "General",
		Price:    decimal.NewFromFloat(45.50),
		IsActive: true,
	}
	require.NoError(t, templates.Create(context.Background(), template))

	tickets := newFakeTicketRepo()
	clients := newFakeClientRepo()
	tokens := token.NewService("fallback-secret", token.WithClock(fixedClock))

	svc := NewTicketService(TicketDependencies{
		TicketRepo:   tickets,
		TemplateRepo: templates,
		EventRepo:    events,
		ClientRepo:   clients,
		Tokens:       tokens,
		Clock:        fixedClock,
	}, IssueTicketSchema())

	return &ticketFixture{
		service:  svc,
		tickets:  tickets,
		clients:  clients,
		events:   events,
		tokens:   tokens,
		event:    event,
		template: template,
	}
}

func (f *ticketFixture) issueInput() IssueTicketInput {
	return IssueTicketInput{
		TemplateID: f.template.ID,
		EventID:    f.event.ID,
		Client:     IssueClientInput{DocumentID: "30111222", Name: "Juan"},
	}
}

func TestIssueCreatesPendingTicketWithCreationEvent(t *testing.T) {
	f := newTicketFixture(t)

	ticket, err := f.service.Issue(context.Background(), f.issueInput(), "operator1")
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusPendiente, ticket.Status)
	require.Len(t, ticket.History, 1)
	assert.Equal(t, domain.TicketEventCreado, ticket.History[0].Type)
	assert.Equal(t, "operator1", ticket.History[0].UserID)
	assert.Equal(t, issuedAt, ticket.History[0].Timestamp)
	assert.True(t, ticket.Price.Equal(f.template.Price))
	assert.Equal(t, issuedAt, ticket.IssueDate)

	key, usedFallback := f.tokens.KeyForEvent(f.event)
	assert.False(t, usedFallback)
	assert.True(t, f.tokens.Verify(ticket.Token, key))

	claims, err := f.tokens.Claims(ticket.Token, key)
	require.NoError(t, err)
	assert.Equal(t, f.event.ID, claims.EventID)
	assert.Equal(t, f.template.ID, claims.TemplateID)
	assert.Equal(t, ticket.ClientID, claims.ClientID)
}

func TestIssueCreatesClientLazily(t *testing.T) {
	f := newTicketFixture(t)

	ticket, err := f.service.Issue(context.Background(), f.issueInput(), "operator1")
	require.NoError(t, err)

	assert.Equal(t, 1, f.clients.created)
	stored, err := f.clients.FindByDocumentID(context.Background(), "30111222")
	require.NoError(t, err)
	assert.Equal(t, stored.ID, ticket.ClientID)
	assert.Equal(t, "Juan", stored.Name)
}

func TestIssueReusesExistingClient(t *testing.T) {
	f := newTicketFixture(t)
	existing := &domain.Client{Name: "Juan", DocumentID: "30111222", BirthDate: issuedAt.AddDate(-30, 0, 0)}
	require.NoError(t, f.clients.Create(context.Background(), existing))
	f.clients.created = 0

	ticket, err := f.service.Issue(context.Background(), f.issueInput(), "operator1")
	require.NoError(t, err)

	assert.Equal(t, existing.ID, ticket.ClientID)
	assert.Zero(t, f.clients.created)
}

func TestIssueRetriesLookupWhenClientCreateConflicts(t *testing.T) {
	f := newTicketFixture(t)
	winner := &domain.Client{ID: uuid.NewString(), Name: "Juan", DocumentID: "30111222"}
	f.clients.conflictWinner = winner

	ticket, err := f.service.Issue(context.Background(), f.issueInput(), "operator1")
	require.NoError(t, err)
	assert.Equal(t, winner.ID, ticket.ClientID)
}

func TestIssueRejectsInvalidRequest(t *testing.T) {
	f := newTicketFixture(t)

	input := f.issueInput()
	input.TemplateID = ""
	_, err := f.service.Issue(context.Background(), input, "operator1")
	assert.True(t, errorutil.IsValidation(err))

	input = f.issueInput()
	input.Client = IssueClientInput{}
	_, err = f.service.Issue(context.Background(), input, "operator1")
	assert.True(t, errorutil.IsValidation(err))
}

func TestIssueRequiresNameForUnknownClient(t *testing.T) {
	f := newTicketFixture(t)

	input := f.issueInput()
	input.Client.Name = ""
	_, err := f.service.Issue(context.Background(), input, "operator1")
	assert.True(t, errorutil.IsValidation(err))
	assert.Empty(t, f.tickets.byID)
}

func TestIssueFailsForUnknownTemplateOrEvent(t *testing.T) {
	f := newTicketFixture(t)

	input := f.issueInput()
	input.TemplateID = uuid.NewString()
	_, err := f.service.Issue(context.Background(), input, "operator1")
	assert.True(t, errorutil.IsNotFound(err))

	input = f.issueInput()
	input.EventID = uuid.NewString()
	_, err = f.service.Issue(context.Background(), input, "operator1")
	assert.True(t, errorutil.IsNotFound(err))
	assert.Empty(t, f.tickets.byID)
}

func TestIssueRejectsInactiveEvent(t *testing.T) {
	f := newTicketFixture(t)
	f.event.IsActive = false

	_, err := f.service.Issue(context.Background(), f.issueInput(), "operator1")
	assert.True(t, errorutil.IsPreconditionFailed(err))
	assert.Empty(t, f.tickets.byID)
}

func TestIssueRejectsPastEvent(t *testing.T) {
	f := newTicketFixture(t)
	f.event.Date = issuedAt.Add(-time.Hour)

	_, err := f.service.Issue(context.Background(), f.issueInput(), "operator1")
	assert.True(t, errorutil.IsPreconditionFailed(err))
	assert.Empty(t, f.tickets.byID)
}

func TestIssueFallsBackToProcessSecret(t *testing.T) {
	f := newTicketFixture(t)
	f.event.TokenSecret = ""

	ticket, err := f.service.Issue(context.Background(), f.issueInput(), "operator1")
	require.NoError(t, err)

	key, usedFallback := f.tokens.KeyForEvent(f.event)
	assert.True(t, usedFallback)
	assert.True(t, f.tokens.Verify(ticket.Token, key))
}

func TestTransitionPersistsStatusAndHistory(t *testing.T) {
	f := newTicketFixture(t)
	issued, err := f.service.Issue(context.Background(), f.issueInput(), "operator1")
	require.NoError(t, err)

	paid, err := f.service.Transition(context.Background(), issued.ID, domain.TicketStatusPagado, "operator2",
		map[string]any{"paymentMethod": "card"}, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusPagado, paid.Status)
	require.Len(t, paid.History, 2)
	assert.Equal(t, domain.TicketEventCambioDeEstado, paid.History[1].Type)
	assert.Equal(t, domain.TicketStatusPendiente, paid.History[1].PreviousStatus)
	assert.Equal(t, domain.TicketStatusPagado, paid.History[1].NewStatus)

	stored, err := f.tickets.FindByID(context.Background(), issued.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusPagado, stored.Status)
	assert.Len(t, stored.History, 2)
}

func TestTransitionRecordsEntryOnUse(t *testing.T) {
	f := newTicketFixture(t)
	issued, err := f.service.Issue(context.Background(), f.issueInput(), "operator1")
	require.NoError(t, err)
	_, err = f.service.Transition(context.Background(), issued.ID, domain.TicketStatusPagado, "operator1", nil, nil)
	require.NoError(t, err)

	entry := &domain.Entry{Timestamp: issuedAt, Location: "puerta norte", ValidatedBy: "operator3"}
	used, err := f.service.Transition(context.Background(), issued.ID, domain.TicketStatusUtilizado, "operator3", nil, entry)
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusUtilizado, used.Status)
	require.NotNil(t, used.Entry)
	assert.Equal(t, "puerta norte", used.Entry.Location)
}

func TestTransitionStampsEntryWhenTimestampOmitted(t *testing.T) {
	f := newTicketFixture(t)
	issued, err := f.service.Issue(context.Background(), f.issueInput(), "operator1")
	require.NoError(t, err)
	_, err = f.service.Transition(context.Background(), issued.ID, domain.TicketStatusPagado, "operator1", nil, nil)
	require.NoError(t, err)

	entry := &domain.Entry{Location: "puerta sur", ValidatedBy: "operator3"}
	used, err := f.service.Transition(context.Background(), issued.ID, domain.TicketStatusUtilizado, "operator3", nil, entry)
	require.NoError(t, err)

	require.NotNil(t, used.Entry)
	assert.Equal(t, issuedAt, used.Entry.Timestamp)

	stored, err := f.tickets.FindByID(context.Background(), issued.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Entry)
	assert.False(t, stored.Entry.Timestamp.IsZero())
	assert.Equal(t, issuedAt, stored.Entry.Timestamp)
}

func TestTransitionRejectsIllegalJump(t *testing.T) {
	f := newTicketFixture(t)
	issued, err := f.service.Issue(context.Background(), f.issueInput(), "operator1")
	require.NoError(t, err)

	_, err = f.service.Transition(context.Background(), issued.ID, domain.TicketStatusUtilizado, "operator1", nil, nil)
	assert.True(t, errorutil.IsPreconditionFailed(err))

	stored, err := f.tickets.FindByID(context.Background(), issued.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusPendiente, stored.Status)
	assert.Len(t, stored.History, 1)
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	f := newTicketFixture(t)
	issued, err := f.service.Issue(context.Background(), f.issueInput(), "operator1")
	require.NoError(t, err)

	_, err = f.service.Transition(context.Background(), issued.ID, domain.TicketStatus("PERDIDO"), "operator1", nil, nil)
	assert.True(t, errorutil.IsValidation(err))
	assert.Zero(t, f.tickets.updates)
}

func TestValidateTokenAcceptsIssuedTicket(t *testing.T) {
	f := newTicketFixture(t)
	issued, err := f.service.Issue(context.Background(), f.issueInput(), "operator1")
	require.NoError(t, err)

	result, err := f.service.ValidateToken(context.Background(), issued.Token, f.event.ID)
	require.NoError(t, err)
	assert.True(t, result.Valid)
	require.NotNil(t, result.Ticket)
	assert.Equal(t, issued.ID, result.Ticket.ID)
}

func TestValidateTokenUnknownTokenIsCleanNegative(t *testing.T) {
	f := newTicketFixture(t)

	result, err := f.service.ValidateToken(context.Background(), "not-a-known-token", f.event.ID)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Nil(t, result.Ticket)
}

func TestValidateTokenRejectsUsedTicket(t *testing.T) {
	f := newTicketFixture(t)
	issued, err := f.service.Issue(context.Background(), f.issueInput(), "operator1")
	require.NoError(t, err)
	_, err = f.service.Transition(context.Background(), issued.ID, domain.TicketStatusPagado, "operator1", nil, nil)
	require.NoError(t, err)
	_, err = f.service.Transition(context.Background(), issued.ID, domain.TicketStatusUtilizado, "operator1", nil, nil)
	require.NoError(t, err)

	_, err = f.service.ValidateToken(context.Background(), issued.Token, f.event.ID)
	assert.True(t, errorutil.IsPreconditionFailed(err))
}

func TestValidateTokenFlagsWrongEventKey(t *testing.T) {
	f := newTicketFixture(t)
	issued, err := f.service.Issue(context.Background(), f.issueInput(), "operator1")
	require.NoError(t, err)

	other := &domain.Event{
		Name:        "Otro Evento",
		Date:        issuedAt.Add(60 * 24 * time.Hour),
		IsActive:    true,
		TokenSecret: "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
	}
	require.NoError(t, f.events.Create(context.Background(), other))

	result, err := f.service.ValidateToken(context.Background(), issued.Token, other.ID)
	require.NoError(t, err)
	assert.False(t, result.Valid)
}
