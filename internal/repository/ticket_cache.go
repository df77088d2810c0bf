package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/venuepass/ticketing-service/internal/domain"
)

const tokenCachePrefix = "ticket:token:"

// cachedTicketRepository decorates a TicketRepository with a Redis read
// cache on the token lookup, the hot path of gate validation. Entries are
// short-lived and dropped on every write so a stale status can outlive a
// transition by at most the TTL of an entry cached between the write and
// its invalidation.
type cachedTicketRepository struct {
	inner  TicketRepository
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedTicketRepository wraps inner with the token-lookup cache. A nil
// client returns inner unchanged.
func NewCachedTicketRepository(inner TicketRepository, client *redis.Client, ttl time.Duration, logger *zap.Logger) TicketRepository {
	if client == nil {
		return inner
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &cachedTicketRepository{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (r *cachedTicketRepository) FindByToken(ctx context.Context, token string) (*domain.Ticket, error) {
	key := tokenCachePrefix + token
	if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
		var ticket domain.Ticket
		if err := json.Unmarshal(raw, &ticket); err == nil {
			return &ticket, nil
		}
		r.client.Del(ctx, key)
	}

	ticket, err := r.inner.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(ticket); err == nil {
		if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
			r.logger.Warn("ticket cache set failed", zap.Error(err))
		}
	}
	return ticket, nil
}

func (r *cachedTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	return r.inner.Create(ctx, ticket)
}

func (r *cachedTicketRepository) Update(ctx context.Context, ticket *domain.Ticket, update domain.TicketUpdate) error {
	if err := r.inner.Update(ctx, ticket, update); err != nil {
		return err
	}
	if ticket.Token != "" {
		if err := r.client.Del(ctx, tokenCachePrefix+ticket.Token).Err(); err != nil {
			r.logger.Warn("ticket cache invalidation failed", zap.Error(err), zap.String("ticket_id", ticket.ID))
		}
	}
	return nil
}

func (r *cachedTicketRepository) FindByID(ctx context.Context, id string) (*domain.Ticket, error) {
	return r.inner.FindByID(ctx, id)
}

func (r *cachedTicketRepository) ListByEvent(ctx context.Context, eventID string) ([]domain.Ticket, error) {
	return r.inner.ListByEvent(ctx, eventID)
}

func (r *cachedTicketRepository) ListByClient(ctx context.Context, clientID string) ([]domain.Ticket, error) {
	return r.inner.ListByClient(ctx, clientID)
}
