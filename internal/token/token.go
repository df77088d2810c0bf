// Package token signs and verifies the event-scoped tickets tokens. A token
// binds the issuance facts (event, template, client, issuance instant) under
// the issuing event's secret, so authenticity is checkable without a
// database round trip for the signature itself.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/venuepass/ticketing-service/internal/domain"
)

// DefaultTTL models "tickets normally do not expire": one year.
const DefaultTTL = 365 * 24 * time.Hour

const secretLength = 32

// TicketPayload carries the issuance facts bound into a token. No other
// claims are added beyond the expiration horizon.
type TicketPayload struct {
	EventID    string
	TemplateID string
	ClientID   string
	Timestamp  time.Time
}

// TicketClaims is the wire shape of a ticket token.
type TicketClaims struct {
	EventID    string `json:"eventId"`
	TemplateID string `json:"templateId"`
	ClientID   string `json:"clientId"`
	Timestamp  int64  `json:"timestamp"`
	jwt.RegisteredClaims
}

// Service derives per-event signing keys and produces/verifies ticket
// tokens.
type Service struct {
	signer         Signer
	fallbackSecret []byte
	now            func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithSigner swaps the signing primitive.
func WithSigner(signer Signer) Option {
	return func(s *Service) { s.signer = signer }
}

// WithClock injects a fixed clock for expiry tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds a token service with the process-wide fallback secret
// used for events predating per-event secrets.
func NewService(fallbackSecret string, opts ...Option) *Service {
	s := &Service{
		signer:         NewHMACSigner(),
		fallbackSecret: []byte(fallbackSecret),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// KeyForEvent returns the signing key for an event: its own secret when
// present, else the process-wide fallback. usedFallback lets callers log
// legacy events still signing with the shared secret.
func (s *Service) KeyForEvent(event *domain.Event) (key []byte, usedFallback bool) {
	if event != nil && event.TokenSecret != "" {
		return []byte(event.TokenSecret), false
	}
	return s.fallbackSecret, true
}

// Sign produces a signed token over exactly the payload's four facts with
// the given expiration horizon. A non-positive ttl falls back to DefaultTTL.
func (s *Service) Sign(payload TicketPayload, key []byte, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	issuedAt := payload.Timestamp
	if issuedAt.IsZero() {
		issuedAt = s.now()
	}
	claims := &TicketClaims{
		EventID:    payload.EventID,
		TemplateID: payload.TemplateID,
		ClientID:   payload.ClientID,
		Timestamp:  issuedAt.UnixMilli(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	}
	return s.signer.Sign(claims, key)
}

// Verify reports whether the token's signature validates against key and
// the token has not expired. It deliberately does not check that the claims
// still match any stored ticket: callers needing binding integrity compare
// the persisted ticket's eventId/templateId/clientId against Claims.
func (s *Service) Verify(tokenStr string, key []byte) bool {
	var claims TicketClaims
	return s.signer.Parse(tokenStr, key, &claims, s.now) == nil
}

// Claims parses and verifies the token, returning its payload for binding
// checks against stored state.
func (s *Service) Claims(tokenStr string, key []byte) (*TicketClaims, error) {
	var claims TicketClaims
	if err := s.signer.Parse(tokenStr, key, &claims, s.now); err != nil {
		return nil, err
	}
	return &claims, nil
}

// GenerateEventSecret returns a fresh 32-byte hex-encoded secret for a new
// event.
func GenerateEventSecret() (string, error) {
	buf := make([]byte, secretLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
