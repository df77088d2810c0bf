package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/venuepass/ticketing-service/internal/domain"
)

var basePayload = TicketPayload{
	EventID:    "e1",
	TemplateID: "t1",
	ClientID:   "c1",
	Timestamp:  time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	svc := NewService("fallback-secret", WithClock(func() time.Time { return basePayload.Timestamp }))
	key := []byte("event-secret")

	tokenStr, err := svc.Sign(basePayload, key, 0)
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)

	assert.True(t, svc.Verify(tokenStr, key))
}

func TestVerifyFailsWithDifferentKey(t *testing.T) {
	svc := NewService("fallback-secret")

	tokenStr, err := svc.Sign(basePayload, []byte("event-secret"), 0)
	require.NoError(t, err)

	assert.False(t, svc.Verify(tokenStr, []byte("other-event-secret")))
}

func TestVerifyFailsPastExpirationHorizon(t *testing.T) {
	current := basePayload.Timestamp
	svc := NewService("fallback-secret", WithClock(func() time.Time { return current }))
	key := []byte("event-secret")

	tokenStr, err := svc.Sign(basePayload, key, time.Hour)
	require.NoError(t, err)

	assert.True(t, svc.Verify(tokenStr, key))

	current = basePayload.Timestamp.Add(2 * time.Hour)
	assert.False(t, svc.Verify(tokenStr, key))
}

func TestDefaultHorizonIsOneYear(t *testing.T) {
	current := basePayload.Timestamp
	svc := NewService("fallback-secret", WithClock(func() time.Time { return current }))
	key := []byte("event-secret")

	tokenStr, err := svc.Sign(basePayload, key, 0)
	require.NoError(t, err)

	current = basePayload.Timestamp.Add(364 * 24 * time.Hour)
	assert.True(t, svc.Verify(tokenStr, key))

	current = basePayload.Timestamp.Add(366 * 24 * time.Hour)
	assert.False(t, svc.Verify(tokenStr, key))
}

func TestClaimsExposeIssuanceFacts(t *testing.T) {
	svc := NewService("fallback-secret", WithClock(func() time.Time { return basePayload.Timestamp }))
	key := []byte("event-secret")

	tokenStr, err := svc.Sign(basePayload, key, 0)
	require.NoError(t, err)

	claims, err := svc.Claims(tokenStr, key)
	require.NoError(t, err)
	assert.Equal(t, "e1", claims.EventID)
	assert.Equal(t, "t1", claims.TemplateID)
	assert.Equal(t, "c1", claims.ClientID)
	assert.Equal(t, basePayload.Timestamp.UnixMilli(), claims.Timestamp)
}

func TestKeyForEventPrefersEventSecret(t *testing.T) {
	svc := NewService("fallback-secret")

	key, usedFallback := svc.KeyForEvent(&domain.Event{TokenSecret: "per-event"})
	assert.Equal(t, []byte("per-event"), key)
	assert.False(t, usedFallback)

	key, usedFallback = svc.KeyForEvent(&domain.Event{})
	assert.Equal(t, []byte("fallback-secret"), key)
	assert.True(t, usedFallback)
}

func TestFallbackKeyVerifiesLegacyEventTokens(t *testing.T) {
	svc := NewService("fallback-secret", WithClock(func() time.Time { return basePayload.Timestamp }))
	legacy := &domain.Event{ID: "e-legacy"}

	key, usedFallback := svc.KeyForEvent(legacy)
	require.True(t, usedFallback)

	tokenStr, err := svc.Sign(basePayload, key, 0)
	require.NoError(t, err)
	assert.True(t, svc.Verify(tokenStr, key))
}

func TestGenerateEventSecret(t *testing.T) {
	first, err := GenerateEventSecret()
	require.NoError(t, err)
	second, err := GenerateEventSecret()
	require.NoError(t, err)

	assert.Len(t, first, 64) // 32 bytes hex-encoded
	assert.NotEqual(t, first, second)
}
