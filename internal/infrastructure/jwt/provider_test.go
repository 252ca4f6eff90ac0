package jwtinfra

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, clock clockwork.Clock) *Provider {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return NewProviderFromKeys(key, &key.PublicKey, time.Hour, clock)
}

func TestSignVerify_RoundTrip(t *testing.T) {
	p := newTestProvider(t, clockwork.NewRealClock())

	tok, err := p.Sign("u1", "s1", "ada@example.com")
	require.NoError(t, err)

	claims, err := p.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "s1", claims.SessionID)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestVerify_Expired(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	p := newTestProvider(t, clock)

	tok, err := p.Sign("u1", "s1", "ada@example.com")
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	_, err = p.Verify(tok)
	assert.Error(t, err)
}

func TestVerify_ForeignKeyRejected(t *testing.T) {
	signer := newTestProvider(t, clockwork.NewRealClock())
	verifier := newTestProvider(t, clockwork.NewRealClock())

	tok, err := signer.Sign("u1", "s1", "ada@example.com")
	require.NoError(t, err)
	_, err = verifier.Verify(tok)
	assert.Error(t, err)
}
