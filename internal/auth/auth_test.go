package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewService("secret", time.Hour)
	token, err := svc.GenerateToken("bot")
	require.NoError(t, err)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "bot", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)

	_, err = svc.GenerateToken(" ")
	assert.Error(t, err)
}

func TestVerifyRejects(t *testing.T) {
	svc := NewService("secret", time.Hour)
	token, err := svc.GenerateToken("bot")
	require.NoError(t, err)

	_, err = NewService("other", time.Hour).VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.VerifyToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	later := NewService("secret", time.Hour)
	later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = later.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	tok, ok := BearerToken("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	_, ok = BearerToken("Basic abc")
	assert.False(t, ok)
	_, ok = BearerToken("")
	assert.False(t, ok)
}

func TestSessions(t *testing.T) {
	assert.True(t, Static(true).Authenticated())
	assert.False(t, Static(false).Authenticated())

	svc := NewService("secret", time.Hour)
	token, err := svc.GenerateToken("bot")
	require.NoError(t, err)
	assert.True(t, NewTokenSession(svc, token).Authenticated())
	assert.False(t, NewTokenSession(svc, "").Authenticated())
	assert.False(t, NewTokenSession(NewService("other", time.Hour), token).Authenticated())
}
