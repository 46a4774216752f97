package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundtrip(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	token, expiresAt, err := m.Generate()
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, AdminSubject, claims.Subject)
}

func TestExpiredToken(t *testing.T) {
	m := NewTokenManager("test-secret", -time.Minute)

	token, _, err := m.Generate()
	require.NoError(t, err)

	_, err = m.Validate(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Hour)
	verifier := NewTokenManager("secret-b", time.Hour)

	token, _, err := issuer.Generate()
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTokenExpired)
}

func TestValidateGarbage(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	_, err := m.Validate("not.a.token")
	assert.Error(t, err)
}

func TestContentTypeValidation(t *testing.T) {
	for _, valid := range []string{"video", "news", "3d", "image"} {
		assert.True(t, IsValidContentType(valid), valid)
	}
	assert.False(t, IsValidContentType("hologram"))
	assert.False(t, IsValidContentType(""))
}

func TestEventTypeValidation(t *testing.T) {
	for _, valid := range []string{"scan", "viewDuration", "click", "share"} {
		assert.True(t, IsValidEventType(valid), valid)
	}
	assert.False(t, IsValidEventType("hover"))
	assert.False(t, IsValidEventType(""))
}
