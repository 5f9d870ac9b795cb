package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundtrip(t *testing.T) {
	token, exp, err := GenerateSessionToken("alice@example.com", "patient", "secret", 24*time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), exp, time.Minute)

	claims, err := ParseSessionToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "patient", claims.Role)

	_, err = ParseSessionToken(token, "other-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionTokenExpiry(t *testing.T) {
	token, _, err := GenerateSessionToken("alice@example.com", "patient", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseSessionToken(token, "secret")
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestGenerateOTP(t *testing.T) {
	assert.Empty(t, GenerateOTP(0))

	code := GenerateOTP(6)
	assert.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9')
	}
}
