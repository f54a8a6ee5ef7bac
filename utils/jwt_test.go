package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateJWT(t *testing.T) {
	m, err := NewTokenManager("secret", time.Hour)
	require.NoError(t, err)

	token, err := m.GenerateJWT("65f0c0ffee", "agent")
	require.NoError(t, err)

	claims, err := m.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "65f0c0ffee", claims.UserID)
	assert.Equal(t, "agent", claims.Role)
}

func TestValidateJWTExpired(t *testing.T) {
	m, err := NewTokenManager("secret", time.Minute)
	require.NoError(t, err)
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, err := m.GenerateJWT("id", "admin")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateJWT(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateJWTWrongKey(t *testing.T) {
	signer, _ := NewTokenManager("one", time.Hour)
	verifier, _ := NewTokenManager("two", time.Hour)

	token, err := signer.GenerateJWT("id", "admin")
	require.NoError(t, err)

	_, err = verifier.ValidateJWT(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestNewTokenManagerRequiresKey(t *testing.T) {
	_, err := NewTokenManager("", time.Hour)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("hunter2", hash))
	assert.False(t, CheckPasswordHash("hunter3", hash))
}
