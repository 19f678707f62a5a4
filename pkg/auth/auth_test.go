package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour, "stock-ledger")

	token, err := m.GenerateToken(7, "alice", "employee")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "employee", claims.Role)
}

func TestValidateToken_Rejects(t *testing.T) {
	m := NewTokenManager("secret", time.Hour, "stock-ledger")

	other, err := NewTokenManager("other-secret", time.Hour, "stock-ledger").GenerateToken(1, "mallory", "admin")
	require.NoError(t, err)
	_, err = m.ValidateToken(other)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewTokenManager("secret", -time.Minute, "stock-ledger").GenerateToken(1, "alice", "admin")
	require.NoError(t, err)
	_, err = m.ValidateToken(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	foreign, err := NewTokenManager("secret", time.Hour, "someone-else").GenerateToken(1, "alice", "admin")
	require.NoError(t, err)
	_, err = m.ValidateToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"username": "alice"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.ValidateToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ValidateToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPassword(t *testing.T) {
	hashed, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hashed)
	assert.True(t, CheckPassword(hashed, "hunter22"))
	assert.False(t, CheckPassword(hashed, "hunter23"))
}
