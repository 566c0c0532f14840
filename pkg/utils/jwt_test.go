package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", 0)

	token, err := m.GenerateToken(map[string]any{"email": "rahim@example.com", "name": "Rahim"})
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "rahim@example.com", EmailFromClaims(claims))
	assert.Equal(t, "Rahim", claims["name"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	iat, err := claims.GetIssuedAt()
	require.NoError(t, err)
	assert.Equal(t, AccessTokenTTL, exp.Sub(iat.Time))
}

func TestTokenValidForTwelveHours(t *testing.T) {
	issued := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	m := NewTokenManager("test-secret", AccessTokenTTL)
	m.now = func() time.Time { return issued }

	token, err := m.GenerateToken(map[string]any{"email": "e@example.com"})
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(11*time.Hour + 59*time.Minute) }
	_, err = m.ValidateToken(token)
	assert.NoError(t, err)

	m.now = func() time.Time { return issued.Add(12*time.Hour + time.Minute) }
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsTampering(t *testing.T) {
	m := NewTokenManager("test-secret", 0)
	token, err := m.GenerateToken(map[string]any{"email": "e@example.com"})
	require.NoError(t, err)

	other := NewTokenManager("another-secret", 0)
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	tampered := token[:len(token)-2] + "xx"
	if tampered == token {
		tampered = token[:len(token)-2] + "yy"
	}
	_, err = m.ValidateToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsOtherAlgorithms(t *testing.T) {
	m := NewTokenManager("test-secret", 0)
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"email": "e@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRequiresExpiry(t *testing.T) {
	m := NewTokenManager("test-secret", 0)
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": "e@example.com"})
	token, err := raw.SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestEmailFromClaims(t *testing.T) {
	assert.Equal(t, "", EmailFromClaims(jwt.MapClaims{}))
	assert.Equal(t, "", EmailFromClaims(jwt.MapClaims{"email": 42}))
}
