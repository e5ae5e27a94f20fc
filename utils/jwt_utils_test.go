package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestParseToken(t *testing.T) {
	signed := signToken(t, "test-secret", jwt.MapClaims{"user_id": float64(42)})

	id, err := ParseToken(signed, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestParseTokenWrongSecret(t *testing.T) {
	signed := signToken(t, "test-secret", jwt.MapClaims{"user_id": float64(42)})

	_, err := ParseToken(signed, "other-secret")
	assert.Error(t, err)
}

func TestParseTokenMissingClaim(t *testing.T) {
	signed := signToken(t, "test-secret", jwt.MapClaims{"sub": "42"})

	_, err := ParseToken(signed, "test-secret")
	assert.Error(t, err)
}

func TestParseTokenGarbage(t *testing.T) {
	_, err := ParseToken("not-a-token", "test-secret")
	assert.Error(t, err)
}
