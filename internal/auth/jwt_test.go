package auth_test

import (
	"testing"
	"time"

	"taskboard/internal/auth"
	"taskboard/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func newIssuer() *auth.TokenIssuer {
	return auth.NewTokenIssuer(config.AuthConfig{JWTSecret: testSecret, ExpiryHours: 24})
}

func sign(t *testing.T, claims jwt.MapClaims) string {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestGenerateAndParseToken(t *testing.T) {
	issuer := newIssuer()

	// Генерируем токен
	token, err := issuer.GenerateToken(42)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// Парсим токен
	userID, err := issuer.ParseToken(token)
	assert.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestParseToken_InvalidToken(t *testing.T) {
	_, err := newIssuer().ParseToken("invalid-token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
	assert.Equal(t, "invalid token", err.Error())
}

func TestParseToken_WrongSecret(t *testing.T) {
	other := auth.NewTokenIssuer(config.AuthConfig{JWTSecret: "other", ExpiryHours: 1})
	token, err := other.GenerateToken(1)
	require.NoError(t, err)

	_, err = newIssuer().ParseToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_ExpiredToken(t *testing.T) {
	// Токен истек 1 час назад
	expired := sign(t, jwt.MapClaims{
		"user_id": "1",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})

	_, err := newIssuer().ParseToken(expired)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseToken_MissingClaims(t *testing.T) {
	// Отсутствует "user_id"
	token := sign(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})

	_, err := newIssuer().ParseToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidClaims)
}

func TestParseToken_BadUserID(t *testing.T) {
	for _, id := range []any{"abc", "0", "-3", 5} {
		token := sign(t, jwt.MapClaims{"user_id": id, "exp": time.Now().Add(time.Hour).Unix()})
		_, err := newIssuer().ParseToken(token)
		assert.ErrorIs(t, err, auth.ErrInvalidUserID, "user_id %v", id)
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)
	assert.True(t, auth.CheckPassword(hash, "password123"))
	assert.False(t, auth.CheckPassword(hash, "wrong"))
}
