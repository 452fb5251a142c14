package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shorturl/internal/auth"
	"shorturl/internal/models"
)

func testUser() *models.User {
	return &models.User{
		ID:       42,
		Email:    "alice@example.com",
		Username: "alice",
		IsActive: true,
	}
}

// TestTokenManager_Roundtrip проверяет выпуск и разбор токена
func TestTokenManager_Roundtrip(t *testing.T) {
	tm := auth.NewTokenManager("secret")

	signed, err := tm.Generate(testUser())
	require.NoError(t, err)

	claims, err := tm.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "42", claims.Subject)

	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)

	// Срок действия - сутки от момента выпуска
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

// TestTokenManager_WrongSecret проверяет отклонение чужой подписи
func TestTokenManager_WrongSecret(t *testing.T) {
	signed, err := auth.NewTokenManager("secret-a").Generate(testUser())
	require.NoError(t, err)

	_, err = auth.NewTokenManager("secret-b").Parse(signed)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

// TestTokenManager_Expired проверяет отклонение истёкшего токена
func TestTokenManager_Expired(t *testing.T) {
	// Токен с истёкшим сроком собирается вручную тем же секретом
	claims := &auth.Claims{
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-25 * time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = auth.NewTokenManager("secret").Parse(signed)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

// TestTokenManager_Garbage проверяет отклонение мусорной строки
func TestTokenManager_Garbage(t *testing.T) {
	_, err := auth.NewTokenManager("secret").Parse("not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

// TestClaims_MalformedSubject проверяет нечисловой subject
func TestClaims_MalformedSubject(t *testing.T) {
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "not-a-number"},
	}

	_, err := claims.UserID()
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
