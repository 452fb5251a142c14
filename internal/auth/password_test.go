package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shorturl/internal/auth"
)

// TestPassword_Roundtrip проверяет хэширование и проверку пароля
func TestPassword_Roundtrip(t *testing.T) {
	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.True(t, auth.CheckPassword("password123", hash))
	assert.False(t, auth.CheckPassword("wrongpassword", hash))
	assert.False(t, auth.CheckPassword("", hash))
}

// TestPassword_SaltedHashes проверяет, что одинаковые пароли дают разные хэши
func TestPassword_SaltedHashes(t *testing.T) {
	first, err := auth.HashPassword("password123")
	require.NoError(t, err)
	second, err := auth.HashPassword("password123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

// TestPassword_Truncation проверяет усечение длинных паролей до 72 байт
func TestPassword_Truncation(t *testing.T) {
	long := strings.Repeat("a", 100)
	hash, err := auth.HashPassword(long)
	require.NoError(t, err)

	assert.True(t, auth.CheckPassword(long, hash))
	assert.True(t, auth.CheckPassword(long[:72], hash))
	assert.False(t, auth.CheckPassword(long[:71], hash))
}

// TestPassword_MultibyteTruncation проверяет, что усечение не рвёт UTF-8:
// кириллический символ на границе 72 байт отбрасывается целиком
func TestPassword_MultibyteTruncation(t *testing.T) {
	// 71 байт ASCII + двухбайтовый символ, пересекающий границу
	password := strings.Repeat("a", 71) + "ж"
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	assert.True(t, auth.CheckPassword(password, hash))
	assert.True(t, auth.CheckPassword(strings.Repeat("a", 71), hash))
}
