package service_test

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"shorturl/internal/auth"
	"shorturl/internal/repository"
	"shorturl/internal/service"
	"shorturl/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

// setupAuth создаёт сервис аутентификации поверх мокового репозитория
func setupAuth() (service.AuthService, *mocks.MockUserRepository, *auth.TokenManager) {
	userRepo := mocks.NewMockUserRepository()
	tokens := auth.NewTokenManager(testSecret)
	svc := service.NewAuthService(userRepo, tokens, zap.NewNop())
	return svc, userRepo, tokens
}

// TestAuthService_Register проверяет регистрацию и валидность выданного токена
func TestAuthService_Register(t *testing.T) {
	svc, _, tokens := setupAuth()

	token, err := svc.Register(context.Background(), "alice@example.com", "alice", "password123")

	require.NoError(t, err)
	assert.Equal(t, "bearer", token.TokenType)
	assert.Equal(t, "alice", token.User.Username)
	assert.Equal(t, "alice@example.com", token.User.Email)
	assert.True(t, token.User.IsActive)

	claims, err := tokens.Parse(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)

	userID, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, token.User.ID, userID)
}

// TestAuthService_Register_Duplicates проверяет занятые email и username
func TestAuthService_Register_Duplicates(t *testing.T) {
	svc, _, _ := setupAuth()

	ctx := context.Background()
	_, err := svc.Register(ctx, "alice@example.com", "alice", "password123")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice@example.com", "alice2", "password123")
	assert.ErrorIs(t, err, repository.ErrEmailExists)

	_, err = svc.Register(ctx, "alice2@example.com", "alice", "password123")
	assert.ErrorIs(t, err, repository.ErrUsernameExists)
}

// TestAuthService_Login проверяет вход с верными учётными данными
func TestAuthService_Login(t *testing.T) {
	svc, _, tokens := setupAuth()

	ctx := context.Background()
	registered, err := svc.Register(ctx, "alice@example.com", "alice", "password123")
	require.NoError(t, err)

	token, err := svc.Login(ctx, "alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, token.User.ID)

	_, err = tokens.Parse(token.AccessToken)
	assert.NoError(t, err)
}

// TestAuthService_Login_InvalidCredentials проверяет, что неизвестный
// пользователь, неверный пароль и деактивированный аккаунт дают
// одну и ту же ошибку
func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	svc, userRepo, _ := setupAuth()

	ctx := context.Background()
	token, err := svc.Register(ctx, "alice@example.com", "alice", "password123")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "alice", "wrongpassword")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	userRepo.Deactivate(token.User.ID)
	_, err = svc.Login(ctx, "alice", "password123")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

// TestAuthService_LongPasswordTruncation проверяет согласованность
// усечения пароля до 72 байт при хешировании и проверке
func TestAuthService_LongPasswordTruncation(t *testing.T) {
	svc, _, _ := setupAuth()

	long := strings.Repeat("a", 100)
	ctx := context.Background()
	_, err := svc.Register(ctx, "alice@example.com", "alice", long)
	require.NoError(t, err)

	// Полный пароль и его первые 72 байта эквивалентны
	_, err = svc.Login(ctx, "alice", long)
	assert.NoError(t, err)

	_, err = svc.Login(ctx, "alice", long[:72])
	assert.NoError(t, err)

	_, err = svc.Login(ctx, "alice", strings.Repeat("b", 100))
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}
