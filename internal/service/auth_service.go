package service

import (
	"context"
	"errors"
	"time"

	"shorturl/internal/auth"
	"shorturl/internal/models"
	"shorturl/internal/repository"

	"go.uber.org/zap"
)

// ErrInvalidCredentials намеренно одна ошибка для "нет пользователя",
// "неверный пароль" и "пользователь деактивирован" - защита от перебора аккаунтов
var ErrInvalidCredentials = errors.New("invalid username or password")

// AuthService регистрация и аутентификация пользователей
type AuthService interface {
	Register(ctx context.Context, email, username, password string) (*models.Token, error)
	Login(ctx context.Context, username, password string) (*models.Token, error)
}

type authService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
	logger   *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenManager, logger *zap.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// Register создаёт пользователя и сразу выдаёт токен.
// Проверки занятости - fast path, ограничения уникальности в БД
// закрывают гонку конкурентной регистрации
func (s *authService) Register(ctx context.Context, email, username, password string) (*models.Token, error) {
	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, repository.ErrEmailExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, repository.ErrUsernameExists
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.Int64("user_id", user.ID), zap.String("username", username))

	return s.issueToken(user)
}

// Login проверяет учётные данные и выдаёт свежий токен той же формы,
// что и при регистрации
func (s *authService) Login(ctx context.Context, username, password string) (*models.Token, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(user)
}

func (s *authService) issueToken(user *models.User) (*models.Token, error) {
	accessToken, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}

	return &models.Token{
		AccessToken: accessToken,
		TokenType:   "bearer",
		User:        user.View(),
	}, nil
}
