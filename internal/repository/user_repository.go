package repository

import (
	"context"
	"errors"
	"fmt"

	"shorturl/internal/models"

	"github.com/jackc/pgx/v5"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type userRepository struct {
	db *PostgresDB
}

func NewUserRepository(db *PostgresDB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, username, password_hash, is_active, created_at)
		VALUES ($1, $2, $3, TRUE, $4)
		RETURNING id, is_active, created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.CreatedAt,
	).Scan(&user.ID, &user.IsActive, &user.CreatedAt)

	if err != nil {
		// Различаем нарушенное ограничение по имени, чтобы вернуть
		// точную ошибку при конкурентной регистрации
		if constraint, ok := uniqueViolation(err); ok {
			switch constraint {
			case "users_email_key":
				return ErrEmailExists
			case "users_username_key":
				return ErrUsernameExists
			}
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, `WHERE username = $1`, username)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `WHERE email = $1`, email)
}

func (r *userRepository) getOne(ctx context.Context, where string, arg any) (*models.User, error) {
	query := `SELECT id, email, username, password_hash, is_active, created_at FROM users ` + where

	user := &models.User{}
	err := r.db.Pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.IsActive,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}
