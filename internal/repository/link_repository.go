package repository

import (
	"context"
	"errors"
	"fmt"

	"shorturl/internal/models"

	"github.com/jackc/pgx/v5"
)

type LinkRepository interface {
	Create(ctx context.Context, link *models.Link) error
	GetByShortCode(ctx context.Context, code string) (*models.Link, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, page, pageSize int, userID *int64) ([]models.Link, int64, error)
	Deactivate(ctx context.Context, code string) error
}

type linkRepository struct {
	db *PostgresDB
}

func NewLinkRepository(db *PostgresDB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Create(ctx context.Context, link *models.Link) error {
	query := `
		INSERT INTO links (short_code, original_url, user_id, created_at, expires_at, is_active, click_count)
		VALUES ($1, $2, $3, $4, $5, TRUE, 0)
		RETURNING id, created_at, is_active, click_count
	`

	err := r.db.Pool.QueryRow(
		ctx,
		query,
		link.ShortCode,
		link.OriginalURL,
		link.UserID,
		link.CreatedAt,
		link.ExpiresAt,
	).Scan(&link.ID, &link.CreatedAt, &link.IsActive, &link.ClickCount)

	if err != nil {
		// Ограничение уникальности - источник истины: два конкурентных запроса
		// могут пройти проверку существования кода до коммита любого из них
		if _, ok := uniqueViolation(err); ok {
			return ErrCodeExists
		}
		return fmt.Errorf("failed to create link: %w", err)
	}

	return nil
}

// GetByShortCode возвращает ссылку в любом состоянии жизненного цикла.
// Проверка is_active и expires_at - ответственность сервисного слоя
func (r *linkRepository) GetByShortCode(ctx context.Context, code string) (*models.Link, error) {
	query := `
		SELECT id, short_code, original_url, user_id, created_at, expires_at, is_active, click_count
		FROM links
		WHERE short_code = $1
	`

	link := &models.Link{}
	err := r.db.Pool.QueryRow(ctx, query, code).Scan(
		&link.ID,
		&link.ShortCode,
		&link.OriginalURL,
		&link.UserID,
		&link.CreatedAt,
		&link.ExpiresAt,
		&link.IsActive,
		&link.ClickCount,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}

	return link, nil
}

// CodeExists проверяет занятость кода среди ВСЕХ ссылок независимо от
// состояния: коды никогда не переиспользуются
func (r *linkRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM links WHERE short_code = $1)`

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check short code: %w", err)
	}

	return exists, nil
}

func (r *linkRepository) List(ctx context.Context, page, pageSize int, userID *int64) ([]models.Link, int64, error) {
	countQuery := `SELECT COUNT(*) FROM links WHERE ($1::BIGINT IS NULL OR user_id = $1)`

	var total int64
	if err := r.db.Pool.QueryRow(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count links: %w", err)
	}

	query := `
		SELECT id, short_code, original_url, user_id, created_at, expires_at, is_active, click_count
		FROM links
		WHERE ($1::BIGINT IS NULL OR user_id = $1)
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3
	`

	offset := (page - 1) * pageSize
	rows, err := r.db.Pool.Query(ctx, query, userID, offset, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list links: %w", err)
	}
	defer rows.Close()

	var links []models.Link
	for rows.Next() {
		var link models.Link
		if err := rows.Scan(
			&link.ID,
			&link.ShortCode,
			&link.OriginalURL,
			&link.UserID,
			&link.CreatedAt,
			&link.ExpiresAt,
			&link.IsActive,
			&link.ClickCount,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating links: %w", err)
	}

	return links, total, nil
}

// Deactivate выключает ссылку. Повторная деактивация - no-op:
// UPDATE затрагивает существующую строку независимо от текущего значения
func (r *linkRepository) Deactivate(ctx context.Context, code string) error {
	query := `UPDATE links SET is_active = FALSE WHERE short_code = $1`

	result, err := r.db.Pool.Exec(ctx, query, code)
	if err != nil {
		return fmt.Errorf("failed to deactivate link: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrLinkNotFound
	}

	return nil
}
