package repository

import (
	"context"
	"fmt"

	"shorturl/internal/models"
)

type ClickRepository interface {
	RecordClick(ctx context.Context, click *models.Click) error
	GetRecent(ctx context.Context, linkID int64, limit int) ([]models.Click, error)
	GetUniqueIPCount(ctx context.Context, linkID int64) (int64, error)
	GetClicksByDate(ctx context.Context, linkID int64) (map[string]int64, error)
	GetClicksByHour(ctx context.Context, linkID int64) (map[string]int64, error)
	GetTopReferers(ctx context.Context, linkID int64, limit int) ([]models.RefererCount, error)
}

type clickRepository struct {
	db *PostgresDB
}

func NewClickRepository(db *PostgresDB) ClickRepository {
	return &clickRepository{db: db}
}

// RecordClick записывает клик и инкрементирует счётчик ссылки в одной
// транзакции: либо коммитятся обе записи, либо ни одной
func (r *clickRepository) RecordClick(ctx context.Context, click *models.Click) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insertQuery := `
		INSERT INTO clicks (link_id, clicked_at, ip_address, user_agent, referer)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	if err := tx.QueryRow(ctx, insertQuery,
		click.LinkID,
		click.ClickedAt,
		click.IPAddress,
		click.UserAgent,
		click.Referer,
	).Scan(&click.ID); err != nil {
		return fmt.Errorf("failed to record click: %w", err)
	}

	updateQuery := `UPDATE links SET click_count = click_count + 1 WHERE id = $1`

	if _, err := tx.Exec(ctx, updateQuery, click.LinkID); err != nil {
		return fmt.Errorf("failed to increment click count: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit click: %w", err)
	}

	return nil
}

func (r *clickRepository) GetRecent(ctx context.Context, linkID int64, limit int) ([]models.Click, error) {
	query := `
		SELECT id, link_id, clicked_at, ip_address, user_agent, referer
		FROM clicks
		WHERE link_id = $1
		ORDER BY clicked_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, linkID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent clicks: %w", err)
	}
	defer rows.Close()

	var clicks []models.Click
	for rows.Next() {
		var click models.Click
		if err := rows.Scan(
			&click.ID,
			&click.LinkID,
			&click.ClickedAt,
			&click.IPAddress,
			&click.UserAgent,
			&click.Referer,
		); err != nil {
			return nil, fmt.Errorf("failed to scan click: %w", err)
		}
		clicks = append(clicks, click)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clicks: %w", err)
	}

	return clicks, nil
}

func (r *clickRepository) GetUniqueIPCount(ctx context.Context, linkID int64) (int64, error) {
	query := `SELECT COUNT(DISTINCT ip_address) FROM clicks WHERE link_id = $1 AND ip_address IS NOT NULL`

	var count int64
	if err := r.db.Pool.QueryRow(ctx, query, linkID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unique IPs: %w", err)
	}

	return count, nil
}

func (r *clickRepository) GetClicksByDate(ctx context.Context, linkID int64) (map[string]int64, error) {
	query := `
		SELECT TO_CHAR(clicked_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*)
		FROM clicks
		WHERE link_id = $1
		GROUP BY day
		ORDER BY day DESC
	`

	return r.queryBuckets(ctx, query, linkID)
}

// GetClicksByHour агрегирует клики по часу суток в UTC, ключи "00".."23"
func (r *clickRepository) GetClicksByHour(ctx context.Context, linkID int64) (map[string]int64, error) {
	query := `
		SELECT TO_CHAR(clicked_at AT TIME ZONE 'UTC', 'HH24') AS hour, COUNT(*)
		FROM clicks
		WHERE link_id = $1
		GROUP BY hour
		ORDER BY hour
	`

	return r.queryBuckets(ctx, query, linkID)
}

func (r *clickRepository) GetTopReferers(ctx context.Context, linkID int64, limit int) ([]models.RefererCount, error) {
	query := `
		SELECT referer, COUNT(*) AS cnt
		FROM clicks
		WHERE link_id = $1 AND referer IS NOT NULL
		GROUP BY referer
		ORDER BY cnt DESC, referer
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, linkID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top referers: %w", err)
	}
	defer rows.Close()

	var referers []models.RefererCount
	for rows.Next() {
		var rc models.RefererCount
		if err := rows.Scan(&rc.Referer, &rc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan referer: %w", err)
		}
		referers = append(referers, rc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating referers: %w", err)
	}

	return referers, nil
}

// queryBuckets выполняет запрос вида (ключ, количество) и собирает map
func (r *clickRepository) queryBuckets(ctx context.Context, query string, linkID int64) (map[string]int64, error) {
	rows, err := r.db.Pool.Query(ctx, query, linkID)
	if err != nil {
		return nil, fmt.Errorf("failed to query click buckets: %w", err)
	}
	defer rows.Close()

	buckets := make(map[string]int64)
	for rows.Next() {
		var key string
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan click bucket: %w", err)
		}
		buckets[key] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating click buckets: %w", err)
	}

	return buckets, nil
}
