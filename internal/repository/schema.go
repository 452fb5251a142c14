package repository

import (
	"context"
	"fmt"
)

// Идемпотентная инициализация схемы. Каскадное удаление: users -> links -> clicks
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		email         VARCHAR(255) NOT NULL,
		username      VARCHAR(100) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		is_active     BOOLEAN NOT NULL DEFAULT TRUE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT users_email_key UNIQUE (email),
		CONSTRAINT users_username_key UNIQUE (username)
	)`,
	`CREATE TABLE IF NOT EXISTS links (
		id           BIGSERIAL PRIMARY KEY,
		short_code   VARCHAR(50) NOT NULL,
		original_url VARCHAR(2048) NOT NULL,
		user_id      BIGINT REFERENCES users(id) ON DELETE CASCADE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expires_at   TIMESTAMPTZ,
		is_active    BOOLEAN NOT NULL DEFAULT TRUE,
		click_count  BIGINT NOT NULL DEFAULT 0,
		CONSTRAINT links_short_code_key UNIQUE (short_code)
	)`,
	`CREATE TABLE IF NOT EXISTS clicks (
		id         BIGSERIAL PRIMARY KEY,
		link_id    BIGINT NOT NULL REFERENCES links(id) ON DELETE CASCADE,
		clicked_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		ip_address VARCHAR(45),
		user_agent VARCHAR(512),
		referer    VARCHAR(512)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_links_short_code_active ON links (short_code, is_active)`,
	`CREATE INDEX IF NOT EXISTS idx_links_user_id_created ON links (user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_clicks_link_clicked_at ON clicks (link_id, clicked_at)`,
}

// InitSchema создаёт таблицы и индексы, если их ещё нет
func (db *PostgresDB) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	return nil
}
