package models

import (
	"time"
)

type Link struct {
	ID          int64      `json:"id"`
	ShortCode   string     `json:"short_code"`
	OriginalURL string     `json:"original_url"`
	UserID      *int64     `json:"user_id,omitempty"` // nil = анонимная ссылка
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	IsActive    bool       `json:"is_active"`
	ClickCount  int64      `json:"click_count"`
}

// IsResolvable проверяет, доступна ли ссылка для редиректа:
// активна и срок действия не истёк
func (l *Link) IsResolvable() bool {
	if !l.IsActive {
		return false
	}
	if l.ExpiresAt != nil && !l.ExpiresAt.After(time.Now().UTC()) {
		return false
	}
	return true
}

type CreateLinkInput struct {
	OriginalURL   string  `json:"original_url" binding:"required"`
	CustomCode    *string `json:"custom_code,omitempty"`
	ExpiresInDays *int    `json:"expires_in_days,omitempty"`
}

// LinkView представление ссылки для API с полным коротким URL
type LinkView struct {
	ID          int64      `json:"id"`
	ShortCode   string     `json:"short_code"`
	OriginalURL string     `json:"original_url"`
	ShortURL    string     `json:"short_url"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	IsActive    bool       `json:"is_active"`
	ClickCount  int64      `json:"click_count"`
}

// LinkListResult страница ссылок с метаданными пагинации
type LinkListResult struct {
	URLs       []LinkView `json:"urls"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int64      `json:"total_pages"`
}
