package models

import (
	"time"
)

// Click одно зафиксированное посещение короткой ссылки.
// Записи append-only: никогда не изменяются и удаляются только каскадно вместе со ссылкой
type Click struct {
	ID        int64     `json:"id"`
	LinkID    int64     `json:"link_id"`
	ClickedAt time.Time `json:"clicked_at"`
	IPAddress *string   `json:"ip_address,omitempty"`
	UserAgent *string   `json:"user_agent,omitempty"`
	Referer   *string   `json:"referer,omitempty"`
}

// ClickEvent входные данные клика, собранные на редиректе
type ClickEvent struct {
	ShortCode string
	IPAddress *string
	UserAgent *string
	Referer   *string
}

type RefererCount struct {
	Referer string `json:"referer"`
	Count   int64  `json:"count"`
}

// AnalyticsSummary агрегированная статистика по одной ссылке
type AnalyticsSummary struct {
	TotalClicks  int64            `json:"total_clicks"`
	UniqueIPs    int64            `json:"unique_ips"`
	ClicksByDate map[string]int64 `json:"clicks_by_date"` // "2006-01-02" -> количество
	TopReferers  []RefererCount   `json:"top_referers"`
	ClicksByHour map[string]int64 `json:"clicks_by_hour"` // "00".."23" (UTC) -> количество
}
