package service

import (
	"context"
	"time"

	"shorturl/internal/models"
	"shorturl/internal/repository"

	"go.uber.org/zap"
)

const topRefererLimit = 10

// AnalyticsService запись кликов и агрегированная статистика
type AnalyticsService interface {
	RecordClick(ctx context.Context, event *models.ClickEvent) error
	Summary(ctx context.Context, shortCode string) (*models.AnalyticsSummary, error)
	RecentClicks(ctx context.Context, shortCode string, limit int) ([]models.Click, error)
}

type analyticsService struct {
	clickRepo repository.ClickRepository
	linkRepo  repository.LinkRepository
	logger    *zap.Logger
}

func NewAnalyticsService(
	clickRepo repository.ClickRepository,
	linkRepo repository.LinkRepository,
	logger *zap.Logger,
) AnalyticsService {
	return &analyticsService{
		clickRepo: clickRepo,
		linkRepo:  linkRepo,
		logger:    logger,
	}
}

// RecordClick фиксирует переход по активной неистёкшей ссылке.
// Вставка клика и инкремент счётчика - одна транзакция репозитория
func (s *analyticsService) RecordClick(ctx context.Context, event *models.ClickEvent) error {
	link, err := s.linkRepo.GetByShortCode(ctx, event.ShortCode)
	if err != nil {
		return err
	}

	// Для записи клика истёкшая или выключенная ссылка эквивалентна отсутствующей
	if !link.IsResolvable() {
		return repository.ErrLinkNotFound
	}

	click := &models.Click{
		LinkID:    link.ID,
		ClickedAt: time.Now().UTC(),
		IPAddress: event.IPAddress,
		UserAgent: event.UserAgent,
		Referer:   event.Referer,
	}

	if err := s.clickRepo.RecordClick(ctx, click); err != nil {
		s.logger.Error("Failed to record click",
			zap.String("short_code", event.ShortCode),
			zap.Error(err),
		)
		return err
	}

	return nil
}

// Summary агрегированная статистика. В отличие от редиректа, доступна
// и для выключенных/истёкших ссылок
func (s *analyticsService) Summary(ctx context.Context, shortCode string) (*models.AnalyticsSummary, error) {
	link, err := s.linkRepo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, err
	}

	uniqueIPs, err := s.clickRepo.GetUniqueIPCount(ctx, link.ID)
	if err != nil {
		return nil, err
	}

	clicksByDate, err := s.clickRepo.GetClicksByDate(ctx, link.ID)
	if err != nil {
		return nil, err
	}

	topReferers, err := s.clickRepo.GetTopReferers(ctx, link.ID, topRefererLimit)
	if err != nil {
		return nil, err
	}

	clicksByHour, err := s.clickRepo.GetClicksByHour(ctx, link.ID)
	if err != nil {
		return nil, err
	}

	return &models.AnalyticsSummary{
		// total_clicks из денормализованного счётчика, не из COUNT(*)
		TotalClicks:  link.ClickCount,
		UniqueIPs:    uniqueIPs,
		ClicksByDate: clicksByDate,
		TopReferers:  topReferers,
		ClicksByHour: clicksByHour,
	}, nil
}

// RecentClicks последние клики, новые первыми. Лимит 1-500 проверяет HTTP-слой
func (s *analyticsService) RecentClicks(ctx context.Context, shortCode string, limit int) ([]models.Click, error) {
	link, err := s.linkRepo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, err
	}

	return s.clickRepo.GetRecent(ctx, link.ID, limit)
}
