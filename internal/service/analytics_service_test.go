package service_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"shorturl/internal/models"
	"shorturl/internal/repository"
	"shorturl/internal/service"
	"shorturl/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupAnalytics создаёт сервис статистики поверх моков
func setupAnalytics() (service.AnalyticsService, *mocks.MockLinkRepository, *mocks.MockClickRepository) {
	linkRepo := mocks.NewMockLinkRepository()
	clickRepo := mocks.NewMockClickRepository(linkRepo)
	svc := service.NewAnalyticsService(clickRepo, linkRepo, zap.NewNop())
	return svc, linkRepo, clickRepo
}

func strPtr(s string) *string {
	return &s
}

// clickEvent собирает событие перехода с заполненными метаданными
func clickEvent(code, ip, referer string) *models.ClickEvent {
	return &models.ClickEvent{
		ShortCode: code,
		IPAddress: strPtr(ip),
		UserAgent: strPtr("test-agent/1.0"),
		Referer:   strPtr(referer),
	}
}

// TestAnalyticsService_RecordClick проверяет запись клика и инкремент счётчика
func TestAnalyticsService_RecordClick(t *testing.T) {
	svc, linkRepo, _ := setupAnalytics()

	ctx := context.Background()
	require.NoError(t, linkRepo.Create(ctx, linkFixture("testcode", "https://example.com", nil)))

	err := svc.RecordClick(ctx, clickEvent("testcode", "203.0.113.1", "https://google.com"))
	require.NoError(t, err)

	link, err := linkRepo.GetByShortCode(ctx, "testcode")
	require.NoError(t, err)
	assert.Equal(t, int64(1), link.ClickCount)

	clicks, err := svc.RecentClicks(ctx, "testcode", 10)
	require.NoError(t, err)
	require.Len(t, clicks, 1)
	assert.Equal(t, "203.0.113.1", *clicks[0].IPAddress)
	assert.Equal(t, "https://google.com", *clicks[0].Referer)
}

// TestAnalyticsService_RecordClick_AnonymousMetadata проверяет клик без
// IP, user-agent и referer
func TestAnalyticsService_RecordClick_AnonymousMetadata(t *testing.T) {
	svc, linkRepo, _ := setupAnalytics()

	ctx := context.Background()
	require.NoError(t, linkRepo.Create(ctx, linkFixture("testcode", "https://example.com", nil)))

	err := svc.RecordClick(ctx, &models.ClickEvent{ShortCode: "testcode"})
	require.NoError(t, err)

	clicks, err := svc.RecentClicks(ctx, "testcode", 10)
	require.NoError(t, err)
	require.Len(t, clicks, 1)
	assert.Nil(t, clicks[0].IPAddress)
	assert.Nil(t, clicks[0].Referer)
}

// TestAnalyticsService_RecordClick_DeadLink проверяет отказ для выключенной
// и несуществующей ссылки
func TestAnalyticsService_RecordClick_DeadLink(t *testing.T) {
	svc, linkRepo, _ := setupAnalytics()

	ctx := context.Background()
	require.NoError(t, linkRepo.Create(ctx, linkFixture("disabled", "https://example.com", nil)))
	require.NoError(t, linkRepo.Deactivate(ctx, "disabled"))

	err := svc.RecordClick(ctx, clickEvent("disabled", "203.0.113.1", "https://google.com"))
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)

	err = svc.RecordClick(ctx, clickEvent("missing", "203.0.113.1", "https://google.com"))
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)

	// Счётчик выключенной ссылки не изменился
	link, err := linkRepo.GetByShortCode(ctx, "disabled")
	require.NoError(t, err)
	assert.Zero(t, link.ClickCount)
}

// TestAnalyticsService_RecordClick_ExpiredLink проверяет отказ для истёкшей ссылки
func TestAnalyticsService_RecordClick_ExpiredLink(t *testing.T) {
	svc, linkRepo, _ := setupAnalytics()

	ctx := context.Background()
	require.NoError(t, linkRepo.Create(ctx, linkFixture("expired1", "https://example.com", nil)))
	linkRepo.SetExpiry("expired1", time.Now().UTC().Add(-time.Minute))

	err := svc.RecordClick(ctx, clickEvent("expired1", "203.0.113.1", "https://google.com"))
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)
}

// TestAnalyticsService_ConcurrentClicks проверяет, что при конкурентной
// записи счётчик сходится с числом событий
func TestAnalyticsService_ConcurrentClicks(t *testing.T) {
	svc, linkRepo, _ := setupAnalytics()

	ctx := context.Background()
	require.NoError(t, linkRepo.Create(ctx, linkFixture("testcode", "https://example.com", nil)))

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			event := clickEvent("testcode", fmt.Sprintf("203.0.113.%d", n), "https://google.com")
			assert.NoError(t, svc.RecordClick(ctx, event))
		}(i)
	}
	wg.Wait()

	link, err := linkRepo.GetByShortCode(ctx, "testcode")
	require.NoError(t, err)
	assert.Equal(t, int64(workers), link.ClickCount)

	summary, err := svc.Summary(ctx, "testcode")
	require.NoError(t, err)
	assert.Equal(t, int64(workers), summary.TotalClicks)
	assert.Equal(t, int64(workers), summary.UniqueIPs)
}

// TestAnalyticsService_Summary проверяет агрегаты: уникальные IP,
// дневные и часовые корзины, топ referer-ов
func TestAnalyticsService_Summary(t *testing.T) {
	svc, linkRepo, _ := setupAnalytics()

	ctx := context.Background()
	require.NoError(t, linkRepo.Create(ctx, linkFixture("testcode", "https://example.com", nil)))

	// Три клика с google, два с twitter, один без referer,
	// два клика с повторяющегося IP
	events := []*models.ClickEvent{
		clickEvent("testcode", "203.0.113.1", "https://google.com"),
		clickEvent("testcode", "203.0.113.1", "https://google.com"),
		clickEvent("testcode", "203.0.113.2", "https://google.com"),
		clickEvent("testcode", "203.0.113.3", "https://twitter.com"),
		clickEvent("testcode", "203.0.113.4", "https://twitter.com"),
		{ShortCode: "testcode", IPAddress: strPtr("203.0.113.5")},
	}
	for _, event := range events {
		require.NoError(t, svc.RecordClick(ctx, event))
	}

	summary, err := svc.Summary(ctx, "testcode")
	require.NoError(t, err)

	assert.Equal(t, int64(6), summary.TotalClicks)
	assert.Equal(t, int64(5), summary.UniqueIPs)

	today := time.Now().UTC().Format("2006-01-02")
	assert.Equal(t, int64(6), summary.ClicksByDate[today])

	hour := time.Now().UTC().Format("15")
	assert.Equal(t, int64(6), summary.ClicksByHour[hour])

	// Клик без referer в топ не попадает
	require.Len(t, summary.TopReferers, 2)
	assert.Equal(t, "https://google.com", summary.TopReferers[0].Referer)
	assert.Equal(t, int64(3), summary.TopReferers[0].Count)
	assert.Equal(t, "https://twitter.com", summary.TopReferers[1].Referer)
	assert.Equal(t, int64(2), summary.TopReferers[1].Count)
}

// TestAnalyticsService_Summary_DeadLinkStillVisible проверяет, что
// статистика доступна и после деактивации ссылки
func TestAnalyticsService_Summary_DeadLinkStillVisible(t *testing.T) {
	svc, linkRepo, _ := setupAnalytics()

	ctx := context.Background()
	require.NoError(t, linkRepo.Create(ctx, linkFixture("testcode", "https://example.com", nil)))
	require.NoError(t, svc.RecordClick(ctx, clickEvent("testcode", "203.0.113.1", "https://google.com")))
	require.NoError(t, linkRepo.Deactivate(ctx, "testcode"))

	summary, err := svc.Summary(ctx, "testcode")
	require.NoError(t, err)
	assert.Equal(t, int64(1), summary.TotalClicks)
}

// TestAnalyticsService_Summary_NotFound проверяет несуществующий код
func TestAnalyticsService_Summary_NotFound(t *testing.T) {
	svc, _, _ := setupAnalytics()

	_, err := svc.Summary(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)

	_, err = svc.RecentClicks(context.Background(), "missing", 10)
	assert.ErrorIs(t, err, repository.ErrLinkNotFound)
}

// TestAnalyticsService_RecentClicks_Limit проверяет ограничение выборки
func TestAnalyticsService_RecentClicks_Limit(t *testing.T) {
	svc, linkRepo, _ := setupAnalytics()

	ctx := context.Background()
	require.NoError(t, linkRepo.Create(ctx, linkFixture("testcode", "https://example.com", nil)))

	for i := 0; i < 10; i++ {
		require.NoError(t, svc.RecordClick(ctx, clickEvent("testcode", fmt.Sprintf("203.0.113.%d", i), "https://google.com")))
	}

	clicks, err := svc.RecentClicks(ctx, "testcode", 3)
	require.NoError(t, err)
	assert.Len(t, clicks, 3)
}
