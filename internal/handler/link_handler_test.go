package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shorturl/internal/handler"
	"shorturl/internal/models"
	"shorturl/internal/repository"
	"shorturl/internal/service"
	"shorturl/internal/service/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// brokenClickRepo имитирует отказ хранилища при записи клика
type brokenClickRepo struct {
	*mocks.MockClickRepository
}

func (r *brokenClickRepo) RecordClick(ctx context.Context, click *models.Click) error {
	return errors.New("connection reset by peer")
}

// setupRedirectRouter собирает роутер с одним редирект-эндпоинтом.
// makeClickRepo получает репозиторий ссылок, чтобы связать счётчики
func setupRedirectRouter(t *testing.T, makeClickRepo func(*mocks.MockLinkRepository) repository.ClickRepository) (*gin.Engine, *mocks.MockLinkRepository) {
	t.Helper()

	linkRepo := mocks.NewMockLinkRepository()
	cacheRepo := mocks.NewMockCacheRepository()
	logger := zap.NewNop()
	allocator := service.NewCodeAllocator(linkRepo, 8)
	linkService := service.NewLinkService(linkRepo, cacheRepo, allocator, "http://localhost:8080", 2048, logger)
	analyticsService := service.NewAnalyticsService(makeClickRepo(linkRepo), linkRepo, logger)

	h := handler.NewLinkHandler(linkService, analyticsService, service.NewQRService(), "http://localhost:8080", logger)

	router := gin.New()
	router.GET("/:code", h.Redirect)
	return router, linkRepo
}

func storeLink(t *testing.T, linkRepo *mocks.MockLinkRepository, code, url string) {
	t.Helper()
	require.NoError(t, linkRepo.Create(context.Background(), &models.Link{
		ShortCode:   code,
		OriginalURL: url,
	}))
}

// TestRedirect_Success проверяет 302 и запись клика
func TestRedirect_Success(t *testing.T) {
	router, linkRepo := setupRedirectRouter(t, func(links *mocks.MockLinkRepository) repository.ClickRepository {
		return mocks.NewMockClickRepository(links)
	})
	storeLink(t, linkRepo, "testcode", "https://example.com/target")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/testcode", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://example.com/target", w.Header().Get("Location"))

	link, err := linkRepo.GetByShortCode(context.Background(), "testcode")
	require.NoError(t, err)
	assert.Equal(t, int64(1), link.ClickCount)
}

// TestRedirect_ClickWriteFailure проверяет, что при сбое записи клика
// редирект не отдаётся: посетитель видит 500, Location пуст
func TestRedirect_ClickWriteFailure(t *testing.T) {
	router, linkRepo := setupRedirectRouter(t, func(*mocks.MockLinkRepository) repository.ClickRepository {
		return &brokenClickRepo{}
	})
	storeLink(t, linkRepo, "testcode", "https://example.com/target")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/testcode", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("Location"))

	// Счётчик не изменился: редирект и клик либо происходят вместе,
	// либо не происходят вовсе
	link, err := linkRepo.GetByShortCode(context.Background(), "testcode")
	require.NoError(t, err)
	assert.Zero(t, link.ClickCount)
}

// TestRedirect_ReservedPath проверяет, что служебные пути не трактуются как коды
func TestRedirect_ReservedPath(t *testing.T) {
	router, _ := setupRedirectRouter(t, func(links *mocks.MockLinkRepository) repository.ClickRepository {
		return mocks.NewMockClickRepository(links)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/favicon.ico", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
