package handler

import (
	"errors"
	"net/http"
	"strconv"

	"shorturl/internal/middleware"
	"shorturl/internal/models"
	"shorturl/internal/repository"
	"shorturl/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
	linkService      service.LinkService
	logger           *zap.Logger
}

func NewAnalyticsHandler(
	analyticsService service.AnalyticsService,
	linkService service.LinkService,
	logger *zap.Logger,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		linkService:      linkService,
		logger:           logger,
	}
}

// Summary godoc
// @Summary Get analytics summary for an owned link
// @Tags analytics
// @Produce json
// @Param code path string true "Short code"
// @Success 200 {object} models.AnalyticsSummary
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/analytics/{code}/summary [get]
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	code := c.Param("code")

	if !h.authorizeOwner(c, code) {
		return
	}

	summary, err := h.analyticsService.Summary(c.Request.Context(), code)
	if err != nil {
		h.respondError(c, code, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// RecentClicks godoc
// @Summary Get recent click records for an owned link
// @Tags analytics
// @Produce json
// @Param code path string true "Short code"
// @Param limit query int false "Maximum records (1-500)" default(50)
// @Success 200 {array} models.Click
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/analytics/{code}/clicks [get]
func (h *AnalyticsHandler) RecentClicks(c *gin.Context) {
	code := c.Param("code")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 500 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_limit",
			Message: "Limit must be between 1 and 500",
		})
		return
	}

	if !h.authorizeOwner(c, code) {
		return
	}

	clicks, err := h.analyticsService.RecentClicks(c.Request.Context(), code, limit)
	if err != nil {
		h.respondError(c, code, err)
		return
	}

	if clicks == nil {
		clicks = []models.Click{}
	}
	c.JSON(http.StatusOK, clicks)
}

// authorizeOwner проверяет, что ссылка существует и принадлежит текущему
// пользователю. Анонимные ссылки недоступны через авторизованные пути
func (h *AnalyticsHandler) authorizeOwner(c *gin.Context, code string) bool {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "Could not validate credentials"})
		return false
	}

	link, err := h.linkService.GetLink(c.Request.Context(), code)
	if err != nil {
		h.respondError(c, code, err)
		return false
	}

	if link.UserID == nil || *link.UserID != user.ID {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "You don't have permission to view analytics for this link",
		})
		return false
	}

	return true
}

func (h *AnalyticsHandler) respondError(c *gin.Context, code string, err error) {
	if errors.Is(err, repository.ErrLinkNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Short code not found",
		})
		return
	}

	h.logger.Error("Analytics operation failed", zap.String("code", code), zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "Internal server error",
	})
}
