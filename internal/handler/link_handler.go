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

type LinkHandler struct {
	linkService      service.LinkService
	analyticsService service.AnalyticsService
	qrService        service.QRService
	baseURL          string
	logger           *zap.Logger
}

func NewLinkHandler(
	linkService service.LinkService,
	analyticsService service.AnalyticsService,
	qrService service.QRService,
	baseURL string,
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		linkService:      linkService,
		analyticsService: analyticsService,
		qrService:        qrService,
		baseURL:          baseURL,
		logger:           logger,
	}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CreateLink godoc
// @Summary Create a short link
// @Description Authentication is optional; an authenticated request associates the link with the user
// @Tags links
// @Accept json
// @Produce json
// @Param request body models.CreateLinkInput true "Link creation request"
// @Success 201 {object} models.LinkView
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /api/v1/urls [post]
func (h *LinkHandler) CreateLink(c *gin.Context) {
	var input models.CreateLinkInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
		return
	}

	var ownerID *int64
	if user, ok := middleware.CurrentUser(c); ok {
		ownerID = &user.ID
	}

	view, err := h.linkService.CreateLink(c.Request.Context(), &input, ownerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidURL):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_url",
				Message: "Invalid URL format",
			})
		case errors.Is(err, service.ErrInvalidCode):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_code",
				Message: "Custom code must be 4-20 alphanumeric characters",
			})
		case errors.Is(err, service.ErrInvalidTTL):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_expiration",
				Message: "Expiration must be between 1 and 365 days",
			})
		case errors.Is(err, repository.ErrCodeExists):
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "code_conflict",
				Message: "Short code already exists",
			})
		case errors.Is(err, service.ErrCodeGenExhausted):
			h.logger.Error("Short code generation exhausted", zap.Error(err))
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "allocation_exhausted",
				Message: "Failed to allocate a unique short code",
			})
		default:
			h.logger.Error("Failed to create link", zap.Error(err))
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to create link",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, view)
}

// GetLinkInfo godoc
// @Summary Get link info and click count
// @Description Returns the link in any lifecycle state, including inactive and expired
// @Tags links
// @Produce json
// @Param code path string true "Short code"
// @Success 200 {object} models.LinkView
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/urls/{code} [get]
func (h *LinkHandler) GetLinkInfo(c *gin.Context) {
	code := c.Param("code")

	link, err := h.linkService.GetLink(c.Request.Context(), code)
	if err != nil {
		h.respondLinkError(c, code, err)
		return
	}

	c.JSON(http.StatusOK, h.linkView(link))
}

// ListLinks godoc
// @Summary List links owned by the authenticated user
// @Tags links
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page" default(20)
// @Success 200 {object} models.LinkListResult
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /api/v1/urls [get]
func (h *LinkHandler) ListLinks(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "Could not validate credentials"})
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_pagination",
			Message: "Page must be greater than 0",
		})
		return
	}

	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if err != nil || pageSize < 1 || pageSize > 100 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_pagination",
			Message: "Page size must be between 1 and 100",
		})
		return
	}

	result, err := h.linkService.ListLinks(c.Request.Context(), page, pageSize, &user.ID)
	if err != nil {
		h.logger.Error("Failed to list links", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list links",
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// DeactivateLink godoc
// @Summary Deactivate a short link
// @Description Owned links require the owning user; there is no reactivation
// @Tags links
// @Param code path string true "Short code"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/urls/{code} [delete]
func (h *LinkHandler) DeactivateLink(c *gin.Context) {
	code := c.Param("code")

	link, err := h.linkService.GetLink(c.Request.Context(), code)
	if err != nil {
		h.respondLinkError(c, code, err)
		return
	}

	// Проверка владельца на HTTP-границе: сервис владение не проверяет
	if link.UserID != nil {
		user, ok := middleware.CurrentUser(c)
		if !ok || *link.UserID != user.ID {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "forbidden",
				Message: "You don't have permission to deactivate this link",
			})
			return
		}
	}

	if err := h.linkService.DeactivateLink(c.Request.Context(), code); err != nil {
		h.respondLinkError(c, code, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// QRCode godoc
// @Summary Render a QR code PNG for a short link
// @Tags links
// @Produce png
// @Param code path string true "Short code"
// @Param size query int false "Image size in pixels (100-1000)" default(400)
// @Param level query string false "Error correction level (L, M, Q, H)" default(M)
// @Param border query int false "Quiet zone border (0-10, 0 disables)" default(4)
// @Success 200 {file} png
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Router /api/v1/urls/{code}/qr [get]
func (h *LinkHandler) QRCode(c *gin.Context) {
	code := c.Param("code")

	link, err := h.linkService.GetLink(c.Request.Context(), code)
	if err != nil {
		h.respondLinkError(c, code, err)
		return
	}

	// Для мёртвой ссылки QR-код бессмыслен: 410, а не 404,
	// так как сама запись существует
	if !link.IsResolvable() {
		c.JSON(http.StatusGone, ErrorResponse{
			Error:   "link_gone",
			Message: "Link is deactivated or expired",
		})
		return
	}

	size, err := strconv.Atoi(c.DefaultQuery("size", "400"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_qr_params",
			Message: "Size must be an integer",
		})
		return
	}
	border, err := strconv.Atoi(c.DefaultQuery("border", "4"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_qr_params",
			Message: "Border must be an integer",
		})
		return
	}
	level := c.DefaultQuery("level", "M")

	png, err := h.qrService.GeneratePNG(h.linkView(link).ShortURL, size, level, border)
	if err != nil {
		if errors.Is(err, service.ErrInvalidQRParams) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_qr_params",
				Message: err.Error(),
			})
			return
		}
		h.logger.Error("Failed to generate QR code", zap.String("code", code), zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to generate QR code",
		})
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// Redirect godoc
// @Summary Redirect to the original URL
// @Description Records the click and redirects; expired and deactivated codes look identical to unknown ones
// @Tags links
// @Param code path string true "Short code"
// @Success 302
// @Failure 404 {object} ErrorResponse
// @Router /{code} [get]
func (h *LinkHandler) Redirect(c *gin.Context) {
	code := c.Param("code")

	// Зарезервированные пути верхнего уровня никогда не трактуются как коды
	if IsReservedPath(code) {
		h.respondLinkError(c, code, repository.ErrLinkNotFound)
		return
	}

	link, err := h.linkService.ResolveLink(c.Request.Context(), code)
	if err != nil {
		h.respondLinkError(c, code, err)
		return
	}

	event := &models.ClickEvent{
		ShortCode: code,
		IPAddress: optionalString(c.ClientIP()),
		UserAgent: optionalString(c.Request.UserAgent()),
		Referer:   optionalString(c.Request.Referer()),
	}

	// Редирект без зафиксированного клика не отдаётся: клик коммитится
	// атомарно, и его сбой - сбой всего запроса
	if err := h.analyticsService.RecordClick(c.Request.Context(), event); err != nil {
		h.respondLinkError(c, code, err)
		return
	}

	c.Redirect(http.StatusFound, link.OriginalURL)
}

// respondLinkError единое преобразование ошибок ссылок в HTTP-статусы.
// 404 не различает "никогда не существовала" и "истекла/выключена"
func (h *LinkHandler) respondLinkError(c *gin.Context, code string, err error) {
	if errors.Is(err, repository.ErrLinkNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "Short code not found",
		})
		return
	}

	h.logger.Error("Link operation failed", zap.String("code", code), zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "Internal server error",
	})
}

func (h *LinkHandler) linkView(link *models.Link) models.LinkView {
	return models.LinkView{
		ID:          link.ID,
		ShortCode:   link.ShortCode,
		OriginalURL: link.OriginalURL,
		ShortURL:    h.baseURL + "/" + link.ShortCode,
		CreatedAt:   link.CreatedAt,
		ExpiresAt:   link.ExpiresAt,
		IsActive:    link.IsActive,
		ClickCount:  link.ClickCount,
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
