package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Пути верхнего уровня, которые никогда не трактуются как короткие коды
var reservedPaths = map[string]bool{
	"docs":         true,
	"redoc":        true,
	"openapi.json": true,
	"api":          true,
	"health":       true,
	"robots.txt":   true,
	"favicon.ico":  true,
	"static":       true,
	"assets":       true,
}

// IsReservedPath проверяет код против списка зарезервированных путей,
// сравнение без учёта регистра
func IsReservedPath(code string) bool {
	return reservedPaths[strings.ToLower(code)]
}

// HealthCheck godoc
// @Summary Health check
// @Tags service
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Root сервисный баннер на корневом пути
func Root(version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "ShortURL API",
			"version": version,
		})
	}
}

// RobotsTxt запрещает краулерам ходить по API и аналитике
func RobotsTxt(c *gin.Context) {
	const body = `User-agent: *
Disallow: /api/
Allow: /

Crawl-delay: 10
`
	c.String(http.StatusOK, body)
}

// AddDocsRoutes подключает статическую документацию.
// В production документация не публикуется
func AddDocsRoutes(router *gin.Engine, isProduction bool) {
	if isProduction {
		return
	}

	router.StaticFile("/docs", "./docs/swagger-ui.html")
	router.StaticFile("/openapi.json", "./docs/openapi.json")
}
