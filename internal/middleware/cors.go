package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS middleware для настроенного списка origins.
// Пустой список в development означает "*", в production - запрет
func CORS(allowedOrigins []string, isProduction bool) gin.HandlerFunc {
	allowAll := false
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
			continue
		}
		allowed[origin] = true
	}
	if len(allowedOrigins) == 0 && !isProduction {
		allowAll = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowAll || allowed[origin]) {
			c.Header("Access-Control-Allow-Origin", origin)
			// Credentials разрешаются только явно перечисленным origins:
			// эхо произвольного origin вместе с credentials открывает
			// авторизованные запросы любому сайту
			if allowed[origin] {
				c.Header("Access-Control-Allow-Credentials", "true")
			}
			c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
			c.Header("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
