package handler

import (
	"shorturl/internal/config"
	"shorturl/internal/middleware"
	"shorturl/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const apiVersion = "0.1.0"

// RouterDeps зависимости роутера, собираются в main
type RouterDeps struct {
	LinkService      service.LinkService
	AnalyticsService service.AnalyticsService
	AuthService      service.AuthService
	QRService        service.QRService
	Authenticator    *middleware.Authenticator
	RateLimiter      *middleware.RateLimiter
	Config           *config.Config
	Logger           *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	logger := deps.Logger

	// Middleware для логгирования запросов
	router.Use(func(c *gin.Context) {
		c.Next()
		logger.Info("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.String("ip", c.ClientIP()),
		)
	})

	router.Use(middleware.CORS(deps.Config.App.AllowedOrigins, deps.Config.IsProduction()))

	// Rate limiting подключается только при явном включении в конфиге
	if deps.RateLimiter != nil {
		router.Use(deps.RateLimiter.Middleware())
	}

	linkHandler := NewLinkHandler(deps.LinkService, deps.AnalyticsService, deps.QRService, deps.Config.App.BaseURL, logger)
	analyticsHandler := NewAnalyticsHandler(deps.AnalyticsService, deps.LinkService, logger)
	authHandler := NewAuthHandler(deps.AuthService, logger)

	requireAuth := deps.Authenticator.RequireAuth()
	optionalAuth := deps.Authenticator.OptionalAuth()

	// API v1
	v1 := router.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.GET("/me", requireAuth, authHandler.Me)
		}

		urls := v1.Group("/urls")
		{
			urls.POST("", optionalAuth, linkHandler.CreateLink)
			urls.GET("", requireAuth, linkHandler.ListLinks)
			urls.GET("/:code", linkHandler.GetLinkInfo)
			urls.DELETE("/:code", optionalAuth, linkHandler.DeactivateLink)
			urls.GET("/:code/qr", optionalAuth, linkHandler.QRCode)
		}

		analytics := v1.Group("/analytics")
		{
			analytics.GET("/:code/summary", requireAuth, analyticsHandler.Summary)
			analytics.GET("/:code/clicks", requireAuth, analyticsHandler.RecentClicks)
		}
	}

	router.GET("/", Root(apiVersion))
	router.GET("/health", HealthCheck)
	router.GET("/robots.txt", RobotsTxt)

	// Редирект по короткому коду - корневой путь
	router.GET("/:code", linkHandler.Redirect)

	AddDocsRoutes(router, deps.Config.IsProduction())

	return router
}
