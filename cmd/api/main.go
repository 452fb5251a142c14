package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shorturl/internal/auth"
	"shorturl/internal/config"
	"shorturl/internal/handler"
	"shorturl/internal/middleware"
	"shorturl/internal/repository"
	"shorturl/internal/service"

	"go.uber.org/zap"
)

func main() {
	// Загрузка конфига
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	for _, warning := range cfg.Warnings {
		logger.Warn(warning)
	}

	// Подключение к БД (postgres), схема инициализируется при старте
	db, err := repository.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	// Подключение к Redis
	redis, err := repository.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redis.Close()
	logger.Info("Connected to Redis")

	// Инициализация репозиториев
	linkRepo := repository.NewLinkRepository(db)
	cacheRepo := repository.NewCacheRepository(redis)
	clickRepo := repository.NewClickRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Инициализация сервисов
	tokens := auth.NewTokenManager(cfg.Auth.SecretKey)
	allocator := service.NewCodeAllocator(linkRepo, cfg.Shortener.CodeLength)
	linkService := service.NewLinkService(linkRepo, cacheRepo, allocator, cfg.App.BaseURL, cfg.Shortener.MaxURLLength, logger)
	analyticsService := service.NewAnalyticsService(clickRepo, linkRepo, logger)
	authService := service.NewAuthService(userRepo, tokens, logger)
	qrService := service.NewQRService()

	// Инициализация middleware
	authenticator := middleware.NewAuthenticator(tokens, userRepo)

	var rateLimiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
		})
		defer rateLimiter.Stop()
		logger.Info("Rate limiting enabled",
			zap.Float64("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.BurstSize),
		)
	}

	// Настройка роутера
	router := handler.NewRouter(handler.RouterDeps{
		LinkService:      linkService,
		AnalyticsService: analyticsService,
		AuthService:      authService,
		QRService:        qrService,
		Authenticator:    authenticator,
		RateLimiter:      rateLimiter,
		Config:           cfg,
		Logger:           logger,
	})

	// Запуск сервера
	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запуск в горутине
	go func() {
		logger.Info("Server starting",
			zap.String("port", cfg.App.Port),
			zap.String("environment", cfg.App.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
