package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Значение SECRET_KEY по умолчанию, допустимо только в development
const devSecretKey = "dev-secret-key-change-in-production"

type Config struct {
	App       AppConfig
	DB        DBConfig
	Redis     RedisConfig
	Auth      AuthConfig
	Shortener ShortenerConfig
	RateLimit RateLimitConfig

	// Warnings накапливает некритичные замечания по конфигурации,
	// main логгирует их после инициализации логгера
	Warnings []string
}

type AppConfig struct {
	Port           string
	Environment    string // development или production
	BaseURL        string
	AllowedOrigins []string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Host string
	Port string
}

type AuthConfig struct {
	SecretKey string
}

type ShortenerConfig struct {
	CodeLength   int
	MaxURLLength int
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	BurstSize         int
}

// IsProduction проверяет, работает ли сервис в production окружении
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// .env опционален - в контейнере конфиг приходит из окружения
	_ = viper.ReadInConfig()

	var cfg Config
	cfg.App.Port = getString("APP_PORT", "8080")
	cfg.App.Environment = getString("ENVIRONMENT", "development")
	cfg.App.BaseURL = strings.TrimRight(getString("BASE_URL", "http://localhost:8080"), "/")
	cfg.App.AllowedOrigins = parseOrigins(viper.GetString("ALLOWED_ORIGINS"))

	cfg.DB.Host = getString("DB_HOST", "localhost")
	cfg.DB.Port = getString("DB_PORT", "5432")
	cfg.DB.User = viper.GetString("DB_USER")
	cfg.DB.Password = viper.GetString("DB_PASSWORD")
	cfg.DB.Name = viper.GetString("DB_NAME")

	cfg.Redis.Host = getString("REDIS_HOST", "localhost")
	cfg.Redis.Port = getString("REDIS_PORT", "6379")

	cfg.Auth.SecretKey = getString("SECRET_KEY", devSecretKey)

	cfg.Shortener.CodeLength = getInt("SHORT_CODE_LENGTH", 8)
	cfg.Shortener.MaxURLLength = getInt("MAX_URL_LENGTH", 2048)

	cfg.RateLimit.Enabled = viper.GetBool("RATE_LIMIT_ENABLED")
	cfg.RateLimit.RequestsPerSecond = viper.GetFloat64("RATE_LIMIT_RPS")
	if cfg.RateLimit.RequestsPerSecond == 0 {
		cfg.RateLimit.RequestsPerSecond = 10
	}
	cfg.RateLimit.BurstSize = viper.GetInt("RATE_LIMIT_BURST")
	if cfg.RateLimit.BurstSize == 0 {
		cfg.RateLimit.BurstSize = 20
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate проверяет конфигурацию: в production небезопасные значения - ошибка,
// в development - предупреждение
func (c *Config) validate() error {
	if c.Shortener.CodeLength < 4 || c.Shortener.CodeLength > 20 {
		return fmt.Errorf("SHORT_CODE_LENGTH must be between 4 and 20, got %d", c.Shortener.CodeLength)
	}

	if c.Auth.SecretKey == "" || c.Auth.SecretKey == devSecretKey {
		if c.IsProduction() {
			return fmt.Errorf("SECRET_KEY must be set to a strong random value in production")
		}
		c.Warnings = append(c.Warnings, "SECRET_KEY is using the development default, set SECRET_KEY for production")
	}

	if c.IsProduction() {
		if strings.Contains(c.App.BaseURL, "localhost") || strings.Contains(c.App.BaseURL, "127.0.0.1") {
			c.Warnings = append(c.Warnings, fmt.Sprintf("BASE_URL %q looks like a development URL", c.App.BaseURL))
		}
		for _, origin := range c.App.AllowedOrigins {
			if origin == "*" {
				c.Warnings = append(c.Warnings, "ALLOWED_ORIGINS allows all origins, restrict it in production")
			}
		}
	}

	return nil
}

func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}

	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}

	return origins
}

func getString(key, defaultValue string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if v := viper.GetInt(key); v != 0 {
		return v
	}
	return defaultValue
}
