package middleware

import (
	"context"
	"net/http"
	"strings"

	"shorturl/internal/auth"
	"shorturl/internal/models"
	"shorturl/internal/repository"

	"github.com/gin-gonic/gin"
)

const userContextKey = "current_user"

// Authenticator проверяет bearer-токены и загружает пользователя.
// RequireAuth и OptionalAuth применяют одну и ту же валидацию и
// отличаются только поведением при отказе
type Authenticator struct {
	tokens   *auth.TokenManager
	userRepo repository.UserRepository
}

func NewAuthenticator(tokens *auth.TokenManager, userRepo repository.UserRepository) *Authenticator {
	return &Authenticator{
		tokens:   tokens,
		userRepo: userRepo,
	}
}

// RequireAuth middleware для эндпоинтов с обязательной аутентификацией:
// любой отказ валидации - 401
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := a.authenticate(c)
		if !ok {
			c.Header("WWW-Authenticate", "Bearer")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "Could not validate credentials",
			})
			c.Abort()
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// OptionalAuth middleware для эндпоинтов, где аутентификация опциональна:
// при любом отказе запрос продолжается анонимно
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, ok := a.authenticate(c); ok {
			c.Set(userContextKey, user)
		}
		c.Next()
	}
}

// authenticate общая логика валидации: подпись, срок действия,
// целочисленный subject, существующий активный пользователь
func (a *Authenticator) authenticate(c *gin.Context) (*models.User, bool) {
	token := extractBearerToken(c)
	if token == "" {
		return nil, false
	}

	claims, err := a.tokens.Parse(token)
	if err != nil {
		return nil, false
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, false
	}

	user, err := a.lookupUser(c.Request.Context(), userID)
	if err != nil || !user.IsActive {
		return nil, false
	}

	return user, true
}

func (a *Authenticator) lookupUser(ctx context.Context, id int64) (*models.User, error) {
	return a.userRepo.GetByID(ctx, id)
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

// CurrentUser извлекает аутентифицированного пользователя из контекста.
// Второе значение false - запрос анонимный
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}

	user, ok := value.(*models.User)
	return user, ok
}
