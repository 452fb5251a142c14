package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"shorturl/internal/models"
	"shorturl/internal/repository"

	"go.uber.org/zap"
)

// Ошибки сервиса ссылок
var (
	ErrInvalidURL = errors.New("invalid URL")
	ErrInvalidTTL = errors.New("expiration must be between 1 and 365 days")
)

const (
	minTTLDays      = 1
	maxTTLDays      = 365
	defaultCacheTTL = 24 * time.Hour
)

// LinkService операции над короткими ссылками.
// Авторизация здесь не проверяется: HTTP-слой сравнивает владельца
// ссылки с аутентифицированным пользователем до вызова мутаций
type LinkService interface {
	CreateLink(ctx context.Context, input *models.CreateLinkInput, ownerID *int64) (*models.LinkView, error)
	GetLink(ctx context.Context, code string) (*models.Link, error)
	ResolveLink(ctx context.Context, code string) (*models.Link, error)
	ListLinks(ctx context.Context, page, pageSize int, ownerID *int64) (*models.LinkListResult, error)
	DeactivateLink(ctx context.Context, code string) error
}

type linkService struct {
	linkRepo     repository.LinkRepository
	cacheRepo    repository.CacheRepository
	allocator    *CodeAllocator
	baseURL      string
	maxURLLength int
	logger       *zap.Logger
}

func NewLinkService(
	linkRepo repository.LinkRepository,
	cacheRepo repository.CacheRepository,
	allocator *CodeAllocator,
	baseURL string,
	maxURLLength int,
	logger *zap.Logger,
) LinkService {
	return &linkService{
		linkRepo:     linkRepo,
		cacheRepo:    cacheRepo,
		allocator:    allocator,
		baseURL:      baseURL,
		maxURLLength: maxURLLength,
		logger:       logger,
	}
}

// CreateLink создаёт короткую ссылку. ownerID nil - анонимная ссылка
func (s *linkService) CreateLink(ctx context.Context, input *models.CreateLinkInput, ownerID *int64) (*models.LinkView, error) {
	normalizedURL, err := s.normalizeURL(input.OriginalURL)
	if err != nil {
		return nil, err
	}

	var expiresAt *time.Time
	if input.ExpiresInDays != nil {
		days := *input.ExpiresInDays
		if days < minTTLDays || days > maxTTLDays {
			return nil, ErrInvalidTTL
		}
		t := time.Now().UTC().Add(time.Duration(days) * 24 * time.Hour)
		expiresAt = &t
	}

	generated := input.CustomCode == nil || *input.CustomCode == ""

	var link *models.Link
	for attempt := 0; ; attempt++ {
		shortCode, err := s.allocator.Allocate(ctx, input.CustomCode)
		if err != nil {
			return nil, err
		}

		link = &models.Link{
			ShortCode:   shortCode,
			OriginalURL: normalizedURL,
			UserID:      ownerID,
			CreatedAt:   time.Now().UTC(),
			ExpiresAt:   expiresAt,
		}

		// Ограничение уникальности ловит гонку между Allocate и Create:
		// конкурентная вставка того же кода превращается в ErrCodeExists
		err = s.linkRepo.Create(ctx, link)
		if err == nil {
			break
		}

		// Коллизию сгенерированного кода клиент не выбирал - берём новый код.
		// Занятый кастомный код возвращается конфликтом сразу
		if generated && errors.Is(err, repository.ErrCodeExists) && attempt == 0 {
			s.logger.Warn("Generated short code collided on insert, retrying", zap.String("code", shortCode))
			continue
		}
		return nil, err
	}

	s.cacheLink(ctx, link)

	view := s.view(link)
	return &view, nil
}

// GetLink возвращает ссылку в любом состоянии жизненного цикла -
// используется страницами статистики, не редиректом
func (s *linkService) GetLink(ctx context.Context, code string) (*models.Link, error) {
	if link, err := s.cacheRepo.Get(ctx, code); err == nil {
		return link, nil
	}

	link, err := s.linkRepo.GetByShortCode(ctx, code)
	if err != nil {
		return nil, err
	}

	s.cacheLink(ctx, link)

	return link, nil
}

// ResolveLink возвращает ссылку, доступную для редиректа. Истёкшие и
// деактивированные неотличимы от несуществующих
func (s *linkService) ResolveLink(ctx context.Context, code string) (*models.Link, error) {
	link, err := s.GetLink(ctx, code)
	if err != nil {
		return nil, err
	}

	// Доступность перепроверяется и на закэшированной записи
	if !link.IsResolvable() {
		return nil, repository.ErrLinkNotFound
	}

	return link, nil
}

func (s *linkService) ListLinks(ctx context.Context, page, pageSize int, ownerID *int64) (*models.LinkListResult, error) {
	links, total, err := s.linkRepo.List(ctx, page, pageSize, ownerID)
	if err != nil {
		return nil, err
	}

	views := make([]models.LinkView, 0, len(links))
	for i := range links {
		views = append(views, s.view(&links[i]))
	}

	var totalPages int64
	if total > 0 {
		totalPages = (total + int64(pageSize) - 1) / int64(pageSize)
	}

	return &models.LinkListResult{
		URLs:       views,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// DeactivateLink выключает ссылку. Повторный вызов - no-op,
// пути реактивации нет
func (s *linkService) DeactivateLink(ctx context.Context, code string) error {
	if err := s.linkRepo.Deactivate(ctx, code); err != nil {
		return err
	}

	// Инвалидация кэша, чтобы редирект не пережил деактивацию
	if err := s.cacheRepo.Delete(ctx, code); err != nil {
		s.logger.Warn("Failed to evict link from cache", zap.String("code", code), zap.Error(err))
	}

	return nil
}

// normalizeURL приводит URL к каноничному виду: дописывает https://
// при отсутствии схемы и требует абсолютный URL с хостом
func (s *linkService) normalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return "", ErrInvalidURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", ErrInvalidURL
	}

	if len(raw) > s.maxURLLength {
		return "", ErrInvalidURL
	}

	return raw, nil
}

func (s *linkService) cacheLink(ctx context.Context, link *models.Link) {
	ttl := defaultCacheTTL
	if link.ExpiresAt != nil {
		until := time.Until(*link.ExpiresAt)
		if until <= 0 {
			return
		}
		if until < ttl {
			ttl = until
		}
	}

	if err := s.cacheRepo.Set(ctx, link.ShortCode, link, ttl); err != nil {
		s.logger.Warn("Failed to cache link", zap.String("code", link.ShortCode), zap.Error(err))
	}
}

func (s *linkService) view(link *models.Link) models.LinkView {
	return models.LinkView{
		ID:          link.ID,
		ShortCode:   link.ShortCode,
		OriginalURL: link.OriginalURL,
		ShortURL:    s.baseURL + "/" + link.ShortCode,
		CreatedAt:   link.CreatedAt,
		ExpiresAt:   link.ExpiresAt,
		IsActive:    link.IsActive,
		ClickCount:  link.ClickCount,
	}
}
