package mocks

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"shorturl/internal/models"
	"shorturl/internal/repository"
)

// ErrCacheMiss is returned by MockCacheRepository on a missing key
var ErrCacheMiss = errors.New("cache miss")

// MockLinkRepository implements repository.LinkRepository for testing
type MockLinkRepository struct {
	mu     sync.RWMutex
	links  map[string]*models.Link
	nextID int64
}

func NewMockLinkRepository() *MockLinkRepository {
	return &MockLinkRepository{
		links:  make(map[string]*models.Link),
		nextID: 1,
	}
}

func (m *MockLinkRepository) Create(ctx context.Context, link *models.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.links[link.ShortCode]; exists {
		return repository.ErrCodeExists
	}

	link.ID = m.nextID
	link.IsActive = true
	m.nextID++
	stored := *link
	m.links[link.ShortCode] = &stored
	return nil
}

func (m *MockLinkRepository) GetByShortCode(ctx context.Context, code string) (*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, exists := m.links[code]
	if !exists {
		return nil, repository.ErrLinkNotFound
	}
	copied := *link
	return &copied, nil
}

func (m *MockLinkRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.links[code]
	return exists, nil
}

func (m *MockLinkRepository) List(ctx context.Context, page, pageSize int, userID *int64) ([]models.Link, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var all []models.Link
	for _, link := range m.links {
		if userID != nil && (link.UserID == nil || *link.UserID != *userID) {
			continue
		}
		all = append(all, *link)
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := int64(len(all))
	offset := (page - 1) * pageSize
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *MockLinkRepository) Deactivate(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, exists := m.links[code]
	if !exists {
		return repository.ErrLinkNotFound
	}
	link.IsActive = false
	return nil
}

// incrementClicks is used by MockClickRepository to mirror the transactional
// counter update the real repository performs
func (m *MockLinkRepository) incrementClicks(linkID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, link := range m.links {
		if link.ID == linkID {
			link.ClickCount++
			return
		}
	}
}

// SetExpiry overrides a stored link's expiration, simulating clock advance
func (m *MockLinkRepository) SetExpiry(code string, expiresAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if link, exists := m.links[code]; exists {
		link.ExpiresAt = &expiresAt
	}
}

// MockClickRepository implements repository.ClickRepository for testing
type MockClickRepository struct {
	mu     sync.RWMutex
	clicks []models.Click
	nextID int64
	links  *MockLinkRepository
}

func NewMockClickRepository(links *MockLinkRepository) *MockClickRepository {
	return &MockClickRepository{
		nextID: 1,
		links:  links,
	}
}

func (m *MockClickRepository) RecordClick(ctx context.Context, click *models.Click) error {
	m.mu.Lock()
	click.ID = m.nextID
	m.nextID++
	m.clicks = append(m.clicks, *click)
	m.mu.Unlock()

	if m.links != nil {
		m.links.incrementClicks(click.LinkID)
	}
	return nil
}

func (m *MockClickRepository) GetRecent(ctx context.Context, linkID int64, limit int) ([]models.Click, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []models.Click
	for _, click := range m.clicks {
		if click.LinkID == linkID {
			result = append(result, click)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ClickedAt.After(result[j].ClickedAt)
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *MockClickRepository) GetUniqueIPCount(ctx context.Context, linkID int64) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ips := make(map[string]bool)
	for _, click := range m.clicks {
		if click.LinkID == linkID && click.IPAddress != nil {
			ips[*click.IPAddress] = true
		}
	}
	return int64(len(ips)), nil
}

func (m *MockClickRepository) GetClicksByDate(ctx context.Context, linkID int64) (map[string]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	buckets := make(map[string]int64)
	for _, click := range m.clicks {
		if click.LinkID == linkID {
			buckets[click.ClickedAt.UTC().Format("2006-01-02")]++
		}
	}
	return buckets, nil
}

func (m *MockClickRepository) GetClicksByHour(ctx context.Context, linkID int64) (map[string]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	buckets := make(map[string]int64)
	for _, click := range m.clicks {
		if click.LinkID == linkID {
			buckets[click.ClickedAt.UTC().Format("15")]++
		}
	}
	return buckets, nil
}

func (m *MockClickRepository) GetTopReferers(ctx context.Context, linkID int64, limit int) ([]models.RefererCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[string]int64)
	for _, click := range m.clicks {
		if click.LinkID == linkID && click.Referer != nil {
			counts[*click.Referer]++
		}
	}

	var result []models.RefererCount
	for referer, count := range counts {
		result = append(result, models.RefererCount{Referer: referer, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Referer < result[j].Referer
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// MockUserRepository implements repository.UserRepository for testing
type MockUserRepository struct {
	mu     sync.RWMutex
	users  map[int64]*models.User
	nextID int64
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[int64]*models.User),
		nextID: 1,
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == user.Email {
			return repository.ErrEmailExists
		}
		if existing.Username == user.Username {
			return repository.ErrUsernameExists
		}
	}

	user.ID = m.nextID
	user.IsActive = true
	m.nextID++
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, exists := m.users[id]
	if !exists {
		return nil, repository.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// Deactivate marks a user inactive, used to test login rejection
func (m *MockUserRepository) Deactivate(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if user, exists := m.users[id]; exists {
		user.IsActive = false
	}
}

// MockCacheRepository implements repository.CacheRepository for testing
type MockCacheRepository struct {
	mu    sync.RWMutex
	items map[string]*models.Link
}

func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{
		items: make(map[string]*models.Link),
	}
}

func (m *MockCacheRepository) Get(ctx context.Context, code string) (*models.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, exists := m.items[code]
	if !exists {
		return nil, ErrCacheMiss
	}
	copied := *link
	return &copied, nil
}

func (m *MockCacheRepository) Set(ctx context.Context, code string, link *models.Link, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *link
	m.items[code] = &stored
	return nil
}

func (m *MockCacheRepository) Delete(ctx context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.items, code)
	return nil
}
