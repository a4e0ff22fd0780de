package service

import (
	"bytes"
	"context"
	"io"
	"sort"
	"time"

	"github.com/prn-tf/lightbox/internal/domain"
	"github.com/prn-tf/lightbox/internal/repository"
	"github.com/prn-tf/lightbox/internal/storage"
)

// =============================================================================
// Mock User Repository
// =============================================================================

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	users     map[int64]*domain.User
	nextID    int64
	createErr error
	getErr    error
	updateErr error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:  make(map[int64]*domain.User),
		nextID: 1,
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return domain.ErrUserAlreadyExists
		}
	}
	user.ID = m.nextID
	m.nextID++
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if u, exists := m.users[id]; exists {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) Update(ctx context.Context, user *domain.User) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, exists := m.users[user.ID]; !exists {
		return domain.ErrUserNotFound
	}
	m.users[user.ID] = user
	return nil
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	for _, u := range m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// =============================================================================
// Mock Photo Repository
// =============================================================================

// MockPhotoRepository is a mock implementation of repository.PhotoRepository.
type MockPhotoRepository struct {
	photos    map[int64]*domain.Photo
	likes     map[int64]map[int64]bool // photoID -> userID set
	nextID    int64
	createErr error
	getErr    error
	deleteErr error
}

func NewMockPhotoRepository() *MockPhotoRepository {
	return &MockPhotoRepository{
		photos: make(map[int64]*domain.Photo),
		likes:  make(map[int64]map[int64]bool),
		nextID: 1,
	}
}

func (m *MockPhotoRepository) Create(ctx context.Context, photo *domain.Photo) error {
	if m.createErr != nil {
		return m.createErr
	}
	photo.ID = m.nextID
	m.nextID++
	m.photos[photo.ID] = photo
	m.likes[photo.ID] = make(map[int64]bool)
	return nil
}

func (m *MockPhotoRepository) GetByID(ctx context.Context, id int64) (*domain.Photo, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if p, exists := m.photos[id]; exists {
		p.Likes = m.likeSet(id)
		return p, nil
	}
	return nil, domain.ErrPhotoNotFound
}

func (m *MockPhotoRepository) ListByOwner(ctx context.Context, ownerID int64, opts repository.ListOptions) ([]*domain.Photo, error) {
	owned := []*domain.Photo{}
	for _, p := range m.photos {
		if p.OwnerID == ownerID {
			owned = append(owned, p)
		}
	}
	// Newest first with ID tiebreak, matching the real repositories.
	sort.Slice(owned, func(i, j int) bool {
		if !owned[i].CreatedAt.Equal(owned[j].CreatedAt) {
			return owned[i].CreatedAt.After(owned[j].CreatedAt)
		}
		return owned[i].ID > owned[j].ID
	})

	if opts.Offset >= len(owned) {
		return []*domain.Photo{}, nil
	}
	end := opts.Offset + opts.Limit
	if end > len(owned) {
		end = len(owned)
	}
	return owned[opts.Offset:end], nil
}

func (m *MockPhotoRepository) ToggleLike(ctx context.Context, photoID, userID int64) ([]int64, error) {
	if _, exists := m.photos[photoID]; !exists {
		return nil, domain.ErrPhotoNotFound
	}
	if m.likes[photoID][userID] {
		delete(m.likes[photoID], userID)
	} else {
		m.likes[photoID][userID] = true
	}
	return m.likeSet(photoID), nil
}

func (m *MockPhotoRepository) Delete(ctx context.Context, id int64) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, exists := m.photos[id]; !exists {
		return domain.ErrPhotoNotFound
	}
	delete(m.photos, id)
	delete(m.likes, id)
	return nil
}

func (m *MockPhotoRepository) likeSet(photoID int64) []int64 {
	ids := []int64{}
	for id := range m.likes[photoID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// =============================================================================
// Mock Cache
// =============================================================================

// MockCache is a mock implementation of repository.Cache.
type MockCache struct {
	items map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{items: make(map[string][]byte)}
}

func (m *MockCache) Get(ctx context.Context, key string) ([]byte, error) {
	if v, exists := m.items[key]; exists {
		return v, nil
	}
	return nil, repository.ErrCacheMiss
}

func (m *MockCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.items[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	delete(m.items, key)
	return nil
}

// =============================================================================
// Mock Storage Backend
// =============================================================================

// MockBackend is a mock implementation of storage.Backend.
type MockBackend struct {
	files    map[string][]byte
	storeErr error
}

func NewMockBackend() *MockBackend {
	return &MockBackend{files: make(map[string][]byte)}
}

func (m *MockBackend) Store(ctx context.Context, name string, reader io.Reader, size int64) error {
	if m.storeErr != nil {
		return m.storeErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.files[name] = data
	return nil
}

func (m *MockBackend) Retrieve(ctx context.Context, name string) (io.ReadCloser, error) {
	if data, exists := m.files[name]; exists {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return nil, storage.ErrFileNotFound
}

func (m *MockBackend) Delete(ctx context.Context, name string) error {
	if _, exists := m.files[name]; !exists {
		return storage.ErrFileNotFound
	}
	delete(m.files, name)
	return nil
}

func (m *MockBackend) Exists(ctx context.Context, name string) (bool, error) {
	_, exists := m.files[name]
	return exists, nil
}
