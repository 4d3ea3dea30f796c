package service

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/fileshare-server/internal/model"
)

// MockFileStore mocks the FileStore interface
type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Create(ctx context.Context, file model.File) (model.File, error) {
	args := m.Called(ctx, file)
	return args.Get(0).(model.File), args.Error(1)
}

func (m *MockFileStore) GetByID(ctx context.Context, id uuid.UUID) (model.File, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.File), args.Error(1)
}

func (m *MockFileStore) GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]model.File, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]model.File), args.Error(1)
}

func (m *MockFileStore) GetSharedWith(ctx context.Context, userID uuid.UUID, now time.Time) ([]model.File, error) {
	args := m.Called(ctx, userID, now)
	return args.Get(0).([]model.File), args.Error(1)
}

func (m *MockFileStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockShareStore mocks the ShareStore interface
type MockShareStore struct {
	mock.Mock
}

func (m *MockShareStore) Create(ctx context.Context, share model.Share) (model.Share, error) {
	args := m.Called(ctx, share)
	return args.Get(0).(model.Share), args.Error(1)
}

func (m *MockShareStore) GetByID(ctx context.Context, id uuid.UUID) (model.Share, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Share), args.Error(1)
}

func (m *MockShareStore) GetByLinkToken(ctx context.Context, token string) (model.Share, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(model.Share), args.Error(1)
}

func (m *MockShareStore) HasDirectGrant(ctx context.Context, fileID, userID uuid.UUID, now time.Time) (bool, error) {
	args := m.Called(ctx, fileID, userID, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockShareStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockShareStore) DeleteByFileID(ctx context.Context, fileID uuid.UUID) error {
	args := m.Called(ctx, fileID)
	return args.Error(0)
}

// MockUserStore mocks the UserStore interface
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) GetByUsername(ctx context.Context, username string) (model.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) ExistingIDs(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockUserStore) Create(ctx context.Context, user model.User) (model.User, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(model.User), args.Error(1)
}

// MockStorage mocks the Storage interface
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, key, reader, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorage) PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

// MockFileCache mocks the FileCache interface
type MockFileCache struct {
	mock.Mock
}

func (m *MockFileCache) Get(ctx context.Context, id uuid.UUID) (*model.File, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileCache) Set(ctx context.Context, file *model.File) error {
	args := m.Called(ctx, file)
	return args.Error(0)
}

func (m *MockFileCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPasswordHasher mocks the PasswordHasher interface
type MockPasswordHasher struct {
	mock.Mock
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(password, hash string) bool {
	args := m.Called(password, hash)
	return args.Bool(0)
}

// MockTokenManager mocks the TokenManager interface
type MockTokenManager struct {
	mock.Mock
}

func (m *MockTokenManager) GenerateAccessToken(userID uuid.UUID) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}

func (m *MockTokenManager) ParseAccessToken(token string) (uuid.UUID, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}
