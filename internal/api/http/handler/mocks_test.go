package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dtroode/fileshare-server/internal/model"
	"github.com/dtroode/fileshare-server/internal/service"
)

// MockAuthService mocks the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, username, email, password string) (model.User, string, error) {
	args := m.Called(ctx, username, email, password)
	return args.Get(0).(model.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (model.User, string, error) {
	args := m.Called(ctx, email, password)
	return args.Get(0).(model.User), args.String(1), args.Error(2)
}

// MockFileService mocks the FileService interface
type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Upload(ctx context.Context, params service.UploadFileParams) (model.File, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(model.File), args.Error(1)
}

func (m *MockFileService) List(ctx context.Context, ownerID uuid.UUID) ([]model.File, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]model.File), args.Error(1)
}

func (m *MockFileService) Download(ctx context.Context, userID, fileID uuid.UUID) (service.DownloadInfo, error) {
	args := m.Called(ctx, userID, fileID)
	return args.Get(0).(service.DownloadInfo), args.Error(1)
}

func (m *MockFileService) Delete(ctx context.Context, userID, fileID uuid.UUID) error {
	args := m.Called(ctx, userID, fileID)
	return args.Error(0)
}

// MockSharedFileLister mocks the SharedFileLister interface
type MockSharedFileLister struct {
	mock.Mock
}

func (m *MockSharedFileLister) SharedWithMe(ctx context.Context, userID uuid.UUID) ([]model.File, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]model.File), args.Error(1)
}

// MockAccessService mocks the AccessService interface
type MockAccessService struct {
	mock.Mock
}

func (m *MockAccessService) CreateDirectShares(ctx context.Context, ownerID, fileID uuid.UUID, targetUserIDs []uuid.UUID, expiryDays int) ([]model.Share, []model.ShareTargetError, error) {
	args := m.Called(ctx, ownerID, fileID, targetUserIDs, expiryDays)
	var shares []model.Share
	if args.Get(0) != nil {
		shares = args.Get(0).([]model.Share)
	}
	var failed []model.ShareTargetError
	if args.Get(1) != nil {
		failed = args.Get(1).([]model.ShareTargetError)
	}
	return shares, failed, args.Error(2)
}

func (m *MockAccessService) CreateLinkShare(ctx context.Context, ownerID, fileID uuid.UUID, expiryHours int) (model.Share, string, error) {
	args := m.Called(ctx, ownerID, fileID, expiryHours)
	return args.Get(0).(model.Share), args.String(1), args.Error(2)
}

func (m *MockAccessService) ResolveLinkShare(ctx context.Context, requestingUserID uuid.UUID, token string) (model.ResolvedShareLink, error) {
	args := m.Called(ctx, requestingUserID, token)
	return args.Get(0).(model.ResolvedShareLink), args.Error(1)
}

func (m *MockAccessService) RevokeShare(ctx context.Context, userID, shareID uuid.UUID) error {
	args := m.Called(ctx, userID, shareID)
	return args.Error(0)
}
