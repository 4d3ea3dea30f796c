package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/fileshare-server/internal/apperr"
	"github.com/dtroode/fileshare-server/internal/logger"
	"github.com/dtroode/fileshare-server/internal/model"
)

// MaxFileSize caps uploads at 100 MiB.
const MaxFileSize = 100 * 1024 * 1024

// downloadURLTTL is the validity of presigned download URLs.
const downloadURLTTL = time.Hour

// UploadFileParams contains parameters to upload a file.
type UploadFileParams struct {
	OwnerID     uuid.UUID
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// DownloadInfo is the result of an authorized download request.
type DownloadInfo struct {
	DownloadURL string
	Filename    string
}

// File is the file registry: it owns create/read/delete of file
// metadata and keeps the blob store and share grants consistent with
// it.
type File struct {
	fileStore model.FileStore
	storage   model.Storage
	cache     model.FileCache
	access    *Access
	logger    *logger.Logger
}

// NewFile creates the file registry service. cache may be nil.
func NewFile(
	fileStore model.FileStore,
	storage model.Storage,
	cache model.FileCache,
	access *Access,
	logger *logger.Logger,
) *File {
	return &File{
		fileStore: fileStore,
		storage:   storage,
		cache:     cache,
		access:    access,
		logger:    logger,
	}
}

// Upload stores the blob first, then the metadata row. If the row
// insert fails the blob is removed again so no orphaned storage is left
// behind.
func (s *File) Upload(ctx context.Context, params UploadFileParams) (model.File, error) {
	if params.Filename == "" {
		return model.File{}, apperr.Validation("No file provided")
	}
	if params.Size > MaxFileSize {
		return model.File{}, apperr.Validation("File size exceeds 100MB limit")
	}

	key := generateStorageKey(params.OwnerID, params.Filename)

	url, err := s.storage.Upload(ctx, key, params.Data, params.Size, params.ContentType)
	if err != nil {
		return model.File{}, fmt.Errorf("failed to upload to storage: %w", err)
	}

	file := model.File{
		ID:          uuid.New(),
		OwnerID:     params.OwnerID,
		Filename:    params.Filename,
		ContentType: params.ContentType,
		Size:        params.Size,
		StorageKey:  key,
		URL:         url,
		CreatedAt:   time.Now(),
	}

	saved, err := s.fileStore.Create(ctx, file)
	if err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.logger.Error("File service: failed to delete orphaned blob",
				"storage_key", key,
				"error", delErr.Error())
		}
		return model.File{}, fmt.Errorf("failed to create file: %w", err)
	}

	s.logger.Info("File service: file uploaded",
		"file_id", saved.ID,
		"owner_id", saved.OwnerID,
		"size", saved.Size)

	return saved, nil
}

// List returns the owner's files, newest first.
func (s *File) List(ctx context.Context, ownerID uuid.UUID) ([]model.File, error) {
	files, err := s.fileStore.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get files by owner id: %w", err)
	}
	return files, nil
}

// Download authorizes the requester against the access-control engine
// and returns a presigned URL for the blob.
func (s *File) Download(ctx context.Context, userID, fileID uuid.UUID) (DownloadInfo, error) {
	file, err := s.access.Authorize(ctx, userID, fileID)
	if err != nil {
		return DownloadInfo{}, err
	}

	url, err := s.storage.PresignedURL(ctx, file.StorageKey, downloadURLTTL)
	if err != nil {
		return DownloadInfo{}, fmt.Errorf("failed to presign download url: %w", err)
	}

	return DownloadInfo{DownloadURL: url, Filename: file.Filename}, nil
}

// Delete removes a file: shares first, then the blob, then the row.
// Only the owner may delete. Blob removal is best-effort; a failure is
// logged and the metadata delete proceeds so clients never see a file
// they can not delete.
func (s *File) Delete(ctx context.Context, userID, fileID uuid.UUID) error {
	file, err := s.fileStore.GetByID(ctx, fileID)
	if errors.Is(err, model.ErrNotFound) {
		return apperr.NotFound("File not found")
	}
	if err != nil {
		return fmt.Errorf("failed to get file: %w", err)
	}

	if file.OwnerID != userID {
		return apperr.Forbidden("Not authorized")
	}

	if err := s.access.RevokeAllForFile(ctx, fileID); err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, file.StorageKey); err != nil {
		s.logger.Error("File service: failed to delete blob",
			"file_id", fileID,
			"storage_key", file.StorageKey,
			"error", err.Error())
	}

	if err := s.fileStore.Delete(ctx, fileID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apperr.NotFound("File not found")
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, fileID); err != nil {
			s.logger.Warn("File service: failed to invalidate file cache",
				"file_id", fileID,
				"error", err.Error())
		}
	}

	s.logger.Info("File service: file deleted",
		"file_id", fileID,
		"owner_id", userID)

	return nil
}

var storageKeyUnsafe = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// generateStorageKey builds a per-owner key with a random component so
// equal filenames never collide.
func generateStorageKey(ownerID uuid.UUID, filename string) string {
	sanitized := storageKeyUnsafe.ReplaceAllString(filename, "_")
	return fmt.Sprintf("%s/%s-%s", ownerID, uuid.NewString(), sanitized)
}
