package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/dtroode/fileshare-server/internal/apperr"
	"github.com/dtroode/fileshare-server/internal/logger"
	"github.com/dtroode/fileshare-server/internal/model"
	"github.com/dtroode/fileshare-server/internal/service"
)

// FileService defines business operations for the file registry.
type FileService interface {
	Upload(ctx context.Context, params service.UploadFileParams) (model.File, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]model.File, error)
	Download(ctx context.Context, userID, fileID uuid.UUID) (service.DownloadInfo, error)
	Delete(ctx context.Context, userID, fileID uuid.UUID) error
}

// SharedFileLister lists files shared with a user.
type SharedFileLister interface {
	SharedWithMe(ctx context.Context, userID uuid.UUID) ([]model.File, error)
}

// File handles file registry endpoints.
type File struct {
	fileService    FileService
	sharedLister   SharedFileLister
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewFile creates a new File handler.
func NewFile(fileService FileService, sharedLister SharedFileLister, contextManager model.ContextManager, logger *logger.Logger) *File {
	return &File{
		fileService:    fileService,
		sharedLister:   sharedLister,
		contextManager: contextManager,
		logger:         logger,
	}
}

// fileResponse is the client-facing file shape; the storage key stays
// internal.
type fileResponse struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	FileType  string    `json:"fileType"`
	FileSize  int64     `json:"fileSize"`
	FileURL   string    `json:"fileUrl"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}

func toFileResponse(file model.File) fileResponse {
	return fileResponse{
		ID:        file.ID.String(),
		Filename:  file.Filename,
		FileType:  file.ContentType,
		FileSize:  file.Size,
		FileURL:   file.URL,
		OwnerID:   file.OwnerID.String(),
		CreatedAt: file.CreatedAt,
	}
}

func toFileResponses(files []model.File) []fileResponse {
	out := make([]fileResponse, 0, len(files))
	for _, file := range files {
		out = append(out, toFileResponse(file))
	}
	return out
}

// Upload stores a multipart file for the authenticated user.
func (h *File) Upload(w http.ResponseWriter, r *http.Request) {
	userID, err := h.requireUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, service.MaxFileSize+1024)
	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, apperr.Validation("No file provided"))
		return
	}
	defer f.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	file, err := h.fileService.Upload(r.Context(), service.UploadFileParams{
		OwnerID:     userID,
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Data:        f,
	})
	if err != nil {
		h.logger.Error("File handler: upload failed",
			"user_id", userID,
			"error", err.Error())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "File uploaded successfully",
		"file":    toFileResponse(file),
	})
}

// List returns the requester's own files.
func (h *File) List(w http.ResponseWriter, r *http.Request) {
	userID, err := h.requireUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	files, err := h.fileService.List(r.Context(), userID)
	if err != nil {
		h.logger.Error("File handler: list failed",
			"user_id", userID,
			"error", err.Error())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toFileResponses(files))
}

// SharedWithMe returns files granted to the requester by other users.
func (h *File) SharedWithMe(w http.ResponseWriter, r *http.Request) {
	userID, err := h.requireUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	files, err := h.sharedLister.SharedWithMe(r.Context(), userID)
	if err != nil {
		h.logger.Error("File handler: shared-with-me failed",
			"user_id", userID,
			"error", err.Error())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toFileResponses(files))
}

// Download answers with a presigned URL after authorization. Denials
// for existing files are reported as 404 so probing with stolen ids
// can not confirm a file exists.
func (h *File) Download(w http.ResponseWriter, r *http.Request) {
	userID, err := h.requireUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	fileID, err := pathUUID(r, "fileId")
	if err != nil {
		writeError(w, err)
		return
	}

	info, err := h.fileService.Download(r.Context(), userID, fileID)
	if err != nil {
		if kind, ok := apperr.KindOf(err); ok && kind == apperr.KindForbidden {
			writeError(w, apperr.NotFound("File not found"))
			return
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"downloadUrl": info.DownloadURL,
		"filename":    info.Filename,
	})
}

// Delete removes a file the requester owns.
func (h *File) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := h.requireUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	fileID, err := pathUUID(r, "fileId")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.fileService.Delete(r.Context(), userID, fileID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "File deleted successfully"})
}

func (h *File) requireUser(r *http.Request) (uuid.UUID, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, apperr.Unauthenticated("authentication required")
	}
	return userID, nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, apperr.Validation("invalid " + name)
	}
	return id, nil
}
