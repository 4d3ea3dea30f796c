package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// FileStore defines persistence operations for file metadata.
type FileStore interface {
	Create(ctx context.Context, file File) (File, error)
	GetByID(ctx context.Context, id uuid.UUID) (File, error)
	GetByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]File, error)
	// GetSharedWith returns files carrying a direct grant for userID
	// that has no expiry or expires strictly after now.
	GetSharedWith(ctx context.Context, userID uuid.UUID, now time.Time) ([]File, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// File represents stored file metadata. The bytes themselves live in
// the blob store under StorageKey; the file has exactly one owner.
type File struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"ownerId"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	StorageKey  string    `json:"storageKey"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"createdAt"`
}
