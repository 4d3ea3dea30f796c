package model

import (
	"context"

	"github.com/google/uuid"
)

// FileCache caches file metadata. Get returns (nil, nil) on a miss.
// Shares are never cached: revocation must observe the durable store.
type FileCache interface {
	Get(ctx context.Context, id uuid.UUID) (*File, error)
	Set(ctx context.Context, file *File) error
	Invalidate(ctx context.Context, id uuid.UUID) error
}
