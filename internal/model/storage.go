package model

import (
	"context"
	"io"
	"time"
)

// Storage is the blob gateway. The service layer never inspects blob
// contents; it only passes keys and URLs through.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (url string, err error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
}
