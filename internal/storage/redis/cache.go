package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dtroode/fileshare-server/internal/model"
)

// cacheTTL bounds staleness of cached file metadata. Shares are never
// cached, so a stale entry can not extend revoked access.
const cacheTTL = 5 * time.Minute

var _ model.FileCache = (*Cache)(nil)

// Cache is a read-through file-metadata cache on Redis.
type Cache struct {
	client *redis.Client
}

// NewCache connects to Redis and verifies the connection.
func NewCache(ctx context.Context, addr, password string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Cache{client: client}, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	return c.client.Close()
}

func cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("file:%s", id)
}

// Get returns the cached file or (nil, nil) on a miss.
func (c *Cache) Get(ctx context.Context, id uuid.UUID) (*model.File, error) {
	data, err := c.client.Get(ctx, cacheKey(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}

	var file model.File
	if err := json.Unmarshal([]byte(data), &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached file: %w", err)
	}

	return &file, nil
}

// Set stores file metadata with the cache TTL.
func (c *Cache) Set(ctx context.Context, file *model.File) error {
	data, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to marshal file: %w", err)
	}

	if err := c.client.Set(ctx, cacheKey(file.ID), data, cacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}

	return nil
}

// Invalidate removes the cached entry for id.
func (c *Cache) Invalidate(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}
