package cache

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"mangareader/internal/domain/entity"
	"mangareader/pkg/logger"
)

const (
	catalogKey    = "catalog:v1"
	viewKeyPrefix = "views:"

	dialTimeout = 3 * time.Second
	pingTimeout = 2 * time.Second
)

// NewRedisClient parses url and pings the server once.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}
	options.DialTimeout = dialTimeout

	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping failed: %w", err)
	}

	return client, nil
}

// RedisCache stores the catalog list and remembers recent chapter views.
// Redis failures degrade to a cache miss and a counted view.
type RedisCache struct {
	client     *redis.Client
	catalogTTL time.Duration
	viewWindow time.Duration
}

func NewRedisCache(client *redis.Client, catalogTTL, viewWindow time.Duration) *RedisCache {
	return &RedisCache{
		client:     client,
		catalogTTL: catalogTTL,
		viewWindow: viewWindow,
	}
}

func (c *RedisCache) GetCatalog(ctx context.Context) ([]*entity.Manga, bool) {
	data, err := c.client.Get(ctx, catalogKey).Bytes()
	if err != nil {
		if !stderrors.Is(err, redis.Nil) {
			logger.Warn("catalog cache read failed: %v", err)
		}
		return nil, false
	}

	var items []*entity.Manga
	if err := json.Unmarshal(data, &items); err != nil {
		logger.Warn("catalog cache entry is corrupt: %v", err)
		return nil, false
	}
	return items, true
}

func (c *RedisCache) SetCatalog(ctx context.Context, items []*entity.Manga) {
	data, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, catalogKey, data, c.catalogTTL).Err(); err != nil {
		logger.Warn("catalog cache write failed: %v", err)
	}
}

func (c *RedisCache) InvalidateCatalog(ctx context.Context) {
	if err := c.client.Del(ctx, catalogKey).Err(); err != nil {
		logger.Warn("catalog cache invalidation failed: %v", err)
	}
}

// FirstView reports whether viewer has not read this chapter inside the
// de-duplication window, and starts the window when so.
func (c *RedisCache) FirstView(ctx context.Context, mangaID, chapterKey, viewer string) bool {
	key := viewKeyPrefix + mangaID + ":" + chapterKey + ":" + viewer
	fresh, err := c.client.SetNX(ctx, key, 1, c.viewWindow).Result()
	if err != nil {
		logger.Warn("view de-duplication failed: %v", err)
		return true
	}
	return fresh
}

// NoopCache never caches and counts every view.
type NoopCache struct{}

func (NoopCache) GetCatalog(context.Context) ([]*entity.Manga, bool)     { return nil, false }
func (NoopCache) SetCatalog(context.Context, []*entity.Manga)             {}
func (NoopCache) InvalidateCatalog(context.Context)                       {}
func (NoopCache) FirstView(context.Context, string, string, string) bool { return true }
