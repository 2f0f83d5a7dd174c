package pharmacy

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/nobetci/eczane/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cacheKeyPrefix = "nobetci:"

// Cache is the subset of the Redis client used for caching.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// CachedSource wraps a Source with a Redis read-through cache. Cache failures
// are logged and the wrapped source is used instead.
type CachedSource struct {
	next  Source
	cache Cache
	ttl   time.Duration
	log   *zap.Logger
}

// NewCachedSource creates a read-through cache in front of next.
func NewCachedSource(next Source, cache Cache, ttl time.Duration, log *zap.Logger) *CachedSource {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedSource{next: next, cache: cache, ttl: ttl, log: log}
}

// ListByCity returns the cached list for citySlug, loading it from the wrapped source on a miss.
func (c *CachedSource) ListByCity(ctx context.Context, citySlug string) ([]models.Pharmacy, error) {
	return readThrough(ctx, c, cacheKeyPrefix+"city:"+citySlug, func() ([]models.Pharmacy, error) {
		return c.next.ListByCity(ctx, citySlug)
	})
}

// Cities returns the cached city list, loading it from the wrapped source on a miss.
func (c *CachedSource) Cities(ctx context.Context) ([]models.City, error) {
	return readThrough(ctx, c, cacheKeyPrefix+"cities", func() ([]models.City, error) {
		return c.next.Cities(ctx)
	})
}

func readThrough[T any](ctx context.Context, c *CachedSource, key string, load func() (T, error)) (T, error) {
	var cached T
	raw, err := c.cache.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		decodeErr := json.Unmarshal(raw, &cached)
		if decodeErr == nil {
			return cached, nil
		}
		c.log.Warn("pharmacy_cache_decode_failed", zap.String("key", key), zap.Error(decodeErr))
	case errors.Is(err, redis.Nil):
	default:
		c.log.Warn("pharmacy_cache_get_failed", zap.String("key", key), zap.Error(err))
	}

	value, err := load()
	if err != nil {
		return value, err
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("pharmacy_cache_encode_failed", zap.String("key", key), zap.Error(err))
		return value, nil
	}
	if err := c.cache.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
		c.log.Warn("pharmacy_cache_set_failed", zap.String("key", key), zap.Error(err))
	}
	return value, nil
}
