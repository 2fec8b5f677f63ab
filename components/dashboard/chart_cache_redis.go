package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultRedisChartPrefix = "dispatch:chart:"

// RedisChartCache shares rendered charts between dashboard replicas. Redis
// failures degrade to rendering without caching.
type RedisChartCache struct {
	client redis.Cmdable
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

// NewRedisChartCache wraps client. An empty prefix uses "dispatch:chart:".
func NewRedisChartCache(client redis.Cmdable, ttl time.Duration, prefix string, logger *zap.Logger) *RedisChartCache {
	if prefix == "" {
		prefix = defaultRedisChartPrefix
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisChartCache{client: client, ttl: ttl, prefix: prefix, logger: logger}
}

// GetOrRender returns the cached HTML for key or renders and stores it.
func (c *RedisChartCache) GetOrRender(ctx context.Context, key string, render func() (string, error)) (string, error) {
	if c.client == nil || c.ttl <= 0 {
		return render()
	}
	html, err := c.client.Get(ctx, c.prefix+key).Result()
	switch {
	case err == nil:
		return html, nil
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("chart cache read failed", zap.String("key", key), zap.Error(err))
	}

	html, err = render()
	if err != nil {
		return "", err
	}
	if err := c.client.Set(ctx, c.prefix+key, html, c.ttl).Err(); err != nil {
		c.logger.Warn("chart cache write failed", zap.String("key", key), zap.Error(err))
	}
	return html, nil
}
