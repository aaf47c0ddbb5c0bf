package di

import (
	"github.com/redis/go-redis/v9"

	"plantid_backend/internal/app/config"
	"plantid_backend/internal/platform/ratelimit"
)

// NewRateLimiter creates a Limiter implementation.
// If Redis is available, it returns a Redis-backed implementation shared across instances.
// Otherwise, it falls back to an in-process counter.
func NewRateLimiter(rdb *redis.Client, cfg config.RateLimit) ratelimit.Limiter {
	if rdb != nil {
		return ratelimit.NewRedisLimiter(rdb, cfg.Limit, cfg.Window, "plantid:ratelimit")
	}
	return ratelimit.NewMemoryLimiter(cfg.Limit, cfg.Window)
}
