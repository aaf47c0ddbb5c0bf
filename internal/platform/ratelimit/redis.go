package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultNamespace はRedisキーの既定プレフィックスです。
const DefaultNamespace = "ratelimit"

// RedisLimiter はRedisのINCR/EXPIREで固定ウィンドウを共有する Limiter 実装です。
type RedisLimiter struct {
	rdb       *redis.Client
	limit     int
	window    time.Duration
	namespace string
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter は新しいRedisLimiterのインスタンスを生成します。
// namespaceが空の場合は DefaultNamespace を使用します。
func NewRedisLimiter(rdb *redis.Client, limit int, window time.Duration, namespace string) *RedisLimiter {
	limit, window = normalize(limit, window)
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &RedisLimiter{rdb: rdb, limit: limit, window: window, namespace: namespace}
}

// Allow はキーのカウンタを進めます。最初の1回でウィンドウ幅の有効期限を設定します。
func (r *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	k := r.key(key)

	n, err := r.rdb.Incr(ctx, k).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("incr %s: %w", k, err)
	}
	if n == 1 {
		if err := r.rdb.Expire(ctx, k, r.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("expire %s: %w", k, err)
		}
	}
	if n <= int64(r.limit) {
		return decide(n, r.limit, 0), nil
	}

	ttl, err := r.rdb.TTL(ctx, k).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("ttl %s: %w", k, err)
	}
	if ttl < 0 {
		// 有効期限が失われたカウンタは永久に拒否し続けるので付け直す
		if err := r.rdb.Expire(ctx, k, r.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("expire %s: %w", k, err)
		}
		ttl = r.window
	}
	return decide(n, r.limit, ttl), nil
}

func (r *RedisLimiter) key(key string) string {
	// Redisキーで問題になる文字を置換
	key = strings.ReplaceAll(key, " ", "_")
	return r.namespace + ":" + key
}
