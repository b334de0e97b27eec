// Package ratelimit implements a sliding-window rate limiter on Redis
// sorted sets, shared across service instances.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter counts requests per key within a sliding window. Each request
// is a member in a sorted set scored by its timestamp; members older
// than the window are trimmed on every check.
type Limiter struct {
	redis  *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// New creates a limiter. Prefix namespaces the Redis keys, e.g. "rl:api".
func New(client *redis.Client, limit int, window time.Duration, prefix string) *Limiter {
	return &Limiter{
		redis:  client,
		limit:  limit,
		window: window,
		prefix: prefix,
	}
}

// Allow records a request for the key and reports whether it stays
// within the limit. Rejected requests are not recorded.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := time.Now()
	redisKey := fmt.Sprintf("%s:%s", l.prefix, key)
	windowStart := now.Add(-l.window)

	pipe := l.redis.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	countCmd := pipe.ZCard(ctx, redisKey)
	oldestCmd := pipe.ZRangeWithScores(ctx, redisKey, 0, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limit check: %w", err)
	}

	count := int(countCmd.Val())
	if count >= l.limit {
		retryAfter := l.window
		if oldest := oldestCmd.Val(); len(oldest) > 0 {
			oldestAt := time.Unix(0, int64(oldest[0].Score))
			retryAfter = l.window - now.Sub(oldestAt)
			if retryAfter < 0 {
				retryAfter = 0
			}
		}
		return Decision{Allowed: false, Remaining: 0, RetryAfter: retryAfter}, nil
	}

	pipe = l.redis.TxPipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: uuid.NewString(),
	})
	pipe.Expire(ctx, redisKey, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("rate limit record: %w", err)
	}

	return Decision{Allowed: true, Remaining: l.limit - count - 1}, nil
}

// Limit returns the configured request limit.
func (l *Limiter) Limit() int {
	return l.limit
}

// Window returns the configured window size.
func (l *Limiter) Window() time.Duration {
	return l.window
}
