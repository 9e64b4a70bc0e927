package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit:"

// RedisLimiter implements the sliding window over a Redis sorted set so the
// limit holds across multiple instances. Scores are unix milliseconds; each
// member carries a UUID so simultaneous requests never collapse into one entry.
type RedisLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
	now    func() time.Time
}

// NewRedisLimiter creates a Redis-backed limiter allowing max requests per
// trailing window for each client identifier.
func NewRedisLimiter(client *redis.Client, max int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		max:    max,
		window: window,
		now:    time.Now,
	}
}

// Allow counts live entries first and denies without recording when the
// identifier is at capacity; otherwise it prunes expired entries and records
// the attempt in one pipeline.
func (l *RedisLimiter) Allow(ctx context.Context, clientID string) (bool, error) {
	key := keyPrefix + clientID
	now := l.now()
	minimum := strconv.FormatInt(now.Add(-l.window).UnixMilli(), 10)

	count, err := l.client.ZCount(ctx, key, minimum, "+inf").Result()
	if err != nil {
		return false, fmt.Errorf("ratelimit: count window for %s: %w", clientID, err)
	}
	if count >= int64(l.max) {
		return false, nil
	}

	p := l.client.Pipeline()
	p.ZRemRangeByScore(ctx, key, "0", minimum)
	p.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixMilli()),
		Member: uuid.NewString(),
	})
	p.Expire(ctx, key, l.window)
	if _, err := p.Exec(ctx); err != nil {
		return false, fmt.Errorf("ratelimit: record attempt for %s: %w", clientID, err)
	}
	return true, nil
}

var _ Limiter = (*RedisLimiter)(nil)
