package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "ratelimit:"

// Limiter is a sliding-window counter over a Redis sorted set. Each request
// is a member scored by its nanosecond timestamp; a window slide is one
// ZRemRangeByScore. Window and threshold are supplied per call so independent
// call sites share the one mechanism.
type Limiter struct {
	client *redis.Client
}

// NewLimiter creates a limiter on the given client
func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

// Allow reports whether one more event keyed by identifier fits inside the
// window. State expires with the window; nothing persists beyond it.
// The member is added and counted in one transaction, so two concurrent
// callers racing for the last slot can never both be admitted; a denied
// caller removes its own member again and does not shrink the window.
func (l *Limiter) Allow(ctx context.Context, identifier string, limit int, window time.Duration) (bool, error) {
	key := rateLimitPrefix + identifier
	now := time.Now()
	cutoff := now.Add(-window)
	member := uuid.NewString()

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(cutoff.UnixNano(), 10))
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: member,
	})
	countCmd := pipe.ZCard(ctx, key)
	pipe.Expire(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	if countCmd.Val() > int64(limit) {
		if err := l.client.ZRem(ctx, key, member).Err(); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

// Remaining returns how many events are left in the window for an identifier
func (l *Limiter) Remaining(ctx context.Context, identifier string, limit int, window time.Duration) (int64, error) {
	key := rateLimitPrefix + identifier
	cutoff := time.Now().Add(-window)

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(cutoff.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}

	remaining := int64(limit) - countCmd.Val()
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
