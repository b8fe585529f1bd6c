package attempt

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter throttles entry requests so exam and access codes cannot be
// guessed by brute force.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type noopLimiter struct{}

func (noopLimiter) Allow(context.Context, string) (bool, error) {
	return true, nil
}

type redisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewLimiter returns a fixed window limiter backed by Redis, or a limiter
// that allows everything when client is nil.
func NewLimiter(client *redis.Client, limit int, window time.Duration) Limiter {
	if client == nil || limit <= 0 {
		return noopLimiter{}
	}
	return &redisLimiter{client: client, limit: int64(limit), window: window}
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := "examgate:ratelimit:" + key
	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return true, err
	}
	if n == 1 {
		if err := l.client.Expire(ctx, k, l.window).Err(); err != nil {
			return true, err
		}
	}
	return n <= l.limit, nil
}
