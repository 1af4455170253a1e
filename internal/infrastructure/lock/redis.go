// Package lock provides a Redis-backed advisory lock used to serialize
// concurrent checkouts touching the same product. Acquisition is best-effort:
// row locks inside the consume transaction remain the authoritative guard
// against oversell, so an unavailable Redis never blocks a sale.
package lock

import (
	"context"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"pannpos/pkg/logger"
)

// RedisLocker implements checkout.Locker on top of bsm/redislock.
type RedisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewRedisLocker wraps an existing redis client. ttl bounds how long a
// crashed holder can keep other terminals waiting; it should comfortably
// exceed a single checkout's worst-case duration.
func NewRedisLocker(rdb *redis.Client, ttl time.Duration, log *logger.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if log == nil {
		log = logger.Default()
	}
	return &RedisLocker{
		client: redislock.New(rdb),
		ttl:    ttl,
		log:    log.WithComponent("redis_locker"),
	}
}

// Acquire tries to obtain the named lock with a short linear backoff.
// When the lock cannot be obtained (contention or Redis unavailable) it
// returns ok=false and the caller proceeds without it.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (release func(), ok bool) {
	lock, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(50*time.Millisecond), 3),
	})
	if err == redislock.ErrNotObtained {
		l.log.Warnw("advisory lock contended; proceeding without it", "key", key)
		return func() {}, false
	}
	if err != nil {
		l.log.Warnw("advisory lock unavailable; proceeding without it", "key", key, "error", err)
		return func() {}, false
	}

	return func() {
		if releaseErr := lock.Release(context.WithoutCancel(ctx)); releaseErr != nil && releaseErr != redislock.ErrLockNotHeld {
			l.log.Warnw("failed to release advisory lock", "key", key, "error", releaseErr)
		}
	}, true
}
