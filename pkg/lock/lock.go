// Package lock provides a best-effort redis lock so that only one replica runs
// a scheduled job for a given key.
package lock

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Locker leases keys in redis. The TTL bounds how long a crashed holder can
// block a key; a holder that finishes calls Release.
type Locker struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisClient returns nil when addr is empty; a nil client disables locking.
func NewRedisClient(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func NewLocker(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Locker {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Locker{ttl: ttl, logger: logger}
	if rdb != nil {
		l.rdb = rdb
	}
	return l
}

// Acquire reports whether the caller holds key for the lock TTL.
// Without redis, or when redis fails, it allows the work.
func (l *Locker) Acquire(ctx context.Context, key string) bool {
	if l == nil || l.rdb == nil {
		return true
	}

	ok, err := l.rdb.SetNX(ctx, "lock:"+key, 1, l.ttl).Result()
	if err != nil {
		l.logger.Warn("redis lock check failed, allowing job",
			zap.String("key", key),
			zap.Error(err),
		)
		return true
	}
	if !ok {
		l.logger.Info("skipped job held by another replica", zap.String("key", key))
	}
	return ok
}

// Release frees key so the next run, on any replica, can take it at once.
func (l *Locker) Release(ctx context.Context, key string) {
	if l == nil || l.rdb == nil {
		return
	}
	if err := l.rdb.Del(ctx, "lock:"+key).Err(); err != nil {
		l.logger.Warn("redis lock release failed, key expires with its ttl",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}
