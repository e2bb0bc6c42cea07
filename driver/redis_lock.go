// ABOUTME: Redis lease lock that keeps scheduled runs from overlapping
// ABOUTME: SET NX PX with a random token, renewed while held; release only deletes a lease we still own
package driver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// Lease is a held run lock.
type Lease interface {
	Release(ctx context.Context) error
}

type RedisLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisLock(client *redis.Client, key string, ttl time.Duration, logger *slog.Logger) *RedisLock {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisLock{client: client, key: key, ttl: ttl, logger: logger}
}

// NewRedisLockWithURL creates a lock from a redis:// URL.
func NewRedisLockWithURL(url, key string, ttl time.Duration, logger *slog.Logger) (*RedisLock, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	return NewRedisLock(redis.NewClient(opts), key, ttl, logger), nil
}

// Acquire tries once to take the lock. acquired is false when another holder
// owns an unexpired lease.
func (l *RedisLock) Acquire(ctx context.Context) (Lease, bool, error) {
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock %s: %w", l.key, err)
	}
	if !ok {
		l.logger.Info("run lock held elsewhere", "key", l.key)
		return nil, false, nil
	}

	l.logger.Debug("run lock acquired", "key", l.key, "ttl", l.ttl)

	renewCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	le := &redisLease{lock: l, token: token, cancel: cancel, done: make(chan struct{})}
	go le.keepAlive(renewCtx)
	return le, true, nil
}

func (l *RedisLock) Close() error {
	return l.client.Close()
}

type redisLease struct {
	lock   *RedisLock
	token  string
	cancel context.CancelFunc
	done   chan struct{}
}

// keepAlive extends the lease every third of its TTL so a run that outlasts
// the TTL keeps the lock. It stops on Release or once the lease is lost.
func (le *redisLease) keepAlive(ctx context.Context) {
	defer close(le.done)

	interval := le.lock.ttl / 3
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		n, err := renewScript.Run(ctx, le.lock.client, []string{le.lock.key}, le.token, le.lock.ttl.Milliseconds()).Int()
		switch {
		case ctx.Err() != nil || errors.Is(err, redis.ErrClosed):
			return
		case err != nil:
			le.lock.logger.Warn("run lock renewal failed", "key", le.lock.key, "error", err)
		case n == 0:
			le.lock.logger.Warn("run lock lost before renewal", "key", le.lock.key)
			return
		}
	}
}

func (le *redisLease) Release(ctx context.Context) error {
	le.cancel()
	<-le.done

	n, err := releaseScript.Run(ctx, le.lock.client, []string{le.lock.key}, le.token).Int()
	if err != nil {
		return fmt.Errorf("release lock %s: %w", le.lock.key, err)
	}
	if n == 0 {
		le.lock.logger.Warn("run lock expired before release", "key", le.lock.key)
	}
	return nil
}

// NoopLock always grants the lock. Used when no Redis URL is configured.
type NoopLock struct{}

func (NoopLock) Acquire(context.Context) (Lease, bool, error) {
	return noopLease{}, true, nil
}

type noopLease struct{}

func (noopLease) Release(context.Context) error { return nil }
