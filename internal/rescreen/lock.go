package rescreen

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"vigil/internal/platform/redis"
)

const lockKey = "vigil:rescreen:lock"

// releaseScript deletes the lock only when it is still held by this run, so a
// run that outlived its lease cannot release a successor's lock.
var releaseScript = goredis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)

// Locker serializes batch runs. Acquire reports ok=false when another run
// holds the lock.
type Locker interface {
	Acquire(ctx context.Context) (release func(), ok bool, err error)
}

// RedisLock implements Locker with a SETNX lease in Redis, covering
// deployments where multiple replicas can receive the trigger.
type RedisLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLock constructs a RedisLock. The TTL bounds how long a crashed run
// can block its successors.
func NewRedisLock(client *redis.Client, ttl time.Duration) *RedisLock {
	return &RedisLock{client: client, ttl: ttl}
}

func (l *RedisLock) Acquire(ctx context.Context) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire rescreen lock: %w", err)
	}
	if !ok {
		return nil, false, nil
	}
	release := func() {
		// Best effort: the TTL cleans up if the release is lost.
		_ = releaseScript.Run(context.WithoutCancel(ctx), l.client, []string{lockKey}, token).Err()
	}
	return release, true, nil
}

// NoopLock is used when Redis is not configured (single-replica deployments).
type NoopLock struct{}

func (NoopLock) Acquire(ctx context.Context) (func(), bool, error) {
	return func() {}, true, nil
}
