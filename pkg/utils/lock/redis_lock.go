package lock

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"smartwallet-core/pkg/safe_random"
)

// DistributedLock serializes work across instances, e.g. at-most-one
// in-flight batch send per account.
type DistributedLock interface {
	// Acquire tries to take the lock.
	// Returns (token, true) on success; token is required for Release.
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error)

	// Release frees the lock if token still owns it.
	Release(ctx context.Context, key string, token string) error
}

// RedisLock implements DistributedLock with SETNX plus an owner token so a
// slow holder cannot release a lock that has since expired and been retaken.
type RedisLock struct {
	client *redis.Client
}

func NewRedisLock(client *redis.Client) *RedisLock {
	return &RedisLock{client: client}
}

// releaseScript deletes the key only when the stored token matches.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (l *RedisLock) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token, err := safe_random.GenerateRandomHexString(16)
	if err != nil {
		return "", false, err
	}

	ok, err := l.client.SetNX(ctx, "lock:"+key, token, ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (l *RedisLock) Release(ctx context.Context, key string, token string) error {
	return releaseScript.Run(ctx, l.client, []string{"lock:" + key}, token).Err()
}
