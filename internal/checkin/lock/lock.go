// Package lock serialises check-ins across desks sharing one Redis.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"regdesk/pkg/platform/sentinel"
)

const keyPrefix = "lock:"

// releaseScript deletes the key only while it still holds our token, so an
// expired lock re-acquired by another desk is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker holds keys with SET NX PX.
type RedisLocker struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

// Acquire takes lock:<key> for ttl or returns sentinel.ErrConflict if it is held.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	fullKey := keyPrefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire %s: %w", fullKey, err)
	}
	if !ok {
		return nil, fmt.Errorf("acquire %s: %w", fullKey, sentinel.ErrConflict)
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{fullKey}, token).Err(); err != nil {
			return fmt.Errorf("release %s: %w", fullKey, err)
		}
		return nil
	}
	return release, nil
}
