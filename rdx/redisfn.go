package rdx

import (
	"context"
	"time"

	"mealsphere/globals"

	"github.com/redis/go-redis/v9"
)

var Conn = redis.NewClient(&redis.Options{
	Addr: globals.EnvOr("REDIS_ADDR", "localhost:6379"),
})

// AcquireLock takes a best-effort distributed lock via SETNX. The nightly
// job runner uses it so two scheduler instances never run the same job
// concurrently. The TTL bounds how long a crashed holder can block others.
func AcquireLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return Conn.SetNX(ctx, key, time.Now().Format(time.RFC3339), ttl).Result()
}

// ReleaseLock drops the lock early once the holder is done.
func ReleaseLock(ctx context.Context, key string) error {
	return Conn.Del(ctx, key).Err()
}

// Publish sends a payload to a pub/sub channel.
func Publish(ctx context.Context, channel string, payload []byte) error {
	return Conn.Publish(ctx, channel, payload).Err()
}
