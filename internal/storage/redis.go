package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis wraps a go-redis client and implements KeyValue.
type Redis struct {
	client *redis.Client
}

// ConnectRedis opens one client against the key-value store URL (for example
// redis://redis:6379/1) and verifies it with a ping.
func ConnectRedis(ctx context.Context, rawURL string) (*Redis, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("storage: parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("storage: ping redis: %w", err)
	}
	return &Redis{client: client}, nil
}

// LPush prepends value onto the list at key.
func (r *Redis) LPush(ctx context.Context, key string, value []byte) error {
	return r.client.LPush(ctx, key, value).Err()
}

// HIncrBy increments the hash field at key by incr.
func (r *Redis) HIncrBy(ctx context.Context, key, field string, incr int64) error {
	return r.client.HIncrBy(ctx, key, field, incr).Err()
}

// Close releases the client.
func (r *Redis) Close() error {
	return r.client.Close()
}
