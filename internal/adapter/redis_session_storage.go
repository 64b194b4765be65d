package adapter

import (
	"context"
	"errors"
	"time"

	"study-quiz/internal/cache"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	defaultStorageTimeout = 3 * time.Second
	scanBatchSize         = 100
)

// RedisSessionStorage implements fiber.Storage on top of a redis client so
// the study page view state survives across server instances. Entries
// always carry the session expiration.
type RedisSessionStorage struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisSessionStorage creates a new instance of RedisSessionStorage.
// It expects a connected *redis.Client.
func NewRedisSessionStorage(client *redis.Client) *RedisSessionStorage {
	return &RedisSessionStorage{client: client, timeout: defaultStorageTimeout}
}

func (r *RedisSessionStorage) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), r.timeout)
}

// Get returns nil, nil for unknown keys as fiber.Storage requires.
func (r *RedisSessionStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	ctx, cancel := r.ctx()
	defer cancel()

	val, err := r.client.Get(ctx, cache.SessionKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return []byte(val), nil
}

// Set stores val under key. Empty keys or values are ignored.
func (r *RedisSessionStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := r.ctx()
	defer cancel()
	return r.client.Set(ctx, cache.SessionKey(key), string(val), exp).Err()
}

// Delete removes key. Missing keys are not an error.
func (r *RedisSessionStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := r.ctx()
	defer cancel()
	return r.client.Del(ctx, cache.SessionKey(key)).Err()
}

// Reset deletes every session key.
func (r *RedisSessionStorage) Reset() error {
	ctx, cancel := r.ctx()
	defer cancel()

	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, cache.SessionPattern(), scanBatchSize).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Close closes the underlying client.
func (r *RedisSessionStorage) Close() error {
	return r.client.Close()
}

var _ fiber.Storage = (*RedisSessionStorage)(nil)
