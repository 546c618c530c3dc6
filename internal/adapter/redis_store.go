package adapter

import (
	"context"
	"errors"

	"kiosk-quiz/internal/cache"
	"kiosk-quiz/internal/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements the domain.Store interface using a Redis client.
// Keys are namespaced per kiosk so several kiosks can share one Redis.
type RedisStore struct {
	client  *redis.Client
	kioskID string
}

// NewRedisStore creates a new instance of RedisStore.
// It expects a connected *redis.Client.
func NewRedisStore(client *redis.Client, kioskID string) domain.Store {
	return &RedisStore{client: client, kioskID: kioskID}
}

// Get retrieves a value from Redis.
// It translates redis.Nil to domain.ErrNotFound.
func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, cache.GenerateStateKey(r.kioskID, key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrNotFound
		}
		return "", err
	}
	return val, nil
}

// Set stores a value without expiration; kiosk state lives until explicitly cleared.
func (r *RedisStore) Set(ctx context.Context, key string, value string) error {
	return r.client.Set(ctx, cache.GenerateStateKey(r.kioskID, key), value, 0).Err()
}

// Delete removes a value from Redis.
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, cache.GenerateStateKey(r.kioskID, key)).Err()
}
