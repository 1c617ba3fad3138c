package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists the session slice in Redis, for deployments where
// several terminal processes share one session backend.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing client. A zero ttl keeps the slice until
// it is cleared.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Save(ctx context.Context, slice Slice) error {
	payload, err := json.Marshal(slice)
	if err != nil {
		return fmt.Errorf("encode session slice: %w", err)
	}
	if err := r.client.Set(ctx, storageKey, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session slice: %w", err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context) (Slice, bool, error) {
	payload, err := r.client.Get(ctx, storageKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return Slice{}, false, nil
	}
	if err != nil {
		return Slice{}, false, fmt.Errorf("load session slice: %w", err)
	}

	var slice Slice
	if err := json.Unmarshal(payload, &slice); err != nil {
		return Slice{}, false, fmt.Errorf("decode session slice: %w", err)
	}
	return slice, true, nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, storageKey).Err(); err != nil {
		return fmt.Errorf("clear session slice: %w", err)
	}
	return nil
}
