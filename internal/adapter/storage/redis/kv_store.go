package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"
)

// KVStore implements ports.KVStore on Redis. Values are opaque byte
// blobs; the services own the key layout and encoding.
type KVStore struct {
	client *goredis.Client
}

// NewKVStore creates a Redis-backed KV store.
func NewKVStore(client *goredis.Client) *KVStore {
	return &KVStore{client: client}
}

// Get retrieves the value stored under key.
// Returns nil, nil if the key does not exist.
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis kv get %q: %w", key, err)
	}
	return val, nil
}

// Set stores value under key without expiry. Field configuration and
// presets live until explicitly changed.
func (s *KVStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis kv set %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *KVStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis kv delete %q: %w", key, err)
	}
	return nil
}
