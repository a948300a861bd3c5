package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisKV persists the key-value cache in Redis. All keys share a single
// namespace prefix so unrelated data in the same Redis database is never
// touched by prefix purges.
type RedisKV struct {
	client    *redis.Client
	namespace string
}

// NewRedisKV constructs a Redis-backed key-value cache.
// Usage: pass a configured Redis client; namespace defaults to "airspace:".
func NewRedisKV(client *redis.Client, namespace string) *RedisKV {
	if namespace == "" {
		namespace = "airspace:"
	}
	return &RedisKV{client: client, namespace: namespace}
}

// Get returns the value for key or ErrNotFound.
func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, r.namespace+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("kv get: %w", err)
	}
	return v, nil
}

// Set stores or overwrites the value for key. Entries do not expire; the
// session manager owns explicit purging.
func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.namespace+key, value, 0).Err(); err != nil {
		return fmt.Errorf("kv set: %w", err)
	}
	return nil
}

// Delete removes a key.
func (r *RedisKV) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.namespace+key).Err(); err != nil {
		return fmt.Errorf("kv delete: %w", err)
	}
	return nil
}

// Keys returns all keys with the given prefix using SCAN, so large caches
// never block Redis the way KEYS would.
func (r *RedisKV) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, r.namespace+prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()[len(r.namespace):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("kv scan: %w", err)
	}
	return keys, nil
}
