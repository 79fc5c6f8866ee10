package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"intelcore/internal/observability/metrics"
)

// RedisStore implements Store on a Redis instance. TTLs map directly onto
// Redis key expiry.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a RedisStore for the given address. The connection is
// verified with a short ping so that misconfiguration surfaces at startup.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return &RedisStore{client: client}, nil
}

// Get returns the value for key if present.
func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordKVOp("get", true)
		return nil, false, nil
	}
	if err != nil {
		metrics.RecordKVOp("get", false)
		return nil, false, fmt.Errorf("kv get %s: %w", key, err)
	}
	metrics.RecordKVOp("get", true)
	return val, true, nil
}

// Put stores value under key with the given TTL.
func (r *RedisStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		metrics.RecordKVOp("put", false)
		return fmt.Errorf("kv put %s: %w", key, err)
	}
	metrics.RecordKVOp("put", true)
	return nil
}

// Delete removes key.
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		metrics.RecordKVOp("delete", false)
		return fmt.Errorf("kv delete %s: %w", key, err)
	}
	metrics.RecordKVOp("delete", true)
	return nil
}

// List iterates SCAN pages until the cursor is exhausted and returns every
// key matching the prefix.
func (r *RedisStore) List(ctx context.Context, prefix string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		page, next, err := r.client.Scan(ctx, cursor, prefix+"*", 200).Result()
		if err != nil {
			metrics.RecordKVOp("list", false)
			return nil, fmt.Errorf("kv list %s: %w", prefix, err)
		}
		keys = append(keys, page...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	metrics.RecordKVOp("list", true)
	return keys, nil
}

// Close releases the underlying client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
