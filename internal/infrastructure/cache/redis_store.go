package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/circlesoft/crm/internal/domain/shared"
	"github.com/circlesoft/crm/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "crm:"

// RedisKVStore implements shared.KeyValueStore on Redis strings. Keys never
// expire.
type RedisKVStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisKVStore connects to Redis and verifies the connection
func NewRedisKVStore(cfg config.RedisConfig) (*RedisKVStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisKVStoreWithClient(client, cfg.KeyPrefix), nil
}

// NewRedisKVStoreWithClient creates a store with an existing client
func NewRedisKVStoreWithClient(client *redis.Client, keyPrefix string) *RedisKVStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisKVStore{client: client, keyPrefix: keyPrefix}
}

// Get returns shared.ErrNotFound for missing keys
func (s *RedisKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	return v, nil
}

// Set stores value without expiration
func (s *RedisKVStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.keyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Delete removes key
func (s *RedisKVStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis delete %q: %w", key, err)
	}
	return nil
}

// Keys scans for keys with the prefix
func (s *RedisKVStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.keyPrefix+prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), s.keyPrefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan %q: %w", prefix, err)
	}
	return keys, nil
}

// Close closes the Redis client
func (s *RedisKVStore) Close() error {
	return s.client.Close()
}

var (
	_ shared.KeyValueStore = (*RedisKVStore)(nil)
	_ shared.KeyLister     = (*RedisKVStore)(nil)
)

// Client returns the underlying client
func (s *RedisKVStore) Client() *redis.Client {
	return s.client
}
