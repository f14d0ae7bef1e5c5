package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenRevoker invalidates access tokens before they expire, keyed by JTI
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RedisTokenRevoker stores revoked JTIs with a TTL matching the token's
// remaining lifetime
type RedisTokenRevoker struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisTokenRevoker uses an existing client
func NewRedisTokenRevoker(client *redis.Client, keyPrefix string) *RedisTokenRevoker {
	return &RedisTokenRevoker{client: client, keyPrefix: keyPrefix + "revoked:"}
}

func (r *RedisTokenRevoker) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := r.client.Set(ctx, r.keyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (r *RedisTokenRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, r.keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

// InMemoryTokenRevoker keeps revoked JTIs in process memory
type InMemoryTokenRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewInMemoryTokenRevoker() *InMemoryTokenRevoker {
	return &InMemoryTokenRevoker{revoked: make(map[string]time.Time), now: time.Now}
}

func (r *InMemoryTokenRevoker) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[jti] = r.now().Add(ttl)
	return nil
}

func (r *InMemoryTokenRevoker) IsRevoked(_ context.Context, jti string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	until, ok := r.revoked[jti]
	if !ok {
		return false, nil
	}
	if !r.now().Before(until) {
		delete(r.revoked, jti)
		return false, nil
	}
	return true, nil
}

var (
	_ TokenRevoker = (*RedisTokenRevoker)(nil)
	_ TokenRevoker = (*InMemoryTokenRevoker)(nil)
)
