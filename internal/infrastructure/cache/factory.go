package cache

import (
	"fmt"

	"github.com/circlesoft/crm/internal/domain/shared"
	"github.com/circlesoft/crm/internal/infrastructure/config"
	"go.uber.org/zap"
)

// StoreFactory creates Redis-backed key-value stores with an optional
// in-memory fallback.
type StoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	connect               func(config.RedisConfig) (shared.KeyValueStore, error)
}

// StoreFactoryOption configures the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the
// in-memory store. Default is true.
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStoreFactory creates a new factory
func NewStoreFactory(cfg config.RedisConfig, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		connect: func(c config.RedisConfig) (shared.KeyValueStore, error) {
			return NewRedisKVStore(c)
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns a Redis store, or an in-memory store when Redis is
// unreachable and fallback is allowed.
func (f *StoreFactory) CreateStore() (shared.KeyValueStore, error) {
	store, err := f.connect(f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis key-value store", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis store required but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory store. Data will not survive a restart.",
		zap.Error(err),
	)
	return NewInMemoryKVStore(), nil
}
