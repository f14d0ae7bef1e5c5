// Package bootstrap opens the configured key-value backend.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/circlesoft/crm/internal/domain/shared"
	"github.com/circlesoft/crm/internal/infrastructure/cache"
	"github.com/circlesoft/crm/internal/infrastructure/config"
	"github.com/circlesoft/crm/internal/infrastructure/logger"
	"github.com/circlesoft/crm/internal/infrastructure/persistence"
	"github.com/circlesoft/crm/internal/infrastructure/telemetry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store is an opened backend
type Store struct {
	KV     shared.KeyValueStore
	Driver string
	// Redis is set when the backend is Redis, for sharing the connection
	Redis *redis.Client

	db      *persistence.Database
	closeFn func() error
}

// Ping checks the backend connection
func (s *Store) Ping(ctx context.Context) error {
	switch {
	case s.db != nil:
		return s.db.Ping()
	case s.Redis != nil:
		return s.Redis.Ping(ctx).Err()
	}
	return nil
}

// Close releases the backend
func (s *Store) Close() error {
	if s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

// OpenStore opens the backend selected by storage.driver
func OpenStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Database.LogLevel))

	switch cfg.Storage.Driver {
	case "memory":
		log.Warn("Using in-memory storage; data will not survive a restart")
		return &Store{KV: cache.NewInMemoryKVStore(), Driver: "memory"}, nil

	case "sqlite":
		db, err := persistence.NewSQLiteDatabase(cfg.Storage.Path, gormLog)
		if err != nil {
			return nil, err
		}
		return gormStore(db, cfg, log)

	case "postgres":
		db, err := persistence.NewPostgresDatabase(&cfg.Database, gormLog)
		if err != nil {
			return nil, err
		}
		return gormStore(db, cfg, log)

	case "redis":
		factory := cache.NewStoreFactory(cfg.Redis,
			cache.WithLogger(log),
			cache.WithInMemoryFallback(cfg.Storage.AllowMemoryFallback),
		)
		kv, err := factory.CreateStore()
		if err != nil {
			return nil, err
		}
		s := &Store{KV: kv, Driver: "redis"}
		if rs, ok := kv.(*cache.RedisKVStore); ok {
			s.Redis = rs.Client()
			s.closeFn = rs.Close
		} else {
			s.Driver = "memory"
		}
		return s, nil
	}
	return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
}

func gormStore(db *persistence.Database, cfg *config.Config, log *zap.Logger) (*Store, error) {
	if cfg.Telemetry.Enabled {
		system := "sqlite"
		if db.Driver == "postgres" {
			system = "postgresql"
		}
		if err := telemetry.InstrumentGorm(db.DB, system, log); err != nil {
			return nil, errors.Join(err, db.Close())
		}
	}
	log.Info("Key-value store opened", zap.String("driver", db.Driver))
	return &Store{
		KV:      persistence.NewGormKVStore(db.DB),
		Driver:  db.Driver,
		db:      db,
		closeFn: db.Close,
	}, nil
}
