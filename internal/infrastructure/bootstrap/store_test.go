package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/circlesoft/crm/internal/domain/shared"
	"github.com/circlesoft/crm/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("sqlite", func(t *testing.T) {
		cfg := &config.Config{Storage: config.StorageConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "crm.db")}}
		s, err := OpenStore(ctx, cfg, nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })

		assert.Equal(t, "sqlite", s.Driver)
		require.NoError(t, s.Ping(ctx))
		require.NoError(t, s.KV.Set(ctx, shared.KeyUsers, []byte("[]")))
		got, err := s.KV.Get(ctx, shared.KeyUsers)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(got))
	})

	t.Run("memory", func(t *testing.T) {
		s, err := OpenStore(ctx, &config.Config{Storage: config.StorageConfig{Driver: "memory"}}, nil)
		require.NoError(t, err)
		assert.Equal(t, "memory", s.Driver)
		assert.NoError(t, s.Ping(ctx))
		assert.NoError(t, s.Close())
	})

	t.Run("redis unreachable falls back", func(t *testing.T) {
		cfg := &config.Config{
			Storage: config.StorageConfig{Driver: "redis", AllowMemoryFallback: true},
			Redis:   config.RedisConfig{Host: "127.0.0.1", Port: 1},
		}
		s, err := OpenStore(ctx, cfg, nil)
		require.NoError(t, err)
		assert.Equal(t, "memory", s.Driver)
		assert.Nil(t, s.Redis)
	})

	t.Run("unknown driver", func(t *testing.T) {
		_, err := OpenStore(ctx, &config.Config{Storage: config.StorageConfig{Driver: "mongo"}}, nil)
		assert.Error(t, err)
	})
}
