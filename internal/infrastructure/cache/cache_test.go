package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/circlesoft/crm/internal/domain/shared"
	"github.com/circlesoft/crm/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInMemoryKVStore(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryKVStore()

	_, err := s.Get(ctx, "users")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	value := []byte("abc")
	require.NoError(t, s.Set(ctx, "users", value))
	value[0] = 'x'

	got, err := s.Get(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[0] = 'y'
	again, _ := s.Get(ctx, "users")
	assert.Equal(t, "abc", string(again))

	require.NoError(t, s.Set(ctx, "preferences/u1/locale", []byte("en")))
	keys, err := s.Keys(ctx, "preferences/")
	require.NoError(t, err)
	assert.Equal(t, []string{"preferences/u1/locale"}, keys)

	require.NoError(t, s.Delete(ctx, "users"))
	require.NoError(t, s.Delete(ctx, "users"))
	assert.Equal(t, 1, s.Len())
}

func TestStoreFactory(t *testing.T) {
	unreachable := func(config.RedisConfig) (shared.KeyValueStore, error) {
		return nil, errors.New("dial tcp: connection refused")
	}

	t.Run("falls back with a warning", func(t *testing.T) {
		core, recorded := observer.New(zapcore.WarnLevel)
		f := NewStoreFactory(config.RedisConfig{Host: "nowhere", Port: 1}, WithLogger(zap.New(core)))
		f.connect = unreachable

		store, err := f.CreateStore()
		require.NoError(t, err)
		assert.IsType(t, &InMemoryKVStore{}, store)
		assert.Equal(t, 1, recorded.Len())
	})

	t.Run("fails without fallback", func(t *testing.T) {
		f := NewStoreFactory(config.RedisConfig{}, WithInMemoryFallback(false))
		f.connect = unreachable

		_, err := f.CreateStore()
		assert.Error(t, err)
	})

	t.Run("returns the connected store", func(t *testing.T) {
		want := NewInMemoryKVStore()
		f := NewStoreFactory(config.RedisConfig{})
		f.connect = func(config.RedisConfig) (shared.KeyValueStore, error) { return want, nil }

		got, err := f.CreateStore()
		require.NoError(t, err)
		assert.Same(t, want, got)
	})
}
