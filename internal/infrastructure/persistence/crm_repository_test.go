package persistence

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/circlesoft/crm/internal/domain/crm"
	"github.com/circlesoft/crm/internal/domain/identity"
	"github.com/circlesoft/crm/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCRMRepository_LoadMissing(t *testing.T) {
	repo := NewCRMRepository(newTestStore(t), nil)

	_, err := repo.Load(context.Background(), "u1")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	ids, err := repo.UserIDs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestCRMRepository_SaveKeepsOtherUsers(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	repo := NewCRMRepository(store, nil)

	d1 := crm.NewEmptyData(identity.User{ID: "u1", Name: "One"})
	d1.Customers = append(d1.Customers, crm.Customer{ID: "c1", Name: "Ana", Store: "R&D", Contact: "1"})
	d2 := crm.NewEmptyData(identity.User{ID: "u2", Name: "Two"})

	require.NoError(t, repo.Save(ctx, "u1", d1))
	require.NoError(t, repo.Save(ctx, "u2", d2))

	got, err := repo.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, d1, got)

	ids, err := repo.UserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, ids)

	raw, err := store.Get(ctx, shared.KeyCRMData)
	require.NoError(t, err)
	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Contains(t, doc["u1"], "clients")
	assert.Contains(t, doc["u1"], "followUpHistory")
	assert.Contains(t, doc["u1"], "failureReasons")
}

func TestCRMRepository_MissingCustomersComesBackNil(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Set(ctx, shared.KeyCRMData, []byte(`{"u1":{"clients":[],"orders":[],"user":{"id":"u1"}}}`)))

	got, err := NewCRMRepository(store, nil).Load(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got.Customers)
	assert.NotNil(t, got.Clients)
}

func TestCRMRepository_Corrupt(t *testing.T) {
	ctx := context.Background()

	t.Run("whole document", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Set(ctx, shared.KeyCRMData, []byte(`{not json`)))
		core, recorded := observer.New(zapcore.WarnLevel)
		repo := NewCRMRepository(store, zap.New(core))

		_, err := repo.Load(ctx, "u1")
		assert.ErrorIs(t, err, crm.ErrCorruptData)

		require.NoError(t, repo.Save(ctx, "u1", crm.NewEmptyData(identity.User{ID: "u1"})))
		assert.Equal(t, 1, recorded.Len())

		_, err = repo.Load(ctx, "u1")
		assert.NoError(t, err)
	})

	t.Run("single entry", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.Set(ctx, shared.KeyCRMData, []byte(`{"u1":{"clients":"oops"},"u2":{"clients":[]}}`)))
		repo := NewCRMRepository(store, nil)

		_, err := repo.Load(ctx, "u1")
		assert.ErrorIs(t, err, crm.ErrCorruptData)

		_, err = repo.Load(ctx, "u2")
		assert.NoError(t, err)
	})
}
