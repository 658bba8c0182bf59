package redisstore_test

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/redisstore"
)

func newClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestSnapshotStore_LoadSinDatos(t *testing.T) {
	client, _ := newClient(t)
	store := redisstore.NewSnapshotStore(client)

	snap, err := store.Load(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", snap.CompanyID)
	assert.Equal(t, int64(0), snap.Version)
	assert.Empty(t, snap.Products)
}

func TestSnapshotStore_SaveYLoad(t *testing.T) {
	ctx := context.Background()
	client, mr := newClient(t)
	store := redisstore.NewSnapshotStore(client)

	snap := &repository.Snapshot{
		CompanyID: "c1",
		Products:  []entity.Product{{ID: "p1", Name: "Teclado", Stock: 4}},
	}
	v, err := store.Save(ctx, snap, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	assert.True(t, mr.Exists(redisstore.SnapshotKey("c1")))
	assert.Equal(t, "1", mr.HGet(redisstore.SnapshotKey("c1"), "version"))

	loaded, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), loaded.Version)
	require.Len(t, loaded.Products, 1)
	assert.Equal(t, 4, loaded.Products[0].Stock)

	loaded.Products[0].Stock = 5
	v, err = store.Save(ctx, loaded, loaded.Version)
	require.NoError(t, err)
	assert.Equal(t, int64(2), v)
}

func TestSnapshotStore_VersionDesactualizada(t *testing.T) {
	ctx := context.Background()
	client, _ := newClient(t)
	store := redisstore.NewSnapshotStore(client)

	_, err := store.Save(ctx, &repository.Snapshot{CompanyID: "c1"}, 0)
	require.NoError(t, err)

	_, err = store.Save(ctx, &repository.Snapshot{CompanyID: "c1"}, 0)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestOrderSequence_IncrementaPorEmpresa(t *testing.T) {
	ctx := context.Background()
	client, _ := newClient(t)
	seq := redisstore.NewOrderSequence(client)

	for want := int64(1); want <= 3; want++ {
		n, err := seq.Next(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	n, err := seq.Next(ctx, "c2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestSnapshotStore_Companies(t *testing.T) {
	ctx := context.Background()
	client, _ := newClient(t)
	store := redisstore.NewSnapshotStore(client)
	seq := redisstore.NewOrderSequence(client)

	for _, id := range []string{"c2", "c1"} {
		_, err := store.Save(ctx, &repository.Snapshot{CompanyID: id}, 0)
		require.NoError(t, err)
	}
	_, err := seq.Next(ctx, "c3")
	require.NoError(t, err)

	ids, err := store.Companies(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, ids, "las claves de secuencia no cuentan")
}
