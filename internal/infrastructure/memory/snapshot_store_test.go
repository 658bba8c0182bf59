package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
)

func TestSnapshotStore_VersionOptimista(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSnapshotStore()

	snap, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), snap.Version)

	snap.Products = []entity.Product{{ID: "p1", Name: "Monitor", Stock: 2}}
	v, err := store.Save(ctx, snap, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	_, err = store.Save(ctx, &repository.Snapshot{CompanyID: "c1"}, 0)
	assert.ErrorIs(t, err, domain.ErrConflict, "guardar sobre una versión vieja es conflicto")

	loaded, err := store.Load(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), loaded.Version)
	require.Len(t, loaded.Products, 1)

	loaded.Products[0].Stock = 99
	again, _ := store.Load(ctx, "c1")
	assert.Equal(t, 2, again.Products[0].Stock, "lo cargado no comparte memoria con lo almacenado")
}

func TestOrderSequence_PorEmpresa(t *testing.T) {
	ctx := context.Background()
	seq := memory.NewOrderSequence()
	a1, _ := seq.Next(ctx, "a")
	a2, _ := seq.Next(ctx, "a")
	b1, _ := seq.Next(ctx, "b")
	assert.Equal(t, []int64{1, 2, 1}, []int64{a1, a2, b1})
}

func TestDirectory_VacioAceptaTodo(t *testing.T) {
	ctx := context.Background()
	d := memory.NewDirectory()
	ok, _ := d.SupplierExists(ctx, "c1", "Cualquiera")
	assert.True(t, ok)

	d.AddSupplier("c1", "Proveedor S.A.S.")
	ok, _ = d.SupplierExists(ctx, "c1", "proveedor s.a.s.")
	assert.True(t, ok)
	ok, _ = d.SupplierExists(ctx, "c1", "Otro")
	assert.False(t, ok)
}
