package repository_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

func TestEncodeCollections_SnapshotVacio(t *testing.T) {
	cols, err := repository.EncodeCollections(&repository.Snapshot{CompanyID: "c1"})
	require.NoError(t, err)
	require.Len(t, cols, len(repository.Collections))
	assert.JSONEq(t, `[]`, string(cols[repository.CollectionProducts]))
	assert.JSONEq(t, `{}`, string(cols[repository.CollectionUnits]))
}

func TestDecodeCollection_RestauraUnidadesPorProducto(t *testing.T) {
	src := &repository.Snapshot{
		Products: []entity.Product{{ID: "p1", Name: "Monitor", Serialized: true, Stock: 1}},
		Units: map[string][]entity.ProductUnit{
			"p1": {{ID: "u1", ProductID: "p1", Location: entity.LocationBodega, Status: entity.UnitStatusAvailable, Lifecycle: entity.UnitActive}},
		},
	}
	cols, err := repository.EncodeCollections(src)
	require.NoError(t, err)

	dst := &repository.Snapshot{}
	for name, raw := range cols {
		require.NoError(t, repository.DecodeCollection(dst, name, raw))
	}
	assert.Equal(t, src.Products, dst.Products)
	assert.Equal(t, src.Units, dst.Units)

	assert.NoError(t, repository.DecodeCollection(dst, "desconocida", []byte(`no-json`)))
	assert.Error(t, repository.DecodeCollection(dst, repository.CollectionLedger, []byte(`{`)))
}
