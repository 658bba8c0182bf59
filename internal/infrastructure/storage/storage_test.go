package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/infrastructure/storage"
	"github.com/jhoicas/inventario-ledger/pkg/config"
)

func TestOpen_Memoria(t *testing.T) {
	b, err := storage.Open(context.Background(), &config.Config{Store: config.StoreConfig{Backend: config.BackendMemory}})
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, config.BackendMemory, b.Name)
	n, err := b.Sequence.Next(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestOpen_BackendDesconocido(t *testing.T) {
	_, err := storage.Open(context.Background(), &config.Config{Store: config.StoreConfig{Backend: "mongo"}})
	assert.Error(t, err)
}
