package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/redisstore"
	"github.com/jhoicas/inventario-ledger/pkg/config"
)

// Backend adaptadores de persistencia elegidos por STORE_BACKEND.
type Backend struct {
	Name      string
	Store     repository.SnapshotRepository
	Sequence  repository.OrderSequenceRepository
	Catalog   repository.CategoryRepository
	Directory repository.DirectoryRepository
	Reports   repository.OrderReportRepository // nil: el motor calcula sobre la sesión
	Companies interface {
		Companies(ctx context.Context) ([]string, error)
	}
	closers []func()
}

// Close libera conexiones en orden inverso a su apertura.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// Open conecta el backend configurado. Con redis, catálogo y directorio siguen en PostgreSQL
// si hay base configurada; si no, se usan los de memoria.
func Open(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		store := postgres.NewSnapshotRepository(pool, postgres.NewTxRunner(pool))
		return &Backend{
			Name:      config.BackendPostgres,
			Store:     store,
			Sequence:  postgres.NewOrderSequenceRepository(pool),
			Catalog:   postgres.NewCategoryRepository(pool),
			Directory: postgres.NewDirectoryRepository(pool),
			Reports:   store,
			Companies: store,
			closers:   []func(){pool.Close},
		}, nil

	case config.BackendRedis:
		client, err := redisstore.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("conexión a Redis: %w", err)
		}
		store := redisstore.NewSnapshotStore(client)
		b := &Backend{
			Name:      config.BackendRedis,
			Store:     store,
			Sequence:  redisstore.NewOrderSequence(client),
			Catalog:   memory.NewCategories(),
			Directory: memory.NewDirectory(),
			Companies: store,
			closers:   []func(){func() { _ = client.Close() }},
		}
		if cfg.DB.DatabaseURL != "" {
			pool, err := postgres.NewPool(ctx, cfg.DB)
			if err != nil {
				b.Close()
				return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
			}
			b.Catalog = postgres.NewCategoryRepository(pool)
			b.Directory = postgres.NewDirectoryRepository(pool)
			b.closers = append(b.closers, pool.Close)
		}
		return b, nil

	case config.BackendMemory:
		store := memory.NewSnapshotStore()
		return &Backend{
			Name:      config.BackendMemory,
			Store:     store,
			Sequence:  memory.NewOrderSequence(),
			Catalog:   memory.NewCategories(),
			Directory: memory.NewDirectory(),
			Reports:   store,
			Companies: store,
		}, nil
	}
	return nil, fmt.Errorf("backend de almacenamiento desconocido: %q", cfg.Store.Backend)
}
