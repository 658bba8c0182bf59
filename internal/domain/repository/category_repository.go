package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// CategoryRepository puerto hacia el catálogo de categorías (colaborador externo).
type CategoryRepository interface {
	ListByCompany(ctx context.Context, companyID string) ([]*entity.Category, error)
	// EnsureDefault devuelve la categoría por defecto, creándola si no existe.
	EnsureDefault(ctx context.Context, companyID string) (*entity.Category, error)
}
