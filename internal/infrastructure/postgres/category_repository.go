package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo lectura del catálogo de categorías.
type CategoryRepo struct {
	q Querier
}

// NewCategoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

// ListByCompany categorías de la empresa ordenadas por nombre.
func (r *CategoryRepo) ListByCompany(ctx context.Context, companyID string) ([]*entity.Category, error) {
	query := `
		SELECT id, company_id, COALESCE(parent_id::text, ''), name, created_at
		FROM categories WHERE company_id = $1 ORDER BY name`
	rows, err := r.q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	var list []*entity.Category
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.ParentID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// EnsureDefault crea la categoría por defecto si no existe y la devuelve.
func (r *CategoryRepo) EnsureDefault(ctx context.Context, companyID string) (*entity.Category, error) {
	query := `
		INSERT INTO categories (id, company_id, name, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (company_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, company_id, name, created_at`
	var c entity.Category
	err := r.q.QueryRow(ctx, query, uuid.New().String(), companyID, entity.DefaultCategoryName).Scan(
		&c.ID, &c.CompanyID, &c.Name, &c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("ensure default category: %w", err)
	}
	return &c, nil
}
