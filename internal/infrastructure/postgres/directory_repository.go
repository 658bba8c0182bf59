package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var _ repository.DirectoryRepository = (*DirectoryRepo)(nil)

// DirectoryRepo consulta proveedores, empleados y departamentos de la empresa.
type DirectoryRepo struct {
	q Querier
}

// NewDirectoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDirectoryRepository(q Querier) *DirectoryRepo {
	return &DirectoryRepo{q: q}
}

func (r *DirectoryRepo) SupplierExists(ctx context.Context, companyID, name string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM suppliers WHERE company_id = $1 AND lower(name) = lower($2))`, companyID, name)
}

func (r *DirectoryRepo) EmployeeExists(ctx context.Context, companyID, employeeID string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM employees WHERE company_id = $1 AND id::text = $2 AND active)`, companyID, employeeID)
}

func (r *DirectoryRepo) DepartmentExists(ctx context.Context, companyID, name string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM departments WHERE company_id = $1 AND lower(name) = lower($2))`, companyID, name)
}

func (r *DirectoryRepo) exists(ctx context.Context, query, companyID, key string) (bool, error) {
	var ok bool
	if err := r.q.QueryRow(ctx, query, companyID, key).Scan(&ok); err != nil {
		return false, fmt.Errorf("directory lookup: %w", err)
	}
	return ok, nil
}
