package repository

import "context"

// DirectoryRepository consulta directorios externos (proveedores, empleados, departamentos).
// Solo se usa para validar referencias antes de mutar el estado.
type DirectoryRepository interface {
	SupplierExists(ctx context.Context, companyID, name string) (bool, error)
	EmployeeExists(ctx context.Context, companyID, employeeID string) (bool, error)
	DepartmentExists(ctx context.Context, companyID, name string) (bool, error)
}
