package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

var (
	_ repository.OrderSequenceRepository = (*OrderSequence)(nil)
	_ repository.CategoryRepository      = (*Categories)(nil)
	_ repository.DirectoryRepository     = (*Directory)(nil)
)

// OrderSequence contador por empresa.
type OrderSequence struct {
	mu   sync.Mutex
	last map[string]int64
}

// NewOrderSequence construye la secuencia.
func NewOrderSequence() *OrderSequence {
	return &OrderSequence{last: make(map[string]int64)}
}

// Next incrementa y devuelve el siguiente valor.
func (s *OrderSequence) Next(_ context.Context, companyID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last[companyID]++
	return s.last[companyID], nil
}

// Categories catálogo de categorías en memoria.
type Categories struct {
	mu   sync.Mutex
	byCo map[string][]*entity.Category
}

// NewCategories construye el catálogo vacío.
func NewCategories() *Categories {
	return &Categories{byCo: make(map[string][]*entity.Category)}
}

// ListByCompany categorías de la empresa.
func (c *Categories) ListByCompany(_ context.Context, companyID string) ([]*entity.Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*entity.Category(nil), c.byCo[companyID]...), nil
}

// EnsureDefault crea la categoría por defecto si no existe.
func (c *Categories) EnsureDefault(_ context.Context, companyID string) (*entity.Category, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, cat := range c.byCo[companyID] {
		if strings.EqualFold(cat.Name, entity.DefaultCategoryName) {
			return cat, nil
		}
	}
	cat := &entity.Category{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      entity.DefaultCategoryName,
		CreatedAt: time.Now().UTC(),
	}
	c.byCo[companyID] = append(c.byCo[companyID], cat)
	return cat, nil
}

// Directory directorio en memoria. Un directorio sin registros para un tipo acepta cualquier valor.
type Directory struct {
	mu          sync.RWMutex
	suppliers   map[string]map[string]bool
	employees   map[string]map[string]bool
	departments map[string]map[string]bool
}

// NewDirectory construye el directorio vacío.
func NewDirectory() *Directory {
	return &Directory{
		suppliers:   make(map[string]map[string]bool),
		employees:   make(map[string]map[string]bool),
		departments: make(map[string]map[string]bool),
	}
}

// AddSupplier registra un proveedor.
func (d *Directory) AddSupplier(companyID, name string) { d.add(d.suppliers, companyID, name) }

// AddEmployee registra un empleado.
func (d *Directory) AddEmployee(companyID, id string) { d.add(d.employees, companyID, id) }

// AddDepartment registra un departamento.
func (d *Directory) AddDepartment(companyID, name string) { d.add(d.departments, companyID, name) }

func (d *Directory) add(m map[string]map[string]bool, companyID, key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if m[companyID] == nil {
		m[companyID] = make(map[string]bool)
	}
	m[companyID][strings.ToLower(strings.TrimSpace(key))] = true
}

func (d *Directory) exists(m map[string]map[string]bool, companyID, key string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	set := m[companyID]
	if len(set) == 0 {
		return true
	}
	return set[strings.ToLower(strings.TrimSpace(key))]
}

// SupplierExists indica si el proveedor está registrado.
func (d *Directory) SupplierExists(_ context.Context, companyID, name string) (bool, error) {
	return d.exists(d.suppliers, companyID, name), nil
}

// EmployeeExists indica si el empleado está registrado.
func (d *Directory) EmployeeExists(_ context.Context, companyID, employeeID string) (bool, error) {
	return d.exists(d.employees, companyID, employeeID), nil
}

// DepartmentExists indica si el departamento está registrado.
func (d *Directory) DepartmentExists(_ context.Context, companyID, name string) (bool, error) {
	return d.exists(d.departments, companyID, name), nil
}
