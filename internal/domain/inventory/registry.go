package inventory

import (
	"fmt"
	"strings"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ProductSpec datos de catálogo para registrar un producto.
type ProductSpec struct {
	ID         string
	Name       string
	SKU        string
	Category   string
	Department string
	Company    string
	Warehouse  string
	Serialized bool
	MinStock   *int
}

// UnitSpec atributos de una unidad a crear.
type UnitSpec struct {
	SKU          string
	SerialNumber string
	Location     entity.Location
	Status       entity.UnitStatus
}

// CreateUnitsCommand alta de un lote de unidades. Genera una sola entrada de historial.
type CreateUnitsCommand struct {
	ProductID string
	Units     []UnitSpec
	Reason    string
	Reference string
	Actor     string
}

// UnitMove nueva ubicación para una unidad.
type UnitMove struct {
	UnitID string
	To     entity.Location
}

// RelocateUnitsCommand traslado de unidades; no altera stock.
type RelocateUnitsCommand struct {
	ProductID  string
	Moves      []UnitMove
	Actor      string
	EmployeeID string
}

// RegisterProduct agrega un producto del catálogo al estado con stock cero.
func (r *Reducer) RegisterProduct(s *State, spec ProductSpec) (*State, entity.Product, error) {
	name := strings.TrimSpace(spec.Name)
	if name == "" {
		return s, entity.Product{}, fmt.Errorf("%w: nombre de producto requerido", domain.ErrValidation)
	}
	if spec.MinStock != nil && *spec.MinStock < 0 {
		return s, entity.Product{}, fmt.Errorf("%w: stock mínimo negativo", domain.ErrValidation)
	}
	if spec.ID != "" && s.productIndex(spec.ID) >= 0 {
		return s, entity.Product{}, fmt.Errorf("%w: producto %s ya existe", domain.ErrValidation, spec.ID)
	}
	next := s.Clone()
	p := r.newProduct(next, spec)
	return next, p, nil
}

func (r *Reducer) newProduct(s *State, spec ProductSpec) entity.Product {
	now := r.now()
	id := spec.ID
	if id == "" {
		id = r.newID()
	}
	category := spec.Category
	if category == "" {
		category = entity.DefaultCategoryName
	}
	p := entity.Product{
		ID:         id,
		CompanyID:  s.CompanyID,
		SKU:        spec.SKU,
		Name:       strings.TrimSpace(spec.Name),
		Category:   category,
		Department: spec.Department,
		Company:    spec.Company,
		Warehouse:  spec.Warehouse,
		Serialized: spec.Serialized,
		MinStock:   spec.MinStock,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.Products = append(s.Products, p)
	return p
}

// CreateUnits agrega unidades al producto, incrementa el stock y emite una única entrada "add".
func (r *Reducer) CreateUnits(s *State, cmd CreateUnitsCommand) (*State, Effects, error) {
	idx := s.productIndex(cmd.ProductID)
	if idx < 0 {
		return s, Effects{}, fmt.Errorf("%w: producto %s", domain.ErrNotFound, cmd.ProductID)
	}
	if cmd.Actor == "" {
		return s, Effects{}, fmt.Errorf("%w: usuario requerido", domain.ErrValidation)
	}
	next := s.Clone()
	entry, err := r.createUnits(next, idx, cmd.Units, entity.StockActionAdd, cmd.Reason, cmd.Reference, cmd.Actor)
	if err != nil {
		return s, Effects{}, err
	}
	return next, Effects{Ledger: []entity.StockHistoryEntry{entry}}, nil
}

// createUnits valida y agrega el lote sobre s (ya clonado).
func (r *Reducer) createUnits(s *State, idx int, specs []UnitSpec, action entity.StockAction, reason, reference, actor string) (entity.StockHistoryEntry, error) {
	p := s.Products[idx]
	if p.IsDeleted() {
		return entity.StockHistoryEntry{}, fmt.Errorf("%w: producto %q dado de baja", domain.ErrValidation, p.Name)
	}
	if len(specs) == 0 {
		return entity.StockHistoryEntry{}, fmt.Errorf("%w: el lote no tiene unidades", domain.ErrValidation)
	}
	serials := make(map[string]bool)
	for _, u := range s.Units[p.ID] {
		if u.SerialNumber != "" && u.Active() {
			serials[strings.ToUpper(u.SerialNumber)] = true
		}
	}
	units := make([]entity.ProductUnit, 0, len(specs))
	now := r.now()
	for i, spec := range specs {
		if !spec.Location.Valid() {
			return entity.StockHistoryEntry{}, fmt.Errorf("%w: ubicación %q inválida en unidad %d", domain.ErrValidation, spec.Location, i+1)
		}
		status := spec.Status
		if status == "" {
			status = entity.UnitStatusAvailable
		}
		if !status.Valid() {
			return entity.StockHistoryEntry{}, fmt.Errorf("%w: estado %q inválido en unidad %d", domain.ErrValidation, status, i+1)
		}
		if sn := strings.ToUpper(strings.TrimSpace(spec.SerialNumber)); sn != "" {
			if serials[sn] {
				return entity.StockHistoryEntry{}, fmt.Errorf("%w: número de serie %q repetido", domain.ErrValidation, spec.SerialNumber)
			}
			serials[sn] = true
		}
		sku := spec.SKU
		if sku == "" {
			sku = p.SKU
		}
		units = append(units, entity.ProductUnit{
			ID:           r.newID(),
			ProductID:    p.ID,
			SKU:          sku,
			SerialNumber: strings.TrimSpace(spec.SerialNumber),
			Location:     spec.Location,
			Status:       status,
			Lifecycle:    entity.UnitActive,
			CreatedAt:    now,
		})
	}
	entry, err := r.setStock(s, idx, p.Stock+len(units), action, reason, reference, actor)
	if err != nil {
		return entity.StockHistoryEntry{}, err
	}
	s.Units[p.ID] = append(s.Units[p.ID], units...)
	return entry, nil
}

// RelocateUnits cambia la ubicación de las unidades y registra un movimiento por cada una que cambie.
func (r *Reducer) RelocateUnits(s *State, cmd RelocateUnitsCommand) (*State, Effects, error) {
	idx := s.productIndex(cmd.ProductID)
	if idx < 0 {
		return s, Effects{}, fmt.Errorf("%w: producto %s", domain.ErrNotFound, cmd.ProductID)
	}
	if cmd.Actor == "" {
		return s, Effects{}, fmt.Errorf("%w: usuario requerido", domain.ErrValidation)
	}
	if len(cmd.Moves) == 0 {
		return s, Effects{}, fmt.Errorf("%w: no hay unidades para trasladar", domain.ErrValidation)
	}
	units := s.Units[cmd.ProductID]
	seen := make(map[string]bool, len(cmd.Moves))
	for _, m := range cmd.Moves {
		if seen[m.UnitID] {
			return s, Effects{}, fmt.Errorf("%w: unidad %s repetida", domain.ErrValidation, m.UnitID)
		}
		seen[m.UnitID] = true
		ui := unitIndex(units, m.UnitID)
		if ui < 0 {
			return s, Effects{}, fmt.Errorf("%w: unidad %s", domain.ErrNotFound, m.UnitID)
		}
		if !units[ui].Active() {
			return s, Effects{}, fmt.Errorf("%w: unidad %s dada de baja", domain.ErrValidation, m.UnitID)
		}
		if !m.To.Valid() {
			return s, Effects{}, fmt.Errorf("%w: ubicación %q inválida", domain.ErrValidation, m.To)
		}
	}

	next := s.Clone()
	p := next.Products[idx]
	nextUnits := next.Units[cmd.ProductID]
	now := r.now()
	var eff Effects
	for _, m := range cmd.Moves {
		u := &nextUnits[unitIndex(nextUnits, m.UnitID)]
		if u.Location == m.To {
			continue
		}
		mov := entity.StockMovement{
			ID:           r.newID(),
			CompanyID:    next.CompanyID,
			UnitID:       u.ID,
			ProductID:    p.ID,
			ProductName:  p.Name,
			ProductSKU:   u.SKU,
			SerialNumber: u.SerialNumber,
			FromLocation: u.Location,
			ToLocation:   m.To,
			Timestamp:    now,
			Actor:        cmd.Actor,
			EmployeeID:   cmd.EmployeeID,
		}
		u.Location = m.To
		next.Movements = append(next.Movements, mov)
		eff.Movements = append(eff.Movements, mov)
	}
	return next, eff, nil
}

// SetUnitStatus cambia el estado operativo de una unidad activa.
func (r *Reducer) SetUnitStatus(s *State, productID, unitID string, status entity.UnitStatus) (*State, error) {
	if !status.Valid() {
		return s, fmt.Errorf("%w: estado %q inválido", domain.ErrValidation, status)
	}
	ui, err := findUnit(s, productID, unitID)
	if err != nil {
		return s, err
	}
	if !s.Units[productID][ui].Active() {
		return s, fmt.Errorf("%w: unidad %s dada de baja", domain.ErrValidation, unitID)
	}
	next := s.Clone()
	next.Units[productID][ui].Status = status
	return next, nil
}

// SoftDeleteUnit marca la unidad como dada de baja, descuenta stock y registra "remove".
func (r *Reducer) SoftDeleteUnit(s *State, productID, unitID, reason, actor string) (*State, Effects, error) {
	ui, err := findUnit(s, productID, unitID)
	if err != nil {
		return s, Effects{}, err
	}
	if strings.TrimSpace(reason) == "" || actor == "" {
		return s, Effects{}, fmt.Errorf("%w: motivo y usuario requeridos", domain.ErrValidation)
	}
	if !s.Units[productID][ui].Active() {
		return s, Effects{}, fmt.Errorf("%w: unidad %s ya dada de baja", domain.ErrValidation, unitID)
	}
	next := s.Clone()
	idx := next.productIndex(productID)
	entry, err := r.setStock(next, idx, next.Products[idx].Stock-1, entity.StockActionRemove, reason, unitID, actor)
	if err != nil {
		return s, Effects{}, err
	}
	now := r.now()
	u := &next.Units[productID][ui]
	u.Lifecycle = entity.UnitTombstoned
	u.DeletedAt = &now
	return next, Effects{Ledger: []entity.StockHistoryEntry{entry}}, nil
}

// RestoreUnit reactiva una unidad dada de baja y repone una unidad de stock.
// Solo emite historial si el reductor se configuró con WithRestoreAudit.
func (r *Reducer) RestoreUnit(s *State, productID, unitID, actor string) (*State, Effects, error) {
	ui, err := findUnit(s, productID, unitID)
	if err != nil {
		return s, Effects{}, err
	}
	if s.Units[productID][ui].Active() {
		return s, Effects{}, fmt.Errorf("%w: unidad %s no está dada de baja", domain.ErrValidation, unitID)
	}
	next := s.Clone()
	idx := next.productIndex(productID)
	p := &next.Products[idx]
	if p.IsDeleted() {
		return s, Effects{}, fmt.Errorf("%w: producto %q dado de baja", domain.ErrValidation, p.Name)
	}
	var eff Effects
	if r.auditRestore {
		entry, err := r.setStock(next, idx, p.Stock+1, entity.StockActionAdjust, "restauración de unidad", unitID, actor)
		if err != nil {
			return s, Effects{}, err
		}
		eff.Ledger = append(eff.Ledger, entry)
	} else {
		p.Stock++
		p.UpdatedAt = r.now()
	}
	u := &next.Units[productID][ui]
	u.Lifecycle = entity.UnitActive
	u.DeletedAt = nil
	return next, eff, nil
}

// PermanentlyDeleteUnit elimina físicamente una unidad ya dada de baja.
// El stock se descontó en la baja lógica; el historial conserva el ID de la unidad.
func (r *Reducer) PermanentlyDeleteUnit(s *State, productID, unitID string) (*State, error) {
	ui, err := findUnit(s, productID, unitID)
	if err != nil {
		return s, err
	}
	if s.Units[productID][ui].Active() {
		return s, fmt.Errorf("%w: la unidad %s debe darse de baja antes de eliminarse", domain.ErrInvariantViolation, unitID)
	}
	next := s.Clone()
	units := next.Units[productID]
	next.Units[productID] = append(units[:ui:ui], units[ui+1:]...)
	return next, nil
}

// SoftDeleteProduct da de baja el producto; se rechaza si aún tiene unidades activas o stock.
func (r *Reducer) SoftDeleteProduct(s *State, productID string) (*State, error) {
	idx := s.productIndex(productID)
	if idx < 0 {
		return s, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	p := s.Products[idx]
	if p.IsDeleted() {
		return s, fmt.Errorf("%w: producto %q ya dado de baja", domain.ErrValidation, p.Name)
	}
	if s.LiveUnitCount(productID) > 0 || p.Stock > 0 {
		return s, fmt.Errorf("%w: producto %q conserva existencias", domain.ErrInvariantViolation, p.Name)
	}
	next := s.Clone()
	now := r.now()
	next.Products[idx].DeletedAt = &now
	next.Products[idx].UpdatedAt = now
	return next, nil
}

// RestoreProduct revierte la baja lógica del producto.
func (r *Reducer) RestoreProduct(s *State, productID string) (*State, error) {
	idx := s.productIndex(productID)
	if idx < 0 {
		return s, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	if !s.Products[idx].IsDeleted() {
		return s, fmt.Errorf("%w: producto %q no está dado de baja", domain.ErrValidation, s.Products[idx].Name)
	}
	next := s.Clone()
	next.Products[idx].DeletedAt = nil
	next.Products[idx].UpdatedAt = r.now()
	return next, nil
}

func findUnit(s *State, productID, unitID string) (int, error) {
	if s.productIndex(productID) < 0 {
		return -1, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	ui := unitIndex(s.Units[productID], unitID)
	if ui < 0 {
		return -1, fmt.Errorf("%w: unidad %s", domain.ErrNotFound, unitID)
	}
	return ui, nil
}
