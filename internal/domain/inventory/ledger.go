package inventory

import (
	"fmt"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// setStock cambia el stock agregado del producto en la posición idx y registra la entrada de historial.
// Es la única vía por la que el motor altera Product.Stock; la cantidad del historial se deriva aquí.
func (r *Reducer) setStock(s *State, idx int, newStock int, action entity.StockAction, reason, reference, actor string) (entity.StockHistoryEntry, error) {
	p := &s.Products[idx]
	if newStock < 0 {
		return entity.StockHistoryEntry{}, fmt.Errorf("%w: stock de %q quedaría en %d", domain.ErrInvariantViolation, p.Name, newStock)
	}
	now := r.now()
	prev := p.Stock
	p.Stock = newStock
	p.UpdatedAt = now
	entry := entity.StockHistoryEntry{
		ID:            r.newID(),
		CompanyID:     s.CompanyID,
		ProductID:     p.ID,
		Action:        action,
		PreviousStock: prev,
		NewStock:      newStock,
		Quantity:      abs(newStock - prev),
		Reason:        reason,
		Reference:     reference,
		Actor:         actor,
		Timestamp:     now,
		ProductName:   p.Name,
		ProductSKU:    p.SKU,
		Company:       p.Company,
		Warehouse:     p.Warehouse,
		Category:      p.Category,
	}
	s.Ledger = append(s.Ledger, entry)
	return entry, nil
}

// AdjustStock fija el stock de un producto no serializado y registra un ajuste.
// Los productos serializados solo cambian de stock a través de sus unidades.
func (r *Reducer) AdjustStock(s *State, productID string, newStock int, reason, actor string) (*State, Effects, error) {
	idx := s.productIndex(productID)
	if idx < 0 {
		return s, Effects{}, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	if reason == "" || actor == "" {
		return s, Effects{}, fmt.Errorf("%w: motivo y usuario requeridos", domain.ErrValidation)
	}
	if s.Products[idx].Serialized {
		return s, Effects{}, fmt.Errorf("%w: %q es serializado, ajuste por unidades", domain.ErrInvariantViolation, s.Products[idx].Name)
	}
	if s.Products[idx].Stock == newStock {
		return s, Effects{}, fmt.Errorf("%w: el stock no cambia", domain.ErrValidation)
	}
	next := s.Clone()
	entry, err := r.setStock(next, idx, newStock, entity.StockActionAdjust, reason, "", actor)
	if err != nil {
		return s, Effects{}, err
	}
	return next, Effects{Ledger: []entity.StockHistoryEntry{entry}}, nil
}

// LedgerFilter criterios de consulta del historial; los campos vacíos no filtran.
type LedgerFilter struct {
	ProductID string
	Action    entity.StockAction
	Reference string
	From      *time.Time
	To        *time.Time
}

// QueryLedger devuelve las entradas que cumplen el filtro, de la más reciente a la más antigua.
func (s *State) QueryLedger(f LedgerFilter) []entity.StockHistoryEntry {
	out := make([]entity.StockHistoryEntry, 0)
	for i := len(s.Ledger) - 1; i >= 0; i-- {
		e := s.Ledger[i]
		if f.ProductID != "" && e.ProductID != f.ProductID {
			continue
		}
		if f.Action != "" && e.Action != f.Action {
			continue
		}
		if f.Reference != "" && e.Reference != f.Reference {
			continue
		}
		if f.From != nil && e.Timestamp.Before(*f.From) {
			continue
		}
		if f.To != nil && e.Timestamp.After(*f.To) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
