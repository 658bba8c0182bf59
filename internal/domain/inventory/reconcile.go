package inventory

import (
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// WarningKind tipo de inconsistencia detectada.
type WarningKind string

const (
	WarningStockMismatch    WarningKind = "stock_mismatch"
	WarningPendingInvariant WarningKind = "pending_invariant"
	WarningArrivalsExceed   WarningKind = "arrivals_exceed_pending"
)

// ReconciliationWarning inconsistencia encontrada al revisar el estado. Nunca se corrige automáticamente.
type ReconciliationWarning struct {
	Kind           WarningKind `json:"kind"`
	ProductID      string      `json:"product_id,omitempty"`
	PendingStockID string      `json:"pending_stock_id,omitempty"`
	ItemIndex      int         `json:"item_index,omitempty"`
	Expected       int         `json:"expected"`
	Actual         int         `json:"actual"`
	Message        string      `json:"message"`
}

// CheckConsistency revisa stock contra unidades activas y el cuadre de cada pendiente.
func CheckConsistency(s *State) []ReconciliationWarning {
	warnings := make([]ReconciliationWarning, 0)
	for _, p := range s.Products {
		if !p.Serialized && len(s.Units[p.ID]) == 0 {
			continue
		}
		live := s.LiveUnitCount(p.ID)
		if live != p.Stock {
			warnings = append(warnings, ReconciliationWarning{
				Kind:      WarningStockMismatch,
				ProductID: p.ID,
				Expected:  live,
				Actual:    p.Stock,
				Message:   fmt.Sprintf("%q registra stock %d con %d unidades activas", p.Name, p.Stock, live),
			})
		}
	}
	for _, ps := range s.PendingStocks {
		for i, it := range ps.Items {
			if it.ReceivedQuantity < 0 || it.PendingQuantity < 0 ||
				it.ReceivedQuantity+it.PendingQuantity != it.OrderedQuantity {
				warnings = append(warnings, ReconciliationWarning{
					Kind:           WarningPendingInvariant,
					PendingStockID: ps.ID,
					ProductID:      it.ProductID,
					ItemIndex:      i,
					Expected:       it.OrderedQuantity,
					Actual:         it.ReceivedQuantity + it.PendingQuantity,
					Message:        fmt.Sprintf("%q recibido %d más pendiente %d no cuadra con %d", it.ProductName, it.ReceivedQuantity, it.PendingQuantity, it.OrderedQuantity),
				})
			}
			if sched := it.ScheduledQuantity(); sched > it.PendingQuantity {
				warnings = append(warnings, ReconciliationWarning{
					Kind:           WarningArrivalsExceed,
					PendingStockID: ps.ID,
					ProductID:      it.ProductID,
					ItemIndex:      i,
					Expected:       it.PendingQuantity,
					Actual:         sched,
					Message:        fmt.Sprintf("%q tiene %d programado para %d pendientes", it.ProductName, sched, it.PendingQuantity),
				})
			}
		}
	}
	return warnings
}

// LowStock productos vigentes con stock mínimo configurado y stock por debajo de él.
func (s *State) LowStock() []entity.Product {
	out := make([]entity.Product, 0)
	for _, p := range s.Products {
		if !p.IsDeleted() && p.BelowMinStock() {
			out = append(out, p)
		}
	}
	return out
}
