package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

// LowStockList devuelve los productos vigentes bajo su stock mínimo,
// ordenados por déficit (mayor primero) y luego por nombre.
func (e *Engine) LowStockList(ctx context.Context, companyID string) ([]dto.LowStockDTO, error) {
	var out []dto.LowStockDTO
	err := e.view(ctx, companyID, func(s *inventory.State) {
		low := s.LowStock()
		out = make([]dto.LowStockDTO, 0, len(low))
		for _, p := range low {
			out = append(out, dto.LowStockDTO{
				ProductID:    p.ID,
				SKU:          p.SKU,
				ProductName:  p.Name,
				Category:     p.Category,
				Warehouse:    p.Warehouse,
				CurrentStock: p.Stock,
				MinStock:     *p.MinStock,
				Deficit:      *p.MinStock - p.Stock,
			})
		}
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Deficit != out[j].Deficit {
			return out[i].Deficit > out[j].Deficit
		}
		return out[i].ProductName < out[j].ProductName
	})
	// 1 = más urgente
	for i := range out {
		out[i].Priority = i + 1
	}
	return out, nil
}
