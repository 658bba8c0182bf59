package repository

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// SupplierSpend compras acumuladas a un proveedor, sin contar órdenes canceladas.
type SupplierSpend struct {
	Supplier string          `json:"supplier"`
	Orders   int             `json:"orders"`
	Total    decimal.Decimal `json:"total"`
}

// OrderReportRepository reportes sobre las órdenes ya guardadas.
type OrderReportRepository interface {
	SupplierSpend(ctx context.Context, companyID string) ([]SupplierSpend, error)
}

// SupplierSpendOf agrupa las órdenes por proveedor; mayor total primero.
func SupplierSpendOf(orders []entity.Order) []SupplierSpend {
	bySupplier := make(map[string]*SupplierSpend)
	for i := range orders {
		o := &orders[i]
		if o.Status == entity.OrderStatusCancelled {
			continue
		}
		row, ok := bySupplier[o.Supplier]
		if !ok {
			row = &SupplierSpend{Supplier: o.Supplier, Total: decimal.Zero}
			bySupplier[o.Supplier] = row
		}
		row.Orders++
		row.Total = row.Total.Add(o.Total())
	}
	out := make([]SupplierSpend, 0, len(bySupplier))
	for _, row := range bySupplier {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Supplier < out[j].Supplier
	})
	return out
}
