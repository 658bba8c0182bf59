package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// Colecciones persistidas por empresa. Cada una se reescribe completa en cada guardado.
const (
	CollectionProducts      = "products"
	CollectionUnits         = "units"
	CollectionLedger        = "ledger"
	CollectionMovements     = "movements"
	CollectionOrders        = "orders"
	CollectionPendingStocks = "pending_stocks"
)

// Collections orden estable de escritura.
var Collections = []string{
	CollectionProducts,
	CollectionUnits,
	CollectionLedger,
	CollectionMovements,
	CollectionOrders,
	CollectionPendingStocks,
}

// Snapshot estado completo de inventario de una empresa tal como se persiste.
// Version 0 significa que la empresa aún no tiene nada guardado.
type Snapshot struct {
	CompanyID     string                          `json:"company_id"`
	Version       int64                           `json:"version"`
	Products      []entity.Product                `json:"products"`
	Units         map[string][]entity.ProductUnit `json:"units"` // por ProductID
	Ledger        []entity.StockHistoryEntry      `json:"ledger"`
	Movements     []entity.StockMovement          `json:"movements"`
	Orders        []entity.Order                  `json:"orders"`
	PendingStocks []entity.PendingStock           `json:"pending_stocks"`
}

// SnapshotRepository puerto de persistencia load/save por empresa (DIP).
// Load devuelve un Snapshot vacío con Version 0 si la empresa no tiene datos.
// Save recibe la versión leída; si la almacenada difiere devuelve domain.ErrConflict.
// En éxito devuelve la nueva versión.
type SnapshotRepository interface {
	Load(ctx context.Context, companyID string) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot, expectedVersion int64) (int64, error)
}
