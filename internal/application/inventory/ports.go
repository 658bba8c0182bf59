package inventory

import (
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// SnapshotStore carga y guarda todas las colecciones de una empresa con control de versión.
type SnapshotStore = repository.SnapshotRepository

// OrderSequence contador durable de números de orden.
type OrderSequence = repository.OrderSequenceRepository

// CatalogPort categorías del catálogo; el motor solo solicita la categoría por defecto.
type CatalogPort = repository.CategoryRepository

// OrderReportPort reportes de compras calculados por el almacén sobre lo guardado.
type OrderReportPort = repository.OrderReportRepository

// DirectoryPort proveedores, empleados y departamentos administrados fuera del motor.
type DirectoryPort = repository.DirectoryRepository

// Metrics observa la actividad del motor. Puede ser nil.
type Metrics interface {
	ObserveEffects(eff inventory.Effects)
	ObserveFlush(outcome string)
	ObserveConflict()
	ObserveReconcileWarnings(n int)
}

// Resultados de escritura diferida.
const (
	FlushOK       = "ok"
	FlushConflict = "conflict"
	FlushError    = "error"
)

// Políticas ante conflicto de versión al guardar.
const (
	ConflictReject        = "reject"
	ConflictLastWriteWins = "last-write-wins"
)

type nopMetrics struct{}

func (nopMetrics) ObserveEffects(inventory.Effects) {}
func (nopMetrics) ObserveFlush(string)              {}
func (nopMetrics) ObserveConflict()                 {}
func (nopMetrics) ObserveReconcileWarnings(int)     {}
