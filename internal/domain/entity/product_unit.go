package entity

import "time"

// UnitStatus estado operativo de una unidad serializada.
type UnitStatus string

const (
	UnitStatusAvailable   UnitStatus = "available"
	UnitStatusInUse       UnitStatus = "in-use"
	UnitStatusMaintenance UnitStatus = "maintenance"
	UnitStatusOutOfUse    UnitStatus = "out-of-use"
)

// Valid indica si el estado es uno de los cuatro definidos.
func (s UnitStatus) Valid() bool {
	switch s {
	case UnitStatusAvailable, UnitStatusInUse, UnitStatusMaintenance, UnitStatusOutOfUse:
		return true
	}
	return false
}

// UnitLifecycle marca explícita de baja lógica (reemplaza el deletedAt opcional).
type UnitLifecycle string

const (
	UnitActive     UnitLifecycle = "active"
	UnitTombstoned UnitLifecycle = "tombstoned"
)

// ProductUnit representa una unidad individual y trazable de un producto.
// Los registros de historial y movimientos referencian ID, que nunca cambia.
type ProductUnit struct {
	ID           string        `json:"id"`
	ProductID    string        `json:"product_id"`
	SKU          string        `json:"sku,omitempty"`
	SerialNumber string        `json:"serial_number,omitempty"`
	Location     Location      `json:"location"`
	Status       UnitStatus    `json:"status"`
	Lifecycle    UnitLifecycle `json:"lifecycle"`
	CreatedAt    time.Time     `json:"created_at"`
	DeletedAt    *time.Time    `json:"deleted_at,omitempty"` // momento del tombstone, solo auditoría
}

// Active indica si la unidad cuenta para el stock agregado.
func (u *ProductUnit) Active() bool {
	return u.Lifecycle != UnitTombstoned
}
