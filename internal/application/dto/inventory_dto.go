package dto

import "time"

// UnitInput atributos de una unidad a crear.
type UnitInput struct {
	SKU          string `json:"sku" validate:"max=100"`
	SerialNumber string `json:"serial_number" validate:"max=100"`
	Location     string `json:"location" validate:"required"`
	Status       string `json:"status" validate:"omitempty,oneof=available in-use maintenance out-of-use"`
}

// CreateUnitsRequest body para POST /api/inventory/products/:id/units.
type CreateUnitsRequest struct {
	Units     []UnitInput `json:"units" validate:"required,min=1,dive"`
	Reason    string      `json:"reason" validate:"max=500"`
	Reference string      `json:"reference" validate:"max=100"`
}

// UnitMoveInput nueva ubicación de una unidad.
type UnitMoveInput struct {
	UnitID   string `json:"unit_id" validate:"required"`
	Location string `json:"location" validate:"required"`
}

// RelocateUnitsRequest body para POST /api/inventory/products/:id/units/relocate.
type RelocateUnitsRequest struct {
	Moves      []UnitMoveInput `json:"moves" validate:"required,min=1,dive"`
	EmployeeID string          `json:"employee_id"`
}

// SoftDeleteUnitRequest baja lógica de una unidad; el motivo es obligatorio.
type SoftDeleteUnitRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// UnitStatusRequest cambio de estado operativo.
type UnitStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=available in-use maintenance out-of-use"`
}

// LedgerQuery filtros del historial de stock (query string).
type LedgerQuery struct {
	ProductID string `query:"product_id"`
	Action    string `query:"action" validate:"omitempty,oneof=add remove adjust order-received"`
	Reference string `query:"reference"`
	From      string `query:"from" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	To        string `query:"to" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	PageRequest
}

// LowStockDTO producto por debajo de su stock mínimo.
type LowStockDTO struct {
	ProductID    string `json:"product_id"`
	SKU          string `json:"sku"`
	ProductName  string `json:"product_name"`
	Category     string `json:"category"`
	Warehouse    string `json:"warehouse"`
	CurrentStock int    `json:"current_stock"`
	MinStock     int    `json:"min_stock"`
	Deficit      int    `json:"deficit"`  // MinStock - CurrentStock
	Priority     int    `json:"priority"` // 1 = más urgente
}

// ReconciliationWarningDTO inconsistencia detectada.
type ReconciliationWarningDTO struct {
	Kind           string `json:"kind"`
	ProductID      string `json:"product_id,omitempty"`
	PendingStockID string `json:"pending_stock_id,omitempty"`
	Expected       int    `json:"expected"`
	Actual         int    `json:"actual"`
	Message        string `json:"message"`
}

// ReconciliationReport resultado de la revisión de consistencia.
type ReconciliationReport struct {
	CompanyID string                     `json:"company_id"`
	CheckedAt time.Time                  `json:"checked_at"`
	Warnings  []ReconciliationWarningDTO `json:"warnings"`
}
