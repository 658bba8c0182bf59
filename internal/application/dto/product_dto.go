package dto

import "time"

// RegisterProductRequest alta de un producto del catálogo en el motor de inventario.
type RegisterProductRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=200"`
	SKU        string `json:"sku" validate:"max=100"`
	Category   string `json:"category" validate:"max=100"`
	Department string `json:"department" validate:"max=100"`
	Company    string `json:"company"`
	Warehouse  string `json:"warehouse"`
	Serialized bool   `json:"serialized"`
	MinStock   *int   `json:"min_stock" validate:"omitempty,min=0"`
}

// AdjustStockRequest ajuste manual del stock de un producto no serializado.
type AdjustStockRequest struct {
	NewStock *int   `json:"new_stock" validate:"required,min=0"`
	Reason   string `json:"reason" validate:"required,max=500"`
}

// ProductResponse salida de un producto con su stock.
type ProductResponse struct {
	ID         string     `json:"id"`
	SKU        string     `json:"sku"`
	Name       string     `json:"name"`
	Category   string     `json:"category"`
	Department string     `json:"department"`
	Company    string     `json:"company"`
	Warehouse  string     `json:"warehouse"`
	Serialized bool       `json:"serialized"`
	Stock      int        `json:"stock"`
	LiveUnits  int        `json:"live_units"`
	MinStock   *int       `json:"min_stock,omitempty"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}
