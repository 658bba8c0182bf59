package entity

import "time"

// Product representa un producto del catálogo.
// El motor de inventario solo modifica Stock y DeletedAt; el resto pertenece al catálogo.
// Si Serialized es true, Stock debe coincidir con el número de unidades activas.
type Product struct {
	ID         string     `json:"id"`
	CompanyID  string     `json:"company_id"`
	SKU        string     `json:"sku"`
	Name       string     `json:"name"`
	Category   string     `json:"category"`
	Department string     `json:"department"`
	Company    string     `json:"company"`
	Warehouse  string     `json:"warehouse"`
	Serialized bool       `json:"serialized"`
	Stock      int        `json:"stock"`
	MinStock   *int       `json:"min_stock,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// IsDeleted indica si el producto fue dado de baja lógicamente.
func (p *Product) IsDeleted() bool {
	return p.DeletedAt != nil
}

// BelowMinStock indica si el stock está por debajo del umbral configurado.
func (p *Product) BelowMinStock() bool {
	return p.MinStock != nil && p.Stock < *p.MinStock
}
