package entity

import "time"

// DefaultCategoryName categoría asignada cuando un producto llega sin clasificación.
const DefaultCategoryName = "General"

// Category representa una categoría de productos (jerárquica opcional).
// Pertenece al catálogo; el motor solo la consulta o solicita la categoría por defecto.
type Category struct {
	ID        string    `json:"id"`
	CompanyID string    `json:"company_id"`
	ParentID  string    `json:"parent_id,omitempty"` // vacío si es raíz
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
