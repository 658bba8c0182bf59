package entity

import "time"

// StockMovement registra el traslado de una unidad entre ubicaciones.
// No altera cantidades; cada unidad trasladada genera su propio registro.
type StockMovement struct {
	ID           string    `json:"id"`
	CompanyID    string    `json:"company_id"`
	UnitID       string    `json:"unit_id"`
	ProductID    string    `json:"product_id"`
	ProductName  string    `json:"product_name"`
	ProductSKU   string    `json:"product_sku,omitempty"`
	SerialNumber string    `json:"serial_number,omitempty"`
	FromLocation Location  `json:"from_location"`
	ToLocation   Location  `json:"to_location"`
	Timestamp    time.Time `json:"timestamp"`
	Actor        string    `json:"actor"`
	EmployeeID   string    `json:"employee_id,omitempty"`
}
