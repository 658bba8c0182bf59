package entity

import "time"

// StockAction causa de un cambio de cantidad.
type StockAction string

const (
	StockActionAdd           StockAction = "add"
	StockActionRemove        StockAction = "remove"
	StockActionAdjust        StockAction = "adjust"
	StockActionOrderReceived StockAction = "order-received"
)

// Valid indica si la acción es conocida.
func (a StockAction) Valid() bool {
	switch a {
	case StockActionAdd, StockActionRemove, StockActionAdjust, StockActionOrderReceived:
		return true
	}
	return false
}

// StockHistoryEntry registro inmutable de un cambio de stock.
// Quantity siempre se deriva de |NewStock - PreviousStock|.
// Los atributos del producto se copian para que el historial sea legible aunque el producto cambie.
type StockHistoryEntry struct {
	ID            string      `json:"id"`
	CompanyID     string      `json:"company_id"`
	ProductID     string      `json:"product_id"`
	Action        StockAction `json:"action"`
	PreviousStock int         `json:"previous_stock"`
	NewStock      int         `json:"new_stock"`
	Quantity      int         `json:"quantity"`
	Reason        string      `json:"reason,omitempty"`
	Reference     string      `json:"reference,omitempty"`
	Actor         string      `json:"actor"`
	Timestamp     time.Time   `json:"timestamp"`

	ProductName string `json:"product_name"`
	ProductSKU  string `json:"product_sku,omitempty"`
	Company     string `json:"company,omitempty"`
	Warehouse   string `json:"warehouse,omitempty"`
	Category    string `json:"category,omitempty"`
}
