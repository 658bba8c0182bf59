package entity

import (
	"math"
	"time"
)

// Arrival entrega futura programada de parte del pendiente. Date nil = fecha desconocida.
type Arrival struct {
	Quantity int        `json:"quantity"`
	Date     *time.Time `json:"date,omitempty"`
}

// PendingStockItem foto por línea de orden.
// Invariante: ReceivedQuantity + PendingQuantity == OrderedQuantity.
type PendingStockItem struct {
	ProductID        string    `json:"product_id,omitempty"`
	ProductName      string    `json:"product_name"`
	OrderedQuantity  int       `json:"ordered_quantity"`
	ReceivedQuantity int       `json:"received_quantity"`
	PendingQuantity  int       `json:"pending_quantity"`
	Arrivals         []Arrival `json:"arrivals"`
}

// ScheduledQuantity suma de las llegadas programadas; satura en math.MaxInt.
func (i *PendingStockItem) ScheduledQuantity() int {
	total := 0
	for _, a := range i.Arrivals {
		if a.Quantity > 0 && a.Quantity > math.MaxInt-total {
			return math.MaxInt
		}
		total += a.Quantity
	}
	return total
}

// PendingStock remanente de una orden recibida parcialmente.
// Se elimina cuando todas sus líneas llegan a pendiente cero.
type PendingStock struct {
	ID        string             `json:"id"`
	CompanyID string             `json:"company_id"`
	OrderID   string             `json:"order_id"`
	OrderNum  string             `json:"order_number"`
	Supplier  string             `json:"supplier"`
	Company   string             `json:"company"`
	Warehouse string             `json:"warehouse"`
	Date      time.Time          `json:"date"`
	Items     []PendingStockItem `json:"items"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Resolved indica si ya no queda cantidad pendiente en ninguna línea.
func (p *PendingStock) Resolved() bool {
	for _, it := range p.Items {
		if it.PendingQuantity > 0 {
			return false
		}
	}
	return true
}
