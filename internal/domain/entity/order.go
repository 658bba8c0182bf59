package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus estados de una orden de compra a proveedor.
type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "efectuado"
	OrderStatusReceived  OrderStatus = "recibido"
	OrderStatusCancelled OrderStatus = "cancelado"
	OrderStatusFungible  OrderStatus = "fungible"
)

// Valid indica si el estado es uno de los cuatro definidos.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPlaced, OrderStatusReceived, OrderStatusCancelled, OrderStatusFungible:
		return true
	}
	return false
}

// OrderItem línea de una orden.
type OrderItem struct {
	ProductID   string          `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// Subtotal cantidad por precio unitario.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order orden de compra; solo cambia de estado a través de la máquina de estados.
type Order struct {
	ID         string      `json:"id"`
	CompanyID  string      `json:"company_id"`
	Number     string      `json:"number"`
	Supplier   string      `json:"supplier"`
	Company    string      `json:"company"`
	Warehouse  string      `json:"warehouse"`
	Date       time.Time   `json:"date"`
	Items      []OrderItem `json:"items"`
	Status     OrderStatus `json:"status"`
	CreatedBy  string      `json:"created_by"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
	ReceivedAt *time.Time  `json:"received_at,omitempty"`
}

// Total suma de subtotales de las líneas.
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}
