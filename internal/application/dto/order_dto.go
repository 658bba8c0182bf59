package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItemInput línea de una orden a proveedor.
type OrderItemInput struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name" validate:"required_without=ProductID,max=200"`
	Quantity    int             `json:"quantity" validate:"required,min=1"`
	Price       decimal.Decimal `json:"price"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	Supplier  string           `json:"supplier" validate:"required,max=200"`
	Company   string           `json:"company"`
	Warehouse string           `json:"warehouse"`
	Date      *time.Time       `json:"date"`
	Items     []OrderItemInput `json:"items" validate:"required,min=1,dive"`
}

// ArrivalInput entrega futura; Date nulo = fecha desconocida.
type ArrivalInput struct {
	Quantity int        `json:"quantity" validate:"min=0"`
	Date     *time.Time `json:"date"`
}

// ReceiptLineInput lo recibido de una línea de la orden.
type ReceiptLineInput struct {
	ItemIndex        int            `json:"item_index" validate:"min=0"`
	ReceivedQuantity int            `json:"received_quantity" validate:"min=0"`
	Arrivals         []ArrivalInput `json:"arrivals" validate:"dive"`
	Category         string         `json:"category"`
	Department       string         `json:"department"`
	Serialized       bool           `json:"serialized"`
	SKU              string         `json:"sku"`
	Location         string         `json:"location"`
	SerialNumbers    []string       `json:"serial_numbers"`
}

// ConfirmReceiptRequest body para POST /api/orders/:id/receive. Las líneas omitidas cuentan como recibido 0.
type ConfirmReceiptRequest struct {
	Lines []ReceiptLineInput `json:"lines" validate:"dive"`
}

// OrderResponse orden con su total calculado.
type OrderResponse struct {
	ID         string           `json:"id"`
	Number     string           `json:"number"`
	Supplier   string           `json:"supplier"`
	Company    string           `json:"company"`
	Warehouse  string           `json:"warehouse"`
	Date       time.Time        `json:"date"`
	Status     string           `json:"status"`
	Items      []OrderItemInput `json:"items"`
	Total      decimal.Decimal  `json:"total"`
	ReceivedAt *time.Time       `json:"received_at,omitempty"`
}
