package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// transitions aristas válidas. recibido y cancelado son terminales.
// efectuado -> recibido solo ocurre dentro de ConfirmReceipt.
var transitions = map[entity.OrderStatus][]entity.OrderStatus{
	entity.OrderStatusPlaced:   {entity.OrderStatusReceived, entity.OrderStatusCancelled, entity.OrderStatusFungible},
	entity.OrderStatusFungible: {entity.OrderStatusPlaced},
}

// CanTransition indica si from -> to es una arista permitida.
func CanTransition(from, to entity.OrderStatus) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// CreateOrderCommand alta de una orden a proveedor.
type CreateOrderCommand struct {
	Number    string
	Supplier  string
	Company   string
	Warehouse string
	Date      time.Time
	Items     []entity.OrderItem
	Actor     string
}

// CreateOrder registra la orden en estado efectuado.
func (r *Reducer) CreateOrder(s *State, cmd CreateOrderCommand) (*State, entity.Order, error) {
	if strings.TrimSpace(cmd.Supplier) == "" {
		return s, entity.Order{}, fmt.Errorf("%w: proveedor requerido", domain.ErrValidation)
	}
	if cmd.Number == "" {
		return s, entity.Order{}, fmt.Errorf("%w: número de orden requerido", domain.ErrValidation)
	}
	if len(cmd.Items) == 0 {
		return s, entity.Order{}, fmt.Errorf("%w: la orden no tiene líneas", domain.ErrValidation)
	}
	for i, it := range cmd.Items {
		if strings.TrimSpace(it.ProductName) == "" && it.ProductID == "" {
			return s, entity.Order{}, fmt.Errorf("%w: línea %d sin producto", domain.ErrValidation, i+1)
		}
		if it.Quantity <= 0 {
			return s, entity.Order{}, fmt.Errorf("%w: línea %d con cantidad %d", domain.ErrValidation, i+1, it.Quantity)
		}
		if it.Price.LessThan(decimal.Zero) {
			return s, entity.Order{}, fmt.Errorf("%w: línea %d con precio negativo", domain.ErrValidation, i+1)
		}
		if it.ProductID != "" && s.productIndex(it.ProductID) < 0 {
			return s, entity.Order{}, fmt.Errorf("%w: producto %s", domain.ErrNotFound, it.ProductID)
		}
	}
	now := r.now()
	date := cmd.Date
	if date.IsZero() {
		date = now
	}
	items := make([]entity.OrderItem, len(cmd.Items))
	for i, it := range cmd.Items {
		if it.ProductID != "" && it.ProductName == "" {
			p, _ := s.Product(it.ProductID)
			it.ProductName = p.Name
		}
		it.ProductName = strings.TrimSpace(it.ProductName)
		items[i] = it
	}
	o := entity.Order{
		ID:        r.newID(),
		CompanyID: s.CompanyID,
		Number:    cmd.Number,
		Supplier:  strings.TrimSpace(cmd.Supplier),
		Company:   cmd.Company,
		Warehouse: cmd.Warehouse,
		Date:      date,
		Items:     items,
		Status:    entity.OrderStatusPlaced,
		CreatedBy: cmd.Actor,
		CreatedAt: now,
		UpdatedAt: now,
	}
	next := s.Clone()
	next.Orders = append(next.Orders, o)
	return next, o, nil
}

// CancelOrder efectuado -> cancelado, sin efectos de inventario.
func (r *Reducer) CancelOrder(s *State, orderID string) (*State, error) {
	return r.transition(s, orderID, entity.OrderStatusCancelled)
}

// MarkFungible efectuado -> fungible.
func (r *Reducer) MarkFungible(s *State, orderID string) (*State, error) {
	return r.transition(s, orderID, entity.OrderStatusFungible)
}

// UnmarkFungible fungible -> efectuado.
func (r *Reducer) UnmarkFungible(s *State, orderID string) (*State, error) {
	return r.transition(s, orderID, entity.OrderStatusPlaced)
}

func (r *Reducer) transition(s *State, orderID string, to entity.OrderStatus) (*State, error) {
	idx := s.orderIndex(orderID)
	if idx < 0 {
		return s, fmt.Errorf("%w: orden %s", domain.ErrNotFound, orderID)
	}
	from := s.Orders[idx].Status
	if to == entity.OrderStatusReceived || !CanTransition(from, to) {
		return s, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
	}
	next := s.Clone()
	next.Orders[idx].Status = to
	next.Orders[idx].UpdatedAt = r.now()
	return next, nil
}

// OrdersByStatus devuelve las órdenes con el estado dado (todas si status es vacío).
func (s *State) OrdersByStatus(status entity.OrderStatus) []entity.Order {
	out := make([]entity.Order, 0)
	for _, o := range s.Orders {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	return out
}
