package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

func TestCanTransition_Tabla(t *testing.T) {
	cases := []struct {
		from, to entity.OrderStatus
		ok       bool
	}{
		{entity.OrderStatusPlaced, entity.OrderStatusReceived, true},
		{entity.OrderStatusPlaced, entity.OrderStatusCancelled, true},
		{entity.OrderStatusPlaced, entity.OrderStatusFungible, true},
		{entity.OrderStatusFungible, entity.OrderStatusPlaced, true},
		{entity.OrderStatusCancelled, entity.OrderStatusReceived, false},
		{entity.OrderStatusCancelled, entity.OrderStatusPlaced, false},
		{entity.OrderStatusReceived, entity.OrderStatusPlaced, false},
		{entity.OrderStatusReceived, entity.OrderStatusCancelled, false},
		{entity.OrderStatusFungible, entity.OrderStatusReceived, false},
		{entity.OrderStatusFungible, entity.OrderStatusCancelled, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.ok, inventory.CanTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestOrder_FungibleIdaYVuelta(t *testing.T) {
	r := newTestReducer()
	s, order := placedOrder(t, r, inventory.NewState(testCompanyID), 3)

	s, err := r.MarkFungible(s, order.ID)
	require.NoError(t, err)
	o, _ := s.Order(order.ID)
	assert.Equal(t, entity.OrderStatusFungible, o.Status)

	_, err = r.CancelOrder(s, order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	s, err = r.UnmarkFungible(s, order.ID)
	require.NoError(t, err)
	o, _ = s.Order(order.ID)
	assert.Equal(t, entity.OrderStatusPlaced, o.Status)
	assert.Empty(t, s.Ledger, "la reclasificación no afecta inventario")
}

func TestOrder_CanceladoEsTerminal(t *testing.T) {
	r := newTestReducer()
	s, order := placedOrder(t, r, inventory.NewState(testCompanyID), 3)
	s, err := r.CancelOrder(s, order.ID)
	require.NoError(t, err)

	_, err = r.MarkFungible(s, order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = r.UnmarkFungible(s, order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestCreateOrder_Validaciones(t *testing.T) {
	r := newTestReducer()
	s := inventory.NewState(testCompanyID)

	_, _, err := r.CreateOrder(s, inventory.CreateOrderCommand{Number: "OC-1", Items: []entity.OrderItem{{ProductName: "X", Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrValidation, "proveedor requerido")

	_, _, err = r.CreateOrder(s, inventory.CreateOrderCommand{Number: "OC-1", Supplier: "P", Items: []entity.OrderItem{{ProductName: "X", Quantity: 0}}})
	assert.ErrorIs(t, err, domain.ErrValidation, "cantidad positiva")

	_, _, err = r.CreateOrder(s, inventory.CreateOrderCommand{Number: "OC-1", Supplier: "P", Items: []entity.OrderItem{{ProductID: "nada", Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrder_Total(t *testing.T) {
	o := entity.Order{Items: []entity.OrderItem{
		{Quantity: 2, Price: decimal.RequireFromString("10.50")},
		{Quantity: 3, Price: decimal.NewFromInt(4)},
	}}
	assert.True(t, decimal.RequireFromString("33").Equal(o.Total()))
}
