package repository_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

func order(supplier string, status entity.OrderStatus, qty int, price string) entity.Order {
	return entity.Order{
		Supplier: supplier,
		Status:   status,
		Items:    []entity.OrderItem{{ProductName: "X", Quantity: qty, Price: decimal.RequireFromString(price)}},
	}
}

func TestSupplierSpendOf_AgrupaYExcluyeCanceladas(t *testing.T) {
	got := repository.SupplierSpendOf([]entity.Order{
		order("Papelería Central", entity.OrderStatusPlaced, 3, "10.50"),
		order("Tecnología S.A.S.", entity.OrderStatusReceived, 2, "1500"),
		order("Papelería Central", entity.OrderStatusFungible, 1, "4.25"),
		order("Papelería Central", entity.OrderStatusCancelled, 100, "99"),
	})

	require.Len(t, got, 2)
	assert.Equal(t, "Tecnología S.A.S.", got[0].Supplier)
	assert.True(t, decimal.NewFromInt(3000).Equal(got[0].Total))
	assert.Equal(t, "Papelería Central", got[1].Supplier)
	assert.Equal(t, 2, got[1].Orders)
	assert.True(t, decimal.RequireFromString("35.75").Equal(got[1].Total))
}

func TestSupplierSpendOf_SinOrdenes(t *testing.T) {
	assert.Empty(t, repository.SupplierSpendOf(nil))
}
