package inventory_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testCompanyID = "00000000-0000-0000-0000-000000000002"
	testActor     = "00000000-0000-0000-0000-000000000001"
)

var testNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

// newTestReducer reloj fijo e IDs secuenciales para resultados deterministas.
func newTestReducer(opts ...inventory.Option) *inventory.Reducer {
	seq := 0
	base := []inventory.Option{
		inventory.WithClock(func() time.Time { return testNow }),
		inventory.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id-%04d", seq)
		}),
	}
	return inventory.NewReducer(append(base, opts...)...)
}

// withProduct registra un producto serializado y devuelve el nuevo estado y su ID.
func withProduct(t *testing.T, r *inventory.Reducer, s *inventory.State, name string, serialized bool) (*inventory.State, string) {
	t.Helper()
	next, p, err := r.RegisterProduct(s, inventory.ProductSpec{Name: name, SKU: "SKU-" + name, Serialized: serialized, Company: "ACME", Warehouse: "Principal"})
	require.NoError(t, err)
	return next, p.ID
}

func specs(n int, loc entity.Location) []inventory.UnitSpec {
	out := make([]inventory.UnitSpec, n)
	for i := range out {
		out[i] = inventory.UnitSpec{Location: loc}
	}
	return out
}

// withUnits crea n unidades del producto en almacén.
func withUnits(t *testing.T, r *inventory.Reducer, s *inventory.State, productID string, n int) *inventory.State {
	t.Helper()
	next, _, err := r.CreateUnits(s, inventory.CreateUnitsCommand{
		ProductID: productID,
		Units:     specs(n, entity.LocationAlmacen),
		Reason:    "carga inicial",
		Actor:     testActor,
	})
	require.NoError(t, err)
	return next
}

// placedOrder crea una orden efectuada con una línea "Portátil" de qty unidades.
func placedOrder(t *testing.T, r *inventory.Reducer, s *inventory.State, qty int) (*inventory.State, entity.Order) {
	t.Helper()
	next, o, err := r.CreateOrder(s, inventory.CreateOrderCommand{
		Number:   "OC-000001",
		Supplier: "Proveedor S.A.S.",
		Company:  "ACME",
		Items: []entity.OrderItem{
			{ProductName: "Portátil", Quantity: qty, Price: decimal.NewFromInt(2_500_000)},
		},
		Actor: testActor,
	})
	require.NoError(t, err)
	return next, o
}

func stockOf(t *testing.T, s *inventory.State, productID string) int {
	t.Helper()
	p, ok := s.Product(productID)
	require.True(t, ok, "el producto %s debe existir", productID)
	return p.Stock
}
