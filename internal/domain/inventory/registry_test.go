package inventory_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Tests CreateUnits
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateUnits_LoteEmiteUnaSolaEntrada(t *testing.T) {
	r := newTestReducer()
	s, pid := withProduct(t, r, inventory.NewState(testCompanyID), "Monitor", true)

	next, eff, err := r.CreateUnits(s, inventory.CreateUnitsCommand{
		ProductID: pid,
		Units:     specs(5, entity.LocationBodega),
		Reference: "LOTE-1",
		Actor:     testActor,
	})
	require.NoError(t, err)

	require.Len(t, eff.Ledger, 1, "un lote de N unidades debe generar exactamente una entrada")
	e := eff.Ledger[0]
	assert.Equal(t, entity.StockActionAdd, e.Action)
	assert.Equal(t, 0, e.PreviousStock)
	assert.Equal(t, 5, e.NewStock)
	assert.Equal(t, 5, e.Quantity)
	assert.Equal(t, "LOTE-1", e.Reference)
	assert.Equal(t, "Monitor", e.ProductName)

	assert.Equal(t, 5, stockOf(t, next, pid))
	assert.Equal(t, 5, next.LiveUnitCount(pid))
	for _, u := range next.UnitsOf(pid, false) {
		assert.Equal(t, entity.UnitStatusAvailable, u.Status, "el estado por defecto es available")
		assert.Equal(t, entity.UnitActive, u.Lifecycle)
	}
	assert.Empty(t, s.Ledger, "el estado original no debe modificarse")
	assert.Equal(t, 0, stockOf(t, s, pid))
}

func TestCreateUnits_UbicacionInvalida_NoAplicaNada(t *testing.T) {
	r := newTestReducer()
	s, pid := withProduct(t, r, inventory.NewState(testCompanyID), "Monitor", true)

	units := specs(3, entity.LocationAlmacen)
	units[2].Location = "azotea"
	next, eff, err := r.CreateUnits(s, inventory.CreateUnitsCommand{ProductID: pid, Units: units, Actor: testActor})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
	assert.Same(t, s, next, "ante error se devuelve el estado original")
	assert.Empty(t, eff.Ledger)
	assert.Equal(t, 0, next.LiveUnitCount(pid))
}

func TestCreateUnits_SerialRepetido(t *testing.T) {
	r := newTestReducer()
	s, pid := withProduct(t, r, inventory.NewState(testCompanyID), "Monitor", true)
	units := specs(2, entity.LocationAlmacen)
	units[0].SerialNumber = "SN-1"
	units[1].SerialNumber = "sn-1"

	_, _, err := r.CreateUnits(s, inventory.CreateUnitsCommand{ProductID: pid, Units: units, Actor: testActor})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateUnits_ProductoInexistente(t *testing.T) {
	r := newTestReducer()
	_, _, err := r.CreateUnits(inventory.NewState(testCompanyID), inventory.CreateUnitsCommand{
		ProductID: "no-existe", Units: specs(1, entity.LocationAlmacen), Actor: testActor,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests RelocateUnits
// ──────────────────────────────────────────────────────────────────────────────

func TestRelocateUnits_UnMovimientoPorUnidadQueCambia(t *testing.T) {
	r := newTestReducer()
	s, pid := withProduct(t, r, inventory.NewState(testCompanyID), "Silla", true)
	s = withUnits(t, r, s, pid, 3)
	units := s.UnitsOf(pid, false)

	next, eff, err := r.RelocateUnits(s, inventory.RelocateUnitsCommand{
		ProductID: pid,
		Moves: []inventory.UnitMove{
			{UnitID: units[0].ID, To: entity.LocationOficina},
			{UnitID: units[1].ID, To: entity.LocationAlmacen}, // sin cambio
			{UnitID: units[2].ID, To: entity.LocationOficina},
		},
		Actor:      testActor,
		EmployeeID: "emp-7",
	})
	require.NoError(t, err)

	require.Len(t, eff.Movements, 2)
	for _, m := range eff.Movements {
		assert.Equal(t, entity.LocationAlmacen, m.FromLocation)
		assert.Equal(t, entity.LocationOficina, m.ToLocation)
		assert.Equal(t, "emp-7", m.EmployeeID)
	}
	assert.Len(t, next.Ledger, len(s.Ledger), "trasladar no genera historial de stock")
	assert.Equal(t, 3, stockOf(t, next, pid))
	assert.Equal(t, entity.LocationOficina, next.UnitsOf(pid, false)[0].Location)
}

func TestRelocateUnits_UnidadDadaDeBaja(t *testing.T) {
	r := newTestReducer()
	s, pid := withProduct(t, r, inventory.NewState(testCompanyID), "Silla", true)
	s = withUnits(t, r, s, pid, 1)
	uid := s.UnitsOf(pid, false)[0].ID
	s, _, err := r.SoftDeleteUnit(s, pid, uid, "dañada", testActor)
	require.NoError(t, err)

	_, _, err = r.RelocateUnits(s, inventory.RelocateUnitsCommand{
		ProductID: pid, Moves: []inventory.UnitMove{{UnitID: uid, To: entity.LocationTaller}}, Actor: testActor,
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests baja lógica / restauración / eliminación definitiva
// ──────────────────────────────────────────────────────────────────────────────

func TestSetUnitStatus_NoTocaStockNiHistorial(t *testing.T) {
	r := newTestReducer()
	s, pid := withProduct(t, r, inventory.NewState(testCompanyID), "Proyector", true)
	s = withUnits(t, r, s, pid, 2)
	unit := s.UnitsOf(pid, false)[0]

	next, err := r.SetUnitStatus(s, pid, unit.ID, entity.UnitStatusMaintenance)
	require.NoError(t, err)

	assert.Equal(t, entity.UnitStatusMaintenance, next.UnitsOf(pid, false)[0].Status)
	assert.Equal(t, 2, stockOf(t, next, pid))
	assert.Len(t, next.Ledger, len(s.Ledger))
	assert.Equal(t, entity.UnitStatusAvailable, s.UnitsOf(pid, false)[0].Status)

	_, err = r.SetUnitStatus(s, pid, unit.ID, entity.UnitStatus("rota"))
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestSoftDeleteYRestore_StockVuelveAlOriginal(t *testing.T) {
	r := newTestReducer()
	s, pid := withProduct(t, r, inventory.NewState(testCompanyID), "Taladro", true)
	s = withUnits(t, r, s, pid, 4)
	uid := s.UnitsOf(pid, false)[1].ID
	before := len(s.Ledger)

	s, eff, err := r.SoftDeleteUnit(s, pid, uid, "pérdida", testActor)
	require.NoError(t, err)
	require.Len(t, eff.Ledger, 1)
	assert.Equal(t, entity.StockActionRemove, eff.Ledger[0].Action)
	assert.Equal(t, uid, eff.Ledger[0].Reference)
	assert.Equal(t, 3, stockOf(t, s, pid))

	s, eff, err = r.RestoreUnit(s, pid, uid, testActor)
	require.NoError(t, err)
	assert.Empty(t, eff.Ledger, "restaurar no emite historial por defecto")
	assert.Equal(t, 4, stockOf(t, s, pid))
	assert.Equal(t, 4, s.LiveUnitCount(pid))

	removes := s.QueryLedger(inventory.LedgerFilter{ProductID: pid, Action: entity.StockActionRemove})
	assert.Len(t, removes, 1, "debe existir exactamente una entrada remove")
	assert.Len(t, s.Ledger, before+1)
}

func TestRestoreUnit_ConAuditoria(t *testing.T) {
	r := newTestReducer(inventory.WithRestoreAudit(true))
	s, pid := withProduct(t, r, inventory.NewState(testCompanyID), "Taladro", true)
	s = withUnits(t, r, s, pid, 1)
	uid := s.UnitsOf(pid, false)[0].ID
	s, _, err := r.SoftDeleteUnit(s, pid, uid, "pérdida", testActor)
	require.NoError(t, err)

	s, eff, err := r.RestoreUnit(s, pid, uid, testActor)
	require.NoError(t, err)
	require.Len(t, eff.Ledger, 1)
	assert.Equal(t, entity.StockActionAdjust, eff.Ledger[0].Action)
	assert.Equal(t, 1, eff.Ledger[0].Quantity)
	assert.Equal(t, 1, stockOf(t, s, pid))
}

func TestSoftDeleteUnit_SinMotivo(t *testing.T) {
	r := newTestReducer()
	s, pid := withProduct(t, r, inventory.NewState(testCompanyID), "Taladro", true)
	s = withUnits(t, r, s, pid, 1)

	_, _, err := r.SoftDeleteUnit(s, pid, s.UnitsOf(pid, false)[0].ID, "  ", testActor)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestPermanentlyDeleteUnit_SoloDadasDeBaja(t *testing.T) {
	r := newTestReducer()
	s, pid := withProduct(t, r, inventory.NewState(testCompanyID), "Taladro", true)
	s = withUnits(t, r, s, pid, 2)
	uid := s.UnitsOf(pid, false)[0].ID

	_, err := r.PermanentlyDeleteUnit(s, pid, uid)
	assert.ErrorIs(t, err, domain.ErrInvariantViolation, "una unidad activa no se puede eliminar")

	s, _, err = r.SoftDeleteUnit(s, pid, uid, "obsoleta", testActor)
	require.NoError(t, err)
	next, err := r.PermanentlyDeleteUnit(s, pid, uid)
	require.NoError(t, err)

	assert.Len(t, next.UnitsOf(pid, true), 1)
	assert.Equal(t, 1, stockOf(t, next, pid), "eliminar definitivamente no cambia el stock")
	assert.NotEmpty(t, next.QueryLedger(inventory.LedgerFilter{Reference: uid}), "el historial conserva la referencia")
	assert.Len(t, s.UnitsOf(pid, true), 2, "el estado previo no se altera")
}

func TestSoftDeleteProduct_ConUnidadesActivas(t *testing.T) {
	r := newTestReducer()
	s, pid := withProduct(t, r, inventory.NewState(testCompanyID), "Mesa", true)
	s = withUnits(t, r, s, pid, 1)

	_, err := r.SoftDeleteProduct(s, pid)
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)

	s, _, err = r.SoftDeleteUnit(s, pid, s.UnitsOf(pid, false)[0].ID, "retiro", testActor)
	require.NoError(t, err)
	s, err = r.SoftDeleteProduct(s, pid)
	require.NoError(t, err)
	p, _ := s.Product(pid)
	assert.True(t, p.IsDeleted())

	s, err = r.RestoreProduct(s, pid)
	require.NoError(t, err)
	p, _ = s.Product(pid)
	assert.False(t, p.IsDeleted())
}

// La igualdad stock == unidades activas se mantiene tras cualquier secuencia de operaciones.
func TestRegistry_StockIgualUnidadesActivas(t *testing.T) {
	r := newTestReducer()
	s, pid := withProduct(t, r, inventory.NewState(testCompanyID), "Cámara", true)
	s = withUnits(t, r, s, pid, 6)

	units := s.UnitsOf(pid, false)
	steps := []func(*inventory.State) (*inventory.State, error){
		func(st *inventory.State) (*inventory.State, error) {
			next, _, err := r.SoftDeleteUnit(st, pid, units[0].ID, "robo", testActor)
			return next, err
		},
		func(st *inventory.State) (*inventory.State, error) {
			next, _, err := r.RelocateUnits(st, inventory.RelocateUnitsCommand{
				ProductID: pid, Moves: []inventory.UnitMove{{UnitID: units[1].ID, To: entity.LocationTransito}}, Actor: testActor,
			})
			return next, err
		},
		func(st *inventory.State) (*inventory.State, error) {
			next, _, err := r.SoftDeleteUnit(st, pid, units[2].ID, "daño", testActor)
			return next, err
		},
		func(st *inventory.State) (*inventory.State, error) {
			next, _, err := r.RestoreUnit(st, pid, units[0].ID, testActor)
			return next, err
		},
		func(st *inventory.State) (*inventory.State, error) {
			next, _, err := r.CreateUnits(st, inventory.CreateUnitsCommand{ProductID: pid, Units: specs(2, entity.LocationTaller), Actor: testActor})
			return next, err
		},
		func(st *inventory.State) (*inventory.State, error) {
			return r.PermanentlyDeleteUnit(st, pid, units[2].ID)
		},
	}
	for i, step := range steps {
		var err error
		s, err = step(s)
		require.NoError(t, err, "paso %d", i)
		assert.Equal(t, s.LiveUnitCount(pid), stockOf(t, s, pid), "paso %d", i)
		assert.Empty(t, inventory.CheckConsistency(s), "paso %d", i)
	}
	assert.Equal(t, 7, stockOf(t, s, pid))
}

func TestAdjustStock_ProductoSerializado(t *testing.T) {
	r := newTestReducer()
	s, pid := withProduct(t, r, inventory.NewState(testCompanyID), "Cámara", true)
	_, _, err := r.AdjustStock(s, pid, 10, "conteo", testActor)
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)
}

func TestAdjustStock_NoSerializado(t *testing.T) {
	r := newTestReducer()
	s, pid := withProduct(t, r, inventory.NewState(testCompanyID), "Tornillos", false)

	s, eff, err := r.AdjustStock(s, pid, 120, "conteo físico", testActor)
	require.NoError(t, err)
	require.Len(t, eff.Ledger, 1)
	assert.Equal(t, 120, eff.Ledger[0].Quantity)

	s, eff, err = r.AdjustStock(s, pid, 100, "merma", testActor)
	require.NoError(t, err)
	assert.Equal(t, 20, eff.Ledger[0].Quantity, "la cantidad es el valor absoluto de la diferencia")
	assert.Equal(t, 100, stockOf(t, s, pid))

	_, _, err = r.AdjustStock(s, pid, -1, "error", testActor)
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)
}
