package inventory

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// State agregado en memoria de una empresa: fuente de verdad durante la sesión.
// Los reductores nunca modifican el State recibido; trabajan sobre un Clone.
type State struct {
	CompanyID     string
	Products      []entity.Product
	Units         map[string][]entity.ProductUnit
	Ledger        []entity.StockHistoryEntry
	Movements     []entity.StockMovement
	Orders        []entity.Order
	PendingStocks []entity.PendingStock
}

// NewState crea un estado vacío para la empresa.
func NewState(companyID string) *State {
	return &State{CompanyID: companyID, Units: make(map[string][]entity.ProductUnit)}
}

// Clone copia el estado. Ledger y Movements comparten el arreglo base con capacidad recortada:
// sus registros son inmutables y cualquier append reasigna.
func (s *State) Clone() *State {
	next := &State{
		CompanyID: s.CompanyID,
		Products:  append([]entity.Product(nil), s.Products...),
		Units:     make(map[string][]entity.ProductUnit, len(s.Units)),
		Ledger:    s.Ledger[:len(s.Ledger):len(s.Ledger)],
		Movements: s.Movements[:len(s.Movements):len(s.Movements)],
		Orders:    make([]entity.Order, len(s.Orders)),
	}
	for pid, units := range s.Units {
		next.Units[pid] = append([]entity.ProductUnit(nil), units...)
	}
	for i, o := range s.Orders {
		o.Items = append([]entity.OrderItem(nil), o.Items...)
		next.Orders[i] = o
	}
	if s.PendingStocks != nil {
		next.PendingStocks = make([]entity.PendingStock, len(s.PendingStocks))
		for i, p := range s.PendingStocks {
			next.PendingStocks[i] = clonePending(p)
		}
	}
	return next
}

func clonePending(p entity.PendingStock) entity.PendingStock {
	items := make([]entity.PendingStockItem, len(p.Items))
	for i, it := range p.Items {
		it.Arrivals = append([]entity.Arrival(nil), it.Arrivals...)
		items[i] = it
	}
	p.Items = items
	return p
}

func (s *State) productIndex(id string) int {
	for i := range s.Products {
		if s.Products[i].ID == id {
			return i
		}
	}
	return -1
}

// productByName busca un producto vigente por nombre, sin distinguir mayúsculas.
func (s *State) productByName(name string) int {
	name = strings.TrimSpace(name)
	for i := range s.Products {
		if !s.Products[i].IsDeleted() && strings.EqualFold(s.Products[i].Name, name) {
			return i
		}
	}
	return -1
}

func (s *State) orderIndex(id string) int {
	for i := range s.Orders {
		if s.Orders[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *State) pendingIndex(id string) int {
	for i := range s.PendingStocks {
		if s.PendingStocks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *State) pendingIndexByOrder(orderID string) int {
	for i := range s.PendingStocks {
		if s.PendingStocks[i].OrderID == orderID {
			return i
		}
	}
	return -1
}

func unitIndex(units []entity.ProductUnit, id string) int {
	for i := range units {
		if units[i].ID == id {
			return i
		}
	}
	return -1
}

// Product devuelve una copia del producto o false si no existe.
func (s *State) Product(id string) (entity.Product, bool) {
	if i := s.productIndex(id); i >= 0 {
		return s.Products[i], true
	}
	return entity.Product{}, false
}

// Order devuelve una copia de la orden o false si no existe.
func (s *State) Order(id string) (entity.Order, bool) {
	if i := s.orderIndex(id); i >= 0 {
		return s.Orders[i], true
	}
	return entity.Order{}, false
}

// PendingStock devuelve una copia del pendiente o false si no existe.
func (s *State) PendingStock(id string) (entity.PendingStock, bool) {
	if i := s.pendingIndex(id); i >= 0 {
		return clonePending(s.PendingStocks[i]), true
	}
	return entity.PendingStock{}, false
}

// UnitsOf devuelve las unidades del producto; includeTombstoned incluye las dadas de baja.
func (s *State) UnitsOf(productID string, includeTombstoned bool) []entity.ProductUnit {
	out := make([]entity.ProductUnit, 0, len(s.Units[productID]))
	for _, u := range s.Units[productID] {
		if includeTombstoned || u.Active() {
			out = append(out, u)
		}
	}
	return out
}

// LiveUnitCount número de unidades activas del producto.
func (s *State) LiveUnitCount(productID string) int {
	n := 0
	for i := range s.Units[productID] {
		if s.Units[productID][i].Active() {
			n++
		}
	}
	return n
}

// StateFromSnapshot reconstruye el estado desde lo persistido.
func StateFromSnapshot(snap *repository.Snapshot) *State {
	st := NewState(snap.CompanyID)
	st.Products = append(st.Products, snap.Products...)
	for pid, units := range snap.Units {
		st.Units[pid] = append([]entity.ProductUnit(nil), units...)
	}
	st.Ledger = append(st.Ledger, snap.Ledger...)
	st.Movements = append(st.Movements, snap.Movements...)
	st.Orders = append(st.Orders, snap.Orders...)
	for _, p := range snap.PendingStocks {
		st.PendingStocks = append(st.PendingStocks, clonePending(p))
	}
	return st
}

// ToSnapshot produce la forma persistida con la versión indicada.
func (s *State) ToSnapshot(version int64) *repository.Snapshot {
	c := s.Clone()
	return &repository.Snapshot{
		CompanyID:     c.CompanyID,
		Version:       version,
		Products:      c.Products,
		Units:         c.Units,
		Ledger:        append([]entity.StockHistoryEntry(nil), c.Ledger...),
		Movements:     append([]entity.StockMovement(nil), c.Movements...),
		Orders:        c.Orders,
		PendingStocks: c.PendingStocks,
	}
}

// Effects registros emitidos por un comando (ya agregados al nuevo estado).
type Effects struct {
	Ledger          []entity.StockHistoryEntry
	Movements       []entity.StockMovement
	ResolvedPending []string
}

func (e *Effects) merge(o Effects) {
	e.Ledger = append(e.Ledger, o.Ledger...)
	e.Movements = append(e.Movements, o.Movements...)
	e.ResolvedPending = append(e.ResolvedPending, o.ResolvedPending...)
}

// Reducer aplica comandos como funciones puras: (estado, comando) -> (nuevo estado, efectos).
type Reducer struct {
	now          func() time.Time
	newID        func() string
	auditRestore bool
}

// Option configura el Reducer.
type Option func(*Reducer)

// WithClock reemplaza el reloj (útil en pruebas).
func WithClock(now func() time.Time) Option {
	return func(r *Reducer) { r.now = now }
}

// WithIDGenerator reemplaza el generador de IDs.
func WithIDGenerator(fn func() string) Option {
	return func(r *Reducer) { r.newID = fn }
}

// WithRestoreAudit hace que restaurar una unidad emita una entrada "adjust" en el historial.
func WithRestoreAudit(enabled bool) Option {
	return func(r *Reducer) { r.auditRestore = enabled }
}

// NewReducer construye el reductor con reloj UTC y UUIDs por defecto.
func NewReducer(opts ...Option) *Reducer {
	r := &Reducer{
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}
