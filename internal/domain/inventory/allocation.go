package inventory

import (
	"fmt"
	"sort"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ReceiptLine lo recibido de una línea de la orden. Las líneas omitidas se toman como recibido 0.
type ReceiptLine struct {
	ItemIndex        int
	ReceivedQuantity int
	Arrivals         []entity.Arrival
	// Clasificación para productos que aún no existen en el catálogo.
	Category   string
	Department string
	Serialized bool
	SKU        string
	// Ubicación y números de serie de las unidades que se crean.
	Location      entity.Location
	SerialNumbers []string
}

// ConfirmReceiptCommand confirmación de recepción de una orden efectuada.
type ConfirmReceiptCommand struct {
	OrderID string
	Lines   []ReceiptLine
	Actor   string
}

// ConfirmReceiptResult resultado de la confirmación.
type ConfirmReceiptResult struct {
	Order        entity.Order
	PendingStock *entity.PendingStock
	Created      []entity.Product
}

// ConfirmReceipt valida todas las líneas antes de mutar: crea unidades por lo recibido,
// pasa la orden a recibido y registra un PendingStock si queda cantidad por llegar.
func (r *Reducer) ConfirmReceipt(s *State, cmd ConfirmReceiptCommand) (*State, Effects, ConfirmReceiptResult, error) {
	oi := s.orderIndex(cmd.OrderID)
	if oi < 0 {
		return s, Effects{}, ConfirmReceiptResult{}, fmt.Errorf("%w: orden %s", domain.ErrNotFound, cmd.OrderID)
	}
	order := s.Orders[oi]
	if !CanTransition(order.Status, entity.OrderStatusReceived) {
		return s, Effects{}, ConfirmReceiptResult{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, order.Status, entity.OrderStatusReceived)
	}
	if cmd.Actor == "" {
		return s, Effects{}, ConfirmReceiptResult{}, fmt.Errorf("%w: usuario requerido", domain.ErrValidation)
	}

	lines := make([]ReceiptLine, len(order.Items))
	seen := make(map[int]bool, len(cmd.Lines))
	for _, l := range cmd.Lines {
		if l.ItemIndex < 0 || l.ItemIndex >= len(order.Items) {
			return s, Effects{}, ConfirmReceiptResult{}, fmt.Errorf("%w: línea %d fuera de rango", domain.ErrValidation, l.ItemIndex)
		}
		if seen[l.ItemIndex] {
			return s, Effects{}, ConfirmReceiptResult{}, fmt.Errorf("%w: línea %d repetida", domain.ErrValidation, l.ItemIndex)
		}
		seen[l.ItemIndex] = true
		lines[l.ItemIndex] = l
	}
	for i, it := range order.Items {
		l := &lines[i]
		l.ItemIndex = i
		if l.ReceivedQuantity < 0 {
			return s, Effects{}, ConfirmReceiptResult{}, fmt.Errorf("%w: %q recibido %d", domain.ErrValidation, it.ProductName, l.ReceivedQuantity)
		}
		if l.ReceivedQuantity > it.Quantity {
			return s, Effects{}, ConfirmReceiptResult{}, fmt.Errorf("%w: %q recibido %d excede %d", domain.ErrInvariantViolation, it.ProductName, l.ReceivedQuantity, it.Quantity)
		}
		if _, err := validArrivals(l.Arrivals, it.Quantity-l.ReceivedQuantity); err != nil {
			return s, Effects{}, ConfirmReceiptResult{}, fmt.Errorf("%w (%q recibido %d de %d)", err, it.ProductName, l.ReceivedQuantity, it.Quantity)
		}
		if l.ReceivedQuantity > 0 && !l.Location.Valid() {
			return s, Effects{}, ConfirmReceiptResult{}, fmt.Errorf("%w: %q ubicación %q inválida", domain.ErrValidation, it.ProductName, l.Location)
		}
		if len(l.SerialNumbers) > l.ReceivedQuantity {
			return s, Effects{}, ConfirmReceiptResult{}, fmt.Errorf("%w: %q tiene más seriales que unidades", domain.ErrValidation, it.ProductName)
		}
	}

	next := s.Clone()
	var (
		eff    Effects
		result ConfirmReceiptResult
	)
	pending := entity.PendingStock{
		CompanyID: next.CompanyID,
		OrderID:   order.ID,
		OrderNum:  order.Number,
		Supplier:  order.Supplier,
		Company:   order.Company,
		Warehouse: order.Warehouse,
		Date:      order.Date,
	}
	for i, it := range order.Items {
		l := lines[i]
		idx, created := r.resolveProduct(next, order, it, l)
		if created {
			result.Created = append(result.Created, next.Products[idx])
		}
		next.Orders[oi].Items[i].ProductID = next.Products[idx].ID

		if l.ReceivedQuantity > 0 {
			entry, err := r.createUnits(next, idx, unitSpecs(l.ReceivedQuantity, l.SKU, l.Location, l.SerialNumbers),
				entity.StockActionOrderReceived, "recepción de orden", reference(order), cmd.Actor)
			if err != nil {
				return s, Effects{}, ConfirmReceiptResult{}, err
			}
			eff.Ledger = append(eff.Ledger, entry)
		}
		pending.Items = append(pending.Items, entity.PendingStockItem{
			ProductID:        next.Products[idx].ID,
			ProductName:      it.ProductName,
			OrderedQuantity:  it.Quantity,
			ReceivedQuantity: l.ReceivedQuantity,
			PendingQuantity:  it.Quantity - l.ReceivedQuantity,
			Arrivals:         keepArrivals(l.Arrivals),
		})
	}

	now := r.now()
	next.Orders[oi].Status = entity.OrderStatusReceived
	next.Orders[oi].UpdatedAt = now
	next.Orders[oi].ReceivedAt = &now
	result.Order = next.Orders[oi]

	if !pending.Resolved() {
		pending.UpdatedAt = now
		if pi := next.pendingIndexByOrder(order.ID); pi >= 0 {
			pending.ID = next.PendingStocks[pi].ID
			pending.CreatedAt = next.PendingStocks[pi].CreatedAt
			next.PendingStocks[pi] = pending
		} else {
			pending.ID = r.newID()
			pending.CreatedAt = now
			next.PendingStocks = append(next.PendingStocks, pending)
		}
		ps := clonePending(pending)
		result.PendingStock = &ps
	}
	return next, eff, result, nil
}

// resolveProduct busca el producto por ID, luego por nombre; si no existe lo crea en s.
func (r *Reducer) resolveProduct(s *State, order entity.Order, it entity.OrderItem, l ReceiptLine) (int, bool) {
	if it.ProductID != "" {
		if idx := s.productIndex(it.ProductID); idx >= 0 {
			return idx, false
		}
	}
	if idx := s.productByName(it.ProductName); idx >= 0 {
		return idx, false
	}
	r.newProduct(s, ProductSpec{
		Name:       it.ProductName,
		SKU:        l.SKU,
		Category:   l.Category,
		Department: l.Department,
		Company:    order.Company,
		Warehouse:  order.Warehouse,
		Serialized: l.Serialized,
	})
	return len(s.Products) - 1, true
}

// TopUpLine cantidad que llega ahora para una línea del pendiente.
type TopUpLine struct {
	ItemIndex     int
	Quantity      int
	Location      entity.Location
	SerialNumbers []string
}

// PendingReceipt recepción complementaria sobre un PendingStock.
type PendingReceipt struct {
	PendingStockID string
	Lines          []TopUpLine
	Actor          string
}

// ApplyPendingReceipt aplica una recepción complementaria. Si todas las líneas quedan en cero el pendiente se elimina.
func (r *Reducer) ApplyPendingReceipt(s *State, rc PendingReceipt) (*State, Effects, error) {
	next := s.Clone()
	eff, err := r.applyPending(next, rc)
	if err != nil {
		return s, Effects{}, err
	}
	return next, eff, nil
}

// ApplyPendingReceipts aplica varias recepciones como una sola unidad: si alguna falla no se aplica ninguna.
func (r *Reducer) ApplyPendingReceipts(s *State, rcs []PendingReceipt) (*State, Effects, error) {
	next := s.Clone()
	var eff Effects
	for _, rc := range rcs {
		e, err := r.applyPending(next, rc)
		if err != nil {
			return s, Effects{}, err
		}
		eff.merge(e)
	}
	return next, eff, nil
}

// applyPending muta s, que debe ser un clon propio del llamador.
func (r *Reducer) applyPending(s *State, rc PendingReceipt) (Effects, error) {
	pi := s.pendingIndex(rc.PendingStockID)
	if pi < 0 {
		return Effects{}, fmt.Errorf("%w: pendiente %s", domain.ErrNotFound, rc.PendingStockID)
	}
	if rc.Actor == "" {
		return Effects{}, fmt.Errorf("%w: usuario requerido", domain.ErrValidation)
	}
	if len(rc.Lines) == 0 {
		return Effects{}, fmt.Errorf("%w: la recepción no tiene líneas", domain.ErrValidation)
	}
	ps := &s.PendingStocks[pi]
	seen := make(map[int]bool, len(rc.Lines))
	for _, l := range rc.Lines {
		if l.ItemIndex < 0 || l.ItemIndex >= len(ps.Items) {
			return Effects{}, fmt.Errorf("%w: línea %d fuera de rango", domain.ErrValidation, l.ItemIndex)
		}
		if seen[l.ItemIndex] {
			return Effects{}, fmt.Errorf("%w: línea %d repetida", domain.ErrValidation, l.ItemIndex)
		}
		seen[l.ItemIndex] = true
		it := ps.Items[l.ItemIndex]
		if l.Quantity <= 0 {
			return Effects{}, fmt.Errorf("%w: %q cantidad %d", domain.ErrValidation, it.ProductName, l.Quantity)
		}
		if l.Quantity > it.PendingQuantity {
			return Effects{}, fmt.Errorf("%w: %q llegan %d con %d pendientes", domain.ErrInvariantViolation, it.ProductName, l.Quantity, it.PendingQuantity)
		}
		if !l.Location.Valid() {
			return Effects{}, fmt.Errorf("%w: %q ubicación %q inválida", domain.ErrValidation, it.ProductName, l.Location)
		}
		if len(l.SerialNumbers) > l.Quantity {
			return Effects{}, fmt.Errorf("%w: %q tiene más seriales que unidades", domain.ErrValidation, it.ProductName)
		}
		if s.productIndex(it.ProductID) < 0 {
			return Effects{}, fmt.Errorf("%w: producto %s", domain.ErrNotFound, it.ProductID)
		}
	}

	var eff Effects
	ref := ps.OrderNum
	if ref == "" {
		ref = ps.OrderID
	}
	for _, l := range rc.Lines {
		it := &ps.Items[l.ItemIndex]
		idx := s.productIndex(it.ProductID)
		entry, err := r.createUnits(s, idx, unitSpecs(l.Quantity, "", l.Location, l.SerialNumbers),
			entity.StockActionOrderReceived, "recepción complementaria", ref, rc.Actor)
		if err != nil {
			return Effects{}, err
		}
		eff.Ledger = append(eff.Ledger, entry)
		it.ReceivedQuantity += l.Quantity
		it.PendingQuantity -= l.Quantity
		it.Arrivals = consumeArrivals(it.Arrivals, l.Quantity, it.PendingQuantity)
	}
	ps.UpdatedAt = r.now()
	if ps.Resolved() {
		eff.ResolvedPending = append(eff.ResolvedPending, ps.ID)
		s.PendingStocks = append(s.PendingStocks[:pi:pi], s.PendingStocks[pi+1:]...)
	}
	return eff, nil
}

// UpdateArrivals reprograma las llegadas de una línea; el total programado no puede exceder lo pendiente.
func (r *Reducer) UpdateArrivals(s *State, pendingStockID string, itemIndex int, arrivals []entity.Arrival) (*State, error) {
	pi := s.pendingIndex(pendingStockID)
	if pi < 0 {
		return s, fmt.Errorf("%w: pendiente %s", domain.ErrNotFound, pendingStockID)
	}
	if itemIndex < 0 || itemIndex >= len(s.PendingStocks[pi].Items) {
		return s, fmt.Errorf("%w: línea %d fuera de rango", domain.ErrValidation, itemIndex)
	}
	it := s.PendingStocks[pi].Items[itemIndex]
	if _, err := validArrivals(arrivals, it.PendingQuantity); err != nil {
		return s, fmt.Errorf("%w (%q)", err, it.ProductName)
	}
	next := s.Clone()
	next.PendingStocks[pi].Items[itemIndex].Arrivals = keepArrivals(arrivals)
	next.PendingStocks[pi].UpdatedAt = r.now()
	return next, nil
}

// validArrivals suma las llegadas sin pasar de limit. Una cantidad negativa es entrada inválida;
// superar limit viola el cuadre del pendiente.
func validArrivals(arrivals []entity.Arrival, limit int) (int, error) {
	total := 0
	for _, a := range arrivals {
		if a.Quantity < 0 {
			return 0, fmt.Errorf("%w: llegada con cantidad %d", domain.ErrValidation, a.Quantity)
		}
		if a.Quantity > limit-total {
			return 0, fmt.Errorf("%w: llegadas programadas exceden %d por llegar", domain.ErrInvariantViolation, limit)
		}
		total += a.Quantity
	}
	return total, nil
}

// keepArrivals conserva solo las llegadas con cantidad positiva.
func keepArrivals(arrivals []entity.Arrival) []entity.Arrival {
	out := make([]entity.Arrival, 0, len(arrivals))
	for _, a := range arrivals {
		if a.Quantity > 0 {
			out = append(out, a)
		}
	}
	return out
}

// consumeArrivals descuenta qty de las llegadas programadas, primero las más antiguas y al final las sin fecha,
// y recorta el resultado para que no exceda remaining.
func consumeArrivals(arrivals []entity.Arrival, qty, remaining int) []entity.Arrival {
	sorted := keepArrivals(arrivals)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Date, sorted[j].Date
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	out := make([]entity.Arrival, 0, len(sorted))
	for _, a := range sorted {
		if qty > 0 {
			take := min(qty, a.Quantity)
			a.Quantity -= take
			qty -= take
		}
		if a.Quantity > 0 {
			out = append(out, a)
		}
	}
	total := 0
	for i := range out {
		if out[i].Quantity > remaining-total {
			out[i].Quantity = remaining - total
			out = keepArrivals(out[:i+1])
			break
		}
		total += out[i].Quantity
	}
	return out
}

func unitSpecs(n int, sku string, loc entity.Location, serials []string) []UnitSpec {
	specs := make([]UnitSpec, n)
	for i := range specs {
		specs[i] = UnitSpec{SKU: sku, Location: loc, Status: entity.UnitStatusAvailable}
		if i < len(serials) {
			specs[i].SerialNumber = serials[i]
		}
	}
	return specs
}

func reference(o entity.Order) string {
	if o.Number != "" {
		return o.Number
	}
	return o.ID
}

// PendingStocksList devuelve copias de los pendientes abiertos.
func (s *State) PendingStocksList() []entity.PendingStock {
	out := make([]entity.PendingStock, 0, len(s.PendingStocks))
	for _, p := range s.PendingStocks {
		out = append(out, clonePending(p))
	}
	return out
}
