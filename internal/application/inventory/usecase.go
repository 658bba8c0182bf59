package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// OrderNumberFormat formato del número de orden a partir de la secuencia.
const OrderNumberFormat = "OC-%06d"

// ──────────────────────────────────────────────────────────────────────────────
// Productos y unidades
// ──────────────────────────────────────────────────────────────────────────────

// RegisterProduct agrega un producto del catálogo; sin categoría se asigna la categoría por defecto.
func (e *Engine) RegisterProduct(ctx context.Context, companyID string, in dto.RegisterProductRequest) (*entity.Product, error) {
	category, err := e.categoryOrDefault(ctx, companyID, in.Category)
	if err != nil {
		return nil, err
	}
	if err := e.checkDepartment(ctx, companyID, in.Department); err != nil {
		return nil, err
	}
	var created entity.Product
	_, err = e.mutate(ctx, companyID, func(s *inventory.State) (*inventory.State, inventory.Effects, error) {
		next, p, err := e.reducer.RegisterProduct(s, inventory.ProductSpec{
			Name:       in.Name,
			SKU:        in.SKU,
			Category:   category,
			Department: in.Department,
			Company:    in.Company,
			Warehouse:  in.Warehouse,
			Serialized: in.Serialized,
			MinStock:   in.MinStock,
		})
		created = p
		return next, inventory.Effects{}, err
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// CreateUnits alta de un lote de unidades con una sola entrada de historial.
func (e *Engine) CreateUnits(ctx context.Context, companyID, userID, productID string, in dto.CreateUnitsRequest) (inventory.Effects, error) {
	specs := make([]inventory.UnitSpec, 0, len(in.Units))
	for i, u := range in.Units {
		loc, err := parseLocation(u.Location)
		if err != nil {
			return inventory.Effects{}, fmt.Errorf("unidad %d: %w", i+1, err)
		}
		specs = append(specs, inventory.UnitSpec{
			SKU:          u.SKU,
			SerialNumber: u.SerialNumber,
			Location:     loc,
			Status:       entity.UnitStatus(u.Status),
		})
	}
	reason := in.Reason
	if reason == "" {
		reason = "alta de unidades"
	}
	return e.mutate(ctx, companyID, func(s *inventory.State) (*inventory.State, inventory.Effects, error) {
		return e.reducer.CreateUnits(s, inventory.CreateUnitsCommand{
			ProductID: productID,
			Units:     specs,
			Reason:    reason,
			Reference: in.Reference,
			Actor:     userID,
		})
	})
}

// RelocateUnits traslada unidades; registra un movimiento por unidad que cambia de ubicación.
func (e *Engine) RelocateUnits(ctx context.Context, companyID, userID, productID string, in dto.RelocateUnitsRequest) (inventory.Effects, error) {
	if in.EmployeeID != "" && e.directory != nil {
		ok, err := e.directory.EmployeeExists(ctx, companyID, in.EmployeeID)
		if err != nil {
			return inventory.Effects{}, err
		}
		if !ok {
			return inventory.Effects{}, fmt.Errorf("%w: empleado %s", domain.ErrNotFound, in.EmployeeID)
		}
	}
	moves := make([]inventory.UnitMove, 0, len(in.Moves))
	for _, m := range in.Moves {
		loc, err := parseLocation(m.Location)
		if err != nil {
			return inventory.Effects{}, err
		}
		moves = append(moves, inventory.UnitMove{UnitID: m.UnitID, To: loc})
	}
	return e.mutate(ctx, companyID, func(s *inventory.State) (*inventory.State, inventory.Effects, error) {
		return e.reducer.RelocateUnits(s, inventory.RelocateUnitsCommand{
			ProductID:  productID,
			Moves:      moves,
			Actor:      userID,
			EmployeeID: in.EmployeeID,
		})
	})
}

// SetUnitStatus cambia el estado operativo de una unidad.
func (e *Engine) SetUnitStatus(ctx context.Context, companyID, productID, unitID string, in dto.UnitStatusRequest) error {
	return e.mutateState(ctx, companyID, func(s *inventory.State) (*inventory.State, error) {
		return e.reducer.SetUnitStatus(s, productID, unitID, entity.UnitStatus(in.Status))
	})
}

// SoftDeleteUnit baja lógica de una unidad.
func (e *Engine) SoftDeleteUnit(ctx context.Context, companyID, userID, productID, unitID string, in dto.SoftDeleteUnitRequest) (inventory.Effects, error) {
	return e.mutate(ctx, companyID, func(s *inventory.State) (*inventory.State, inventory.Effects, error) {
		return e.reducer.SoftDeleteUnit(s, productID, unitID, in.Reason, userID)
	})
}

// RestoreUnit reactiva una unidad dada de baja.
func (e *Engine) RestoreUnit(ctx context.Context, companyID, userID, productID, unitID string) (inventory.Effects, error) {
	return e.mutate(ctx, companyID, func(s *inventory.State) (*inventory.State, inventory.Effects, error) {
		return e.reducer.RestoreUnit(s, productID, unitID, userID)
	})
}

// PurgeUnit elimina definitivamente una unidad dada de baja.
func (e *Engine) PurgeUnit(ctx context.Context, companyID, productID, unitID string) error {
	return e.mutateState(ctx, companyID, func(s *inventory.State) (*inventory.State, error) {
		return e.reducer.PermanentlyDeleteUnit(s, productID, unitID)
	})
}

// SoftDeleteProduct baja lógica de un producto sin existencias.
func (e *Engine) SoftDeleteProduct(ctx context.Context, companyID, productID string) error {
	return e.mutateState(ctx, companyID, func(s *inventory.State) (*inventory.State, error) {
		return e.reducer.SoftDeleteProduct(s, productID)
	})
}

// RestoreProduct revierte la baja lógica de un producto.
func (e *Engine) RestoreProduct(ctx context.Context, companyID, productID string) error {
	return e.mutateState(ctx, companyID, func(s *inventory.State) (*inventory.State, error) {
		return e.reducer.RestoreProduct(s, productID)
	})
}

// AdjustStock ajuste manual de un producto no serializado.
func (e *Engine) AdjustStock(ctx context.Context, companyID, userID, productID string, in dto.AdjustStockRequest) (inventory.Effects, error) {
	if in.NewStock == nil {
		return inventory.Effects{}, fmt.Errorf("%w: new_stock requerido", domain.ErrValidation)
	}
	return e.mutate(ctx, companyID, func(s *inventory.State) (*inventory.State, inventory.Effects, error) {
		return e.reducer.AdjustStock(s, productID, *in.NewStock, in.Reason, userID)
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Órdenes
// ──────────────────────────────────────────────────────────────────────────────

// CreateOrder registra una orden efectuada con número tomado de la secuencia durable.
func (e *Engine) CreateOrder(ctx context.Context, companyID, userID string, in dto.CreateOrderRequest) (*entity.Order, error) {
	if e.directory != nil {
		ok, err := e.directory.SupplierExists(ctx, companyID, in.Supplier)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: proveedor %q", domain.ErrNotFound, in.Supplier)
		}
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: la orden no tiene líneas", domain.ErrValidation)
	}
	n, err := e.sequence.Next(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("número de orden: %w", err)
	}
	items := make([]entity.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, entity.OrderItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price,
		})
	}
	var date time.Time
	if in.Date != nil {
		date = *in.Date
	}
	var created entity.Order
	_, err = e.mutate(ctx, companyID, func(s *inventory.State) (*inventory.State, inventory.Effects, error) {
		next, o, err := e.reducer.CreateOrder(s, inventory.CreateOrderCommand{
			Number:    fmt.Sprintf(OrderNumberFormat, n),
			Supplier:  in.Supplier,
			Company:   in.Company,
			Warehouse: in.Warehouse,
			Date:      date,
			Items:     items,
			Actor:     userID,
		})
		created = o
		return next, inventory.Effects{}, err
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("company_id", companyID).Str("order_id", created.ID).Str("number", created.Number).Msg("orden creada")
	return &created, nil
}

// CancelOrder efectuado -> cancelado.
func (e *Engine) CancelOrder(ctx context.Context, companyID, orderID string) error {
	return e.mutateState(ctx, companyID, func(s *inventory.State) (*inventory.State, error) {
		return e.reducer.CancelOrder(s, orderID)
	})
}

// MarkFungible efectuado -> fungible.
func (e *Engine) MarkFungible(ctx context.Context, companyID, orderID string) error {
	return e.mutateState(ctx, companyID, func(s *inventory.State) (*inventory.State, error) {
		return e.reducer.MarkFungible(s, orderID)
	})
}

// UnmarkFungible fungible -> efectuado.
func (e *Engine) UnmarkFungible(ctx context.Context, companyID, orderID string) error {
	return e.mutateState(ctx, companyID, func(s *inventory.State) (*inventory.State, error) {
		return e.reducer.UnmarkFungible(s, orderID)
	})
}

// ConfirmReceipt confirma la recepción de una orden. Todo se valida antes de aplicar.
func (e *Engine) ConfirmReceipt(ctx context.Context, companyID, userID, orderID string, in dto.ConfirmReceiptRequest) (inventory.ConfirmReceiptResult, inventory.Effects, error) {
	lines := make([]inventory.ReceiptLine, 0, len(in.Lines))
	for _, l := range in.Lines {
		line := inventory.ReceiptLine{
			ItemIndex:        l.ItemIndex,
			ReceivedQuantity: l.ReceivedQuantity,
			Arrivals:         toArrivals(l.Arrivals),
			Category:         l.Category,
			Department:       l.Department,
			Serialized:       l.Serialized,
			SKU:              l.SKU,
			SerialNumbers:    l.SerialNumbers,
		}
		if l.ReceivedQuantity > 0 || l.Location != "" {
			loc, err := parseLocation(l.Location)
			if err != nil {
				return inventory.ConfirmReceiptResult{}, inventory.Effects{}, fmt.Errorf("línea %d: %w", l.ItemIndex, err)
			}
			line.Location = loc
		}
		if err := e.checkDepartment(ctx, companyID, l.Department); err != nil {
			return inventory.ConfirmReceiptResult{}, inventory.Effects{}, err
		}
		if line.Category == "" {
			category, err := e.categoryOrDefault(ctx, companyID, "")
			if err != nil {
				return inventory.ConfirmReceiptResult{}, inventory.Effects{}, err
			}
			line.Category = category
		}
		lines = append(lines, line)
	}

	var result inventory.ConfirmReceiptResult
	eff, err := e.mutate(ctx, companyID, func(s *inventory.State) (*inventory.State, inventory.Effects, error) {
		next, eff, res, err := e.reducer.ConfirmReceipt(s, inventory.ConfirmReceiptCommand{
			OrderID: orderID,
			Lines:   lines,
			Actor:   userID,
		})
		result = res
		return next, eff, err
	})
	if err != nil {
		return inventory.ConfirmReceiptResult{}, inventory.Effects{}, err
	}
	ev := e.log.Info().Str("company_id", companyID).Str("order_id", orderID).Int("ledger_entries", len(eff.Ledger))
	if result.PendingStock != nil {
		ev = ev.Str("pending_stock_id", result.PendingStock.ID)
	}
	ev.Msg("recepción de orden confirmada")
	return result, eff, nil
}

// UpdateArrivals reprograma las llegadas de una línea del pendiente.
func (e *Engine) UpdateArrivals(ctx context.Context, companyID, pendingStockID string, itemIndex int, in dto.UpdateArrivalsRequest) error {
	arrivals := toArrivals(in.Arrivals)
	return e.mutateState(ctx, companyID, func(s *inventory.State) (*inventory.State, error) {
		return e.reducer.UpdateArrivals(s, pendingStockID, itemIndex, arrivals)
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

// ListProducts productos de la empresa con su stock; includeDeleted incluye los dados de baja.
func (e *Engine) ListProducts(ctx context.Context, companyID string, includeDeleted bool) ([]dto.ProductResponse, error) {
	var out []dto.ProductResponse
	err := e.view(ctx, companyID, func(s *inventory.State) {
		out = make([]dto.ProductResponse, 0, len(s.Products))
		for _, p := range s.Products {
			if p.IsDeleted() && !includeDeleted {
				continue
			}
			out = append(out, toProductResponse(s, p))
		}
	})
	return out, err
}

// GetProduct un producto con su stock.
func (e *Engine) GetProduct(ctx context.Context, companyID, productID string) (*dto.ProductResponse, error) {
	var (
		out   dto.ProductResponse
		found bool
	)
	err := e.view(ctx, companyID, func(s *inventory.State) {
		var p entity.Product
		if p, found = s.Product(productID); found {
			out = toProductResponse(s, p)
		}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	return &out, nil
}

// ListUnits unidades de un producto.
func (e *Engine) ListUnits(ctx context.Context, companyID, productID string, includeTombstoned bool) ([]entity.ProductUnit, error) {
	var (
		out   []entity.ProductUnit
		found bool
	)
	err := e.view(ctx, companyID, func(s *inventory.State) {
		if _, found = s.Product(productID); found {
			out = s.UnitsOf(productID, includeTombstoned)
		}
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	return out, nil
}

// QueryLedger historial filtrado y paginado, del más reciente al más antiguo.
func (e *Engine) QueryLedger(ctx context.Context, companyID string, q dto.LedgerQuery) ([]entity.StockHistoryEntry, int, error) {
	filter := inventory.LedgerFilter{
		ProductID: q.ProductID,
		Action:    entity.StockAction(q.Action),
		Reference: q.Reference,
	}
	var err error
	if filter.From, err = parseTime(q.From); err != nil {
		return nil, 0, err
	}
	if filter.To, err = parseTime(q.To); err != nil {
		return nil, 0, err
	}
	q.DefaultPage()
	var all []entity.StockHistoryEntry
	if err := e.view(ctx, companyID, func(s *inventory.State) { all = s.QueryLedger(filter) }); err != nil {
		return nil, 0, err
	}
	return paginate(all, q.Offset, q.Limit), len(all), nil
}

// ListMovements traslados registrados (por producto si productID no es vacío).
func (e *Engine) ListMovements(ctx context.Context, companyID, productID string) ([]entity.StockMovement, error) {
	var out []entity.StockMovement
	err := e.view(ctx, companyID, func(s *inventory.State) { out = s.MovementsOf(productID) })
	return out, err
}

// GroupedMovements traslados agrupados por producto, minuto, ruta y empleado.
func (e *Engine) GroupedMovements(ctx context.Context, companyID, productID string) ([]inventory.MovementGroup, error) {
	movs, err := e.ListMovements(ctx, companyID, productID)
	if err != nil {
		return nil, err
	}
	return inventory.GroupMovements(movs), nil
}

// ListOrders órdenes de la empresa; status vacío devuelve todas.
func (e *Engine) ListOrders(ctx context.Context, companyID, status string) ([]dto.OrderResponse, error) {
	st := entity.OrderStatus(status)
	if st != "" && !st.Valid() {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrValidation, status)
	}
	var out []dto.OrderResponse
	err := e.view(ctx, companyID, func(s *inventory.State) {
		orders := s.OrdersByStatus(st)
		out = make([]dto.OrderResponse, 0, len(orders))
		for i := range orders {
			out = append(out, toOrderResponse(&orders[i]))
		}
	})
	return out, err
}

// GetOrder una orden por ID.
func (e *Engine) GetOrder(ctx context.Context, companyID, orderID string) (*dto.OrderResponse, error) {
	var (
		o     entity.Order
		found bool
	)
	if err := e.view(ctx, companyID, func(s *inventory.State) { o, found = s.Order(orderID) }); err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: orden %s", domain.ErrNotFound, orderID)
	}
	out := toOrderResponse(&o)
	return &out, nil
}

// SupplierSpend compras por proveedor. Con un almacén que proyecta totales se guarda primero
// el estado y se consulta el almacén; si no, se calcula sobre la sesión.
func (e *Engine) SupplierSpend(ctx context.Context, companyID string) ([]repository.SupplierSpend, error) {
	if e.reports == nil {
		var out []repository.SupplierSpend
		err := e.view(ctx, companyID, func(s *inventory.State) { out = repository.SupplierSpendOf(s.Orders) })
		return out, err
	}
	if companyID == "" {
		return nil, fmt.Errorf("%w: empresa requerida", domain.ErrValidation)
	}
	if err := e.Flush(ctx, companyID); err != nil {
		return nil, err
	}
	return e.reports.SupplierSpend(ctx, companyID)
}

// ListPendingStocks pendientes abiertos.
func (e *Engine) ListPendingStocks(ctx context.Context, companyID string) ([]entity.PendingStock, error) {
	var out []entity.PendingStock
	err := e.view(ctx, companyID, func(s *inventory.State) { out = s.PendingStocksList() })
	return out, err
}

// Reconcile revisa la consistencia del estado en memoria y registra las advertencias.
func (e *Engine) Reconcile(ctx context.Context, companyID string) (dto.ReconciliationReport, error) {
	var warnings []inventory.ReconciliationWarning
	if err := e.view(ctx, companyID, func(s *inventory.State) { warnings = inventory.CheckConsistency(s) }); err != nil {
		return dto.ReconciliationReport{}, err
	}
	e.reportWarnings(companyID, warnings)
	return ToReconciliationReport(companyID, warnings), nil
}

// ToReconciliationReport adapta las advertencias del dominio a la respuesta.
func ToReconciliationReport(companyID string, warnings []inventory.ReconciliationWarning) dto.ReconciliationReport {
	out := dto.ReconciliationReport{
		CompanyID: companyID,
		CheckedAt: time.Now().UTC(),
		Warnings:  make([]dto.ReconciliationWarningDTO, 0, len(warnings)),
	}
	for _, w := range warnings {
		out.Warnings = append(out.Warnings, dto.ReconciliationWarningDTO{
			Kind:           string(w.Kind),
			ProductID:      w.ProductID,
			PendingStockID: w.PendingStockID,
			Expected:       w.Expected,
			Actual:         w.Actual,
			Message:        w.Message,
		})
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

// mutateState para transiciones que no emiten registros.
func (e *Engine) mutateState(ctx context.Context, companyID string, fn func(*inventory.State) (*inventory.State, error)) error {
	_, err := e.mutate(ctx, companyID, func(s *inventory.State) (*inventory.State, inventory.Effects, error) {
		next, err := fn(s)
		return next, inventory.Effects{}, err
	})
	return err
}

func (e *Engine) categoryOrDefault(ctx context.Context, companyID, category string) (string, error) {
	if category = strings.TrimSpace(category); category != "" {
		return category, nil
	}
	if e.catalog == nil {
		return entity.DefaultCategoryName, nil
	}
	c, err := e.catalog.EnsureDefault(ctx, companyID)
	if err != nil {
		return "", fmt.Errorf("categoría por defecto: %w", err)
	}
	return c.Name, nil
}

func (e *Engine) checkDepartment(ctx context.Context, companyID, department string) error {
	if department == "" || e.directory == nil {
		return nil
	}
	ok, err := e.directory.DepartmentExists(ctx, companyID, department)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: departamento %q", domain.ErrNotFound, department)
	}
	return nil
}

func parseLocation(raw string) (entity.Location, error) {
	loc, ok := entity.ParseLocation(raw)
	if !ok {
		return "", fmt.Errorf("%w: ubicación %q", domain.ErrValidation, raw)
	}
	return loc, nil
}

func parseTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha %q", domain.ErrValidation, raw)
	}
	return &t, nil
}

func toArrivals(in []dto.ArrivalInput) []entity.Arrival {
	out := make([]entity.Arrival, 0, len(in))
	for _, a := range in {
		out = append(out, entity.Arrival{Quantity: a.Quantity, Date: a.Date})
	}
	return out
}

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func toProductResponse(s *inventory.State, p entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:         p.ID,
		SKU:        p.SKU,
		Name:       p.Name,
		Category:   p.Category,
		Department: p.Department,
		Company:    p.Company,
		Warehouse:  p.Warehouse,
		Serialized: p.Serialized,
		Stock:      p.Stock,
		LiveUnits:  s.LiveUnitCount(p.ID),
		MinStock:   p.MinStock,
		DeletedAt:  p.DeletedAt,
	}
}

func toOrderResponse(o *entity.Order) dto.OrderResponse {
	items := make([]dto.OrderItemInput, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.OrderItemInput{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price,
		})
	}
	return dto.OrderResponse{
		ID:         o.ID,
		Number:     o.Number,
		Supplier:   o.Supplier,
		Company:    o.Company,
		Warehouse:  o.Warehouse,
		Date:       o.Date,
		Status:     string(o.Status),
		Items:      items,
		Total:      o.Total(),
		ReceivedAt: o.ReceivedAt,
	}
}
