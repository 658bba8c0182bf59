package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
)

// ReconcileEnqueuer programa una revisión de consistencia en segundo plano.
type ReconcileEnqueuer interface {
	EnqueueReconcile(ctx context.Context, companyID string) (taskID string, err error)
}

// InventoryHandler unidades, historial, traslados y consistencia (protegido).
type InventoryHandler struct {
	engine   *inventory.Engine
	enqueuer ReconcileEnqueuer
}

// NewInventoryHandler construye el handler; enqueuer puede ser nil.
func NewInventoryHandler(engine *inventory.Engine, enqueuer ReconcileEnqueuer) *InventoryHandler {
	return &InventoryHandler{engine: engine, enqueuer: enqueuer}
}

// CreateUnits godoc
// @Summary      Alta de unidades de un producto
// @Tags         units
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.CreateUnitsRequest  true  "Unidades (ubicación obligatoria)"
// @Success      201   {array}   entity.StockHistoryEntry
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/units [post]
func (h *InventoryHandler) CreateUnits(c *fiber.Ctx) error {
	userID, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CreateUnitsRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	eff, err := h.engine.CreateUnits(c.UserContext(), companyID, userID, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(eff.Ledger)
}

// ListUnits godoc
// @Summary      Unidades de un producto
// @Tags         units
// @Security     Bearer
// @Produce      json
// @Param        id                 path   string  true   "ID del producto"
// @Param        include_tombstoned query  bool    false  "Incluir unidades dadas de baja"
// @Success      200  {array}  entity.ProductUnit
// @Router       /api/products/{id}/units [get]
func (h *InventoryHandler) ListUnits(c *fiber.Ctx) error {
	_, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.engine.ListUnits(c.UserContext(), companyID, c.Params("id"), c.QueryBool("include_tombstoned"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// RelocateUnits godoc
// @Summary      Trasladar unidades
// @Tags         units
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.RelocateUnitsRequest  true  "Destinos por unidad"
// @Success      200   {array}   entity.StockMovement
// @Router       /api/products/{id}/units/relocate [post]
func (h *InventoryHandler) RelocateUnits(c *fiber.Ctx) error {
	userID, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.RelocateUnitsRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	eff, err := h.engine.RelocateUnits(c.UserContext(), companyID, userID, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(eff.Movements)
}

// SetUnitStatus godoc
// @Summary      Cambiar estado operativo de una unidad
// @Tags         units
// @Security     Bearer
// @Accept       json
// @Param        id      path  string  true  "ID del producto"
// @Param        unitId  path  string  true  "ID de la unidad"
// @Param        body    body  dto.UnitStatusRequest  true  "Nuevo estado"
// @Success      204
// @Router       /api/products/{id}/units/{unitId}/status [patch]
func (h *InventoryHandler) SetUnitStatus(c *fiber.Ctx) error {
	_, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.UnitStatusRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	if err := h.engine.SetUnitStatus(c.UserContext(), companyID, c.Params("id"), c.Params("unitId"), in); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SoftDeleteUnit godoc
// @Summary      Baja lógica de una unidad
// @Tags         units
// @Security     Bearer
// @Accept       json
// @Param        id      path  string  true  "ID del producto"
// @Param        unitId  path  string  true  "ID de la unidad"
// @Param        body    body  dto.SoftDeleteUnitRequest  true  "Motivo"
// @Success      200  {array}  entity.StockHistoryEntry
// @Router       /api/products/{id}/units/{unitId} [delete]
func (h *InventoryHandler) SoftDeleteUnit(c *fiber.Ctx) error {
	userID, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.SoftDeleteUnitRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	eff, err := h.engine.SoftDeleteUnit(c.UserContext(), companyID, userID, c.Params("id"), c.Params("unitId"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(eff.Ledger)
}

// RestoreUnit godoc
// @Summary      Restaurar unidad dada de baja
// @Tags         units
// @Security     Bearer
// @Param        id      path  string  true  "ID del producto"
// @Param        unitId  path  string  true  "ID de la unidad"
// @Success      200  {array}  entity.StockHistoryEntry
// @Router       /api/products/{id}/units/{unitId}/restore [post]
func (h *InventoryHandler) RestoreUnit(c *fiber.Ctx) error {
	userID, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	eff, err := h.engine.RestoreUnit(c.UserContext(), companyID, userID, c.Params("id"), c.Params("unitId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(eff.Ledger)
}

// PurgeUnit godoc
// @Summary      Eliminar definitivamente una unidad dada de baja
// @Tags         units
// @Security     Bearer
// @Param        id      path  string  true  "ID del producto"
// @Param        unitId  path  string  true  "ID de la unidad"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/units/{unitId}/purge [delete]
func (h *InventoryHandler) PurgeUnit(c *fiber.Ctx) error {
	_, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.engine.PurgeUnit(c.UserContext(), companyID, c.Params("id"), c.Params("unitId")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Ledger godoc
// @Summary      Historial de stock
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Producto"
// @Param        action      query  string  false  "add | remove | adjust | order-received"
// @Param        reference   query  string  false  "Referencia (número de orden, ID de unidad)"
// @Param        from        query  string  false  "Desde (RFC3339)"
// @Param        to          query  string  false  "Hasta (RFC3339)"
// @Param        limit       query  int     false  "Límite"  default(20)
// @Param        offset      query  int     false  "Offset"  default(0)
// @Success      200  {object}  map[string]interface{}
// @Router       /api/inventory/ledger [get]
func (h *InventoryHandler) Ledger(c *fiber.Ctx) error {
	_, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	var q dto.LedgerQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	entries, total, err := h.engine.QueryLedger(c.UserContext(), companyID, q)
	if err != nil {
		return writeError(c, err)
	}
	q.DefaultPage()
	return c.JSON(fiber.Map{
		"entries": entries,
		"page":    dto.PageResponse{Limit: q.Limit, Offset: q.Offset, Total: total},
	})
}

// Movements godoc
// @Summary      Traslados de unidades
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Producto"
// @Param        grouped     query  bool    false  "Agrupar por producto, minuto, ruta y empleado"
// @Success      200  {array}  entity.StockMovement
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	_, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	productID := c.Query("product_id")
	if c.QueryBool("grouped") {
		groups, err := h.engine.GroupedMovements(c.UserContext(), companyID, productID)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(groups)
	}
	out, err := h.engine.ListMovements(c.UserContext(), companyID, productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Revisar consistencia del inventario
// @Description  Solo reporta; nunca corrige automáticamente.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.ReconciliationReport
// @Router       /api/inventory/reconcile [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	_, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	report, err := h.engine.Reconcile(c.UserContext(), companyID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(report)
}

// EnqueueReconcile godoc
// @Summary      Programar revisión de consistencia en segundo plano
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      202  {object}  map[string]string
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/inventory/reconcile [post]
func (h *InventoryHandler) EnqueueReconcile(c *fiber.Ctx) error {
	_, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	if h.enqueuer == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "JOBS_DISABLED", Message: "cola de tareas no configurada"})
	}
	id, err := h.enqueuer.EnqueueReconcile(c.UserContext(), companyID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"task_id": id})
}

// Flush godoc
// @Summary      Forzar escritura del estado al almacén
// @Tags         inventory
// @Security     Bearer
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/flush [post]
func (h *InventoryHandler) Flush(c *fiber.Ctx) error {
	_, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.engine.Flush(c.UserContext(), companyID); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
