package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
)

// OrderHandler órdenes de compra y su recepción (protegido).
type OrderHandler struct {
	engine *inventory.Engine
}

// NewOrderHandler construye el handler.
func NewOrderHandler(engine *inventory.Engine) *OrderHandler {
	return &OrderHandler{engine: engine}
}

// Create godoc
// @Summary      Crear orden de compra
// @Description  El número se toma de la secuencia de la empresa (OC-000001, OC-000002, ...).
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Proveedor y líneas"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	userID, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CreateOrderRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	o, err := h.engine.CreateOrder(c.UserContext(), companyID, userID, in)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.engine.GetOrder(c.UserContext(), companyID, o.ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar órdenes
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "efectuado | recibido | cancelado | fungible"
// @Success      200  {array}  dto.OrderResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	_, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.engine.ListOrders(c.UserContext(), companyID, c.Query("status"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SupplierSpend godoc
// @Summary      Compras por proveedor
// @Description  Total de órdenes no canceladas agrupado por proveedor, mayor total primero.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  repository.SupplierSpend
// @Router       /api/orders/spend-by-supplier [get]
func (h *OrderHandler) SupplierSpend(c *fiber.Ctx) error {
	_, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.engine.SupplierSpend(c.UserContext(), companyID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener orden
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la orden"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	_, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.engine.GetOrder(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Cancel godoc
// @Summary      Cancelar orden efectuada
// @Tags         orders
// @Security     Bearer
// @Param        id   path  string  true  "ID de la orden"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	return h.transition(c, h.engine.CancelOrder)
}

// MarkFungible godoc
// @Summary      Marcar orden como fungible
// @Tags         orders
// @Security     Bearer
// @Param        id   path  string  true  "ID de la orden"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/fungible [post]
func (h *OrderHandler) MarkFungible(c *fiber.Ctx) error {
	return h.transition(c, h.engine.MarkFungible)
}

// UnmarkFungible godoc
// @Summary      Devolver orden fungible a efectuada
// @Tags         orders
// @Security     Bearer
// @Param        id   path  string  true  "ID de la orden"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/fungible [delete]
func (h *OrderHandler) UnmarkFungible(c *fiber.Ctx) error {
	return h.transition(c, h.engine.UnmarkFungible)
}

func (h *OrderHandler) transition(c *fiber.Ctx, fn func(ctx context.Context, companyID, orderID string) error) error {
	_, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	if err := fn(c.UserContext(), companyID, c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Receive godoc
// @Summary      Confirmar recepción de la orden
// @Description  Crea productos y unidades de lo recibido; si algo queda pendiente registra el pendiente con sus llegadas.
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la orden"
// @Param        body  body  dto.ConfirmReceiptRequest  true  "Recibido por línea"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/receive [post]
func (h *OrderHandler) Receive(c *fiber.Ctx) error {
	userID, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.ConfirmReceiptRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	res, eff, err := h.engine.ConfirmReceipt(c.UserContext(), companyID, userID, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"order":            res.Order,
		"pending_stock":    res.PendingStock,
		"created_products": res.Created,
		"ledger":           eff.Ledger,
	})
}
