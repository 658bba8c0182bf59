package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
)

// ProductHandler productos y su stock (protegido).
type ProductHandler struct {
	engine *inventory.Engine
}

// NewProductHandler construye el handler.
func NewProductHandler(engine *inventory.Engine) *ProductHandler {
	return &ProductHandler{engine: engine}
}

// Register godoc
// @Summary      Registrar producto en el inventario
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterProductRequest  true  "Datos del producto; sin categoría se asigna General"
// @Success      201   {object}  entity.Product
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Register(c *fiber.Ctx) error {
	_, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.RegisterProductRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	out, err := h.engine.RegisterProduct(c.UserContext(), companyID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar productos con su stock
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        include_deleted  query  bool  false  "Incluir productos dados de baja"
// @Success      200  {array}  dto.ProductResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	_, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.engine.ListProducts(c.UserContext(), companyID, c.QueryBool("include_deleted"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener producto
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	_, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.engine.GetProduct(c.UserContext(), companyID, c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// AdjustStock godoc
// @Summary      Ajuste manual de stock (productos no serializados)
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del producto"
// @Param        body  body  dto.AdjustStockRequest  true  "Nuevo stock y motivo"
// @Success      200   {array}   entity.StockHistoryEntry
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/adjust [post]
func (h *ProductHandler) AdjustStock(c *fiber.Ctx) error {
	userID, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.AdjustStockRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	eff, err := h.engine.AdjustStock(c.UserContext(), companyID, userID, c.Params("id"), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(eff.Ledger)
}

// SoftDelete godoc
// @Summary      Baja lógica de producto (sin unidades vivas ni stock)
// @Tags         products
// @Security     Bearer
// @Param        id   path  string  true  "ID del producto"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) SoftDelete(c *fiber.Ctx) error {
	_, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.engine.SoftDeleteProduct(c.UserContext(), companyID, c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Restore godoc
// @Summary      Restaurar producto dado de baja
// @Tags         products
// @Security     Bearer
// @Param        id   path  string  true  "ID del producto"
// @Success      204
// @Router       /api/products/{id}/restore [post]
func (h *ProductHandler) Restore(c *fiber.Ctx) error {
	_, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.engine.RestoreProduct(c.UserContext(), companyID, c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// LowStock godoc
// @Summary      Productos bajo su stock mínimo
// @Description  Ordenados por déficit (mayor primero); priority 1 es el más urgente.
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/products/low-stock [get]
func (h *ProductHandler) LowStock(c *fiber.Ctx) error {
	_, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	list, err := h.engine.LowStockList(c.UserContext(), companyID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":     len(list),
		"low_stock": list,
	})
}
