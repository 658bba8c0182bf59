package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
)

// PendingHandler pendientes de órdenes parciales y recepciones complementarias preparadas.
type PendingHandler struct {
	engine *inventory.Engine
}

// NewPendingHandler construye el handler.
func NewPendingHandler(engine *inventory.Engine) *PendingHandler {
	return &PendingHandler{engine: engine}
}

// List godoc
// @Summary      Pendientes abiertos
// @Tags         pending
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  entity.PendingStock
// @Router       /api/pending-stocks [get]
func (h *PendingHandler) List(c *fiber.Ctx) error {
	_, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.engine.ListPendingStocks(c.UserContext(), companyID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// UpdateArrivals godoc
// @Summary      Reprogramar llegadas de una línea del pendiente
// @Tags         pending
// @Security     Bearer
// @Accept       json
// @Param        id     path  string  true  "ID del pendiente"
// @Param        index  path  int     true  "Índice de la línea"
// @Param        body   body  dto.UpdateArrivalsRequest  true  "Llegadas; la suma no puede exceder lo pendiente"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/pending-stocks/{id}/items/{index}/arrivals [put]
func (h *PendingHandler) UpdateArrivals(c *fiber.Ctx) error {
	_, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	index, err := c.ParamsInt("index")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "index inválido"})
	}
	var in dto.UpdateArrivalsRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	if err := h.engine.UpdateArrivals(c.UserContext(), companyID, c.Params("id"), index, in); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Stage godoc
// @Summary      Preparar recepción complementaria
// @Description  Se valida junto con lo ya preparado; no modifica el inventario hasta guardar.
// @Tags         pending
// @Security     Bearer
// @Accept       json
// @Param        id    path  string  true  "ID del pendiente"
// @Param        body  body  dto.StagePendingReceiptRequest  true  "Cantidades que llegan ahora"
// @Success      202
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/pending-stocks/{id}/stage [post]
func (h *PendingHandler) Stage(c *fiber.Ctx) error {
	userID, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.StagePendingReceiptRequest
	if ok, err := bindJSON(c, &in); !ok {
		return err
	}
	if err := h.engine.StagePendingReceipt(c.UserContext(), companyID, userID, c.Params("id"), in); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusAccepted)
}

// Changes godoc
// @Summary      Recepciones preparadas sin guardar
// @Tags         pending
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.StagedReceiptDTO
// @Router       /api/pending-changes [get]
func (h *PendingHandler) Changes(c *fiber.Ctx) error {
	_, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	out, err := h.engine.PendingChanges(c.UserContext(), companyID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Save godoc
// @Summary      Guardar recepciones preparadas
// @Description  Todas o ninguna. Sin cambios preparados responde NO_PENDING_CHANGES.
// @Tags         pending
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/pending-changes/save [post]
func (h *PendingHandler) Save(c *fiber.Ctx) error {
	_, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	eff, err := h.engine.SavePendingChanges(c.UserContext(), companyID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"ledger":           eff.Ledger,
		"resolved_pending": eff.ResolvedPending,
	})
}

// Discard godoc
// @Summary      Descartar recepciones preparadas
// @Tags         pending
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]int
// @Router       /api/pending-changes [delete]
func (h *PendingHandler) Discard(c *fiber.Ctx) error {
	_, companyID, ok := identity(c)
	if !ok {
		return unauthorized(c)
	}
	n, err := h.engine.DiscardPendingChanges(c.UserContext(), companyID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"discarded": n})
}
