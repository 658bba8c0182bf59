package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Engine      *inventory.Engine
	Enqueuer    ReconcileEnqueuer // opcional
	JWTSecret   string
	ServiceName string
	MetricsPath string
	Metrics     http.Handler // nil desactiva la ruta de métricas
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	if deps.Metrics != nil {
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	productHandler := NewProductHandler(deps.Engine)
	inventoryHandler := NewInventoryHandler(deps.Engine, deps.Enqueuer)
	products := protected.Group("/products")
	products.Get("/low-stock", productHandler.LowStock)
	products.Post("/", productHandler.Register)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Delete("/:id", productHandler.SoftDelete)
	products.Post("/:id/restore", productHandler.Restore)
	products.Post("/:id/adjust", productHandler.AdjustStock)

	// Unidades de un producto
	products.Get("/:id/units", inventoryHandler.ListUnits)
	products.Post("/:id/units", inventoryHandler.CreateUnits)
	products.Post("/:id/units/relocate", inventoryHandler.RelocateUnits)
	products.Patch("/:id/units/:unitId/status", inventoryHandler.SetUnitStatus)
	products.Delete("/:id/units/:unitId", inventoryHandler.SoftDeleteUnit)
	products.Post("/:id/units/:unitId/restore", inventoryHandler.RestoreUnit)
	products.Delete("/:id/units/:unitId/purge", inventoryHandler.PurgeUnit)

	invGroup := protected.Group("/inventory")
	invGroup.Get("/ledger", inventoryHandler.Ledger)
	invGroup.Get("/movements", inventoryHandler.Movements)
	invGroup.Get("/reconcile", inventoryHandler.Reconcile)
	invGroup.Post("/reconcile", inventoryHandler.EnqueueReconcile)
	invGroup.Post("/flush", inventoryHandler.Flush)

	orders := protected.Group("/orders")
	orderHandler := NewOrderHandler(deps.Engine)
	orders.Post("/", orderHandler.Create)
	orders.Get("/", orderHandler.List)
	orders.Get("/spend-by-supplier", orderHandler.SupplierSpend)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Post("/:id/cancel", orderHandler.Cancel)
	orders.Post("/:id/fungible", orderHandler.MarkFungible)
	orders.Delete("/:id/fungible", orderHandler.UnmarkFungible)
	orders.Post("/:id/receive", orderHandler.Receive)

	pendingHandler := NewPendingHandler(deps.Engine)
	pending := protected.Group("/pending-stocks")
	pending.Get("/", pendingHandler.List)
	pending.Put("/:id/items/:index/arrivals", pendingHandler.UpdateArrivals)
	pending.Post("/:id/stage", pendingHandler.Stage)

	changes := protected.Group("/pending-changes")
	changes.Get("/", pendingHandler.Changes)
	changes.Post("/save", pendingHandler.Save)
	changes.Delete("/", pendingHandler.Discard)
}
