package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/storage"
	httpRouter "github.com/jhoicas/inventario-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventario-ledger/internal/jobs"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.Store.Backend).
		Msg("iniciando aplicación")

	ctx := context.Background()
	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer backend.Close()

	var registry *metrics.Registry
	deps := inventory.Deps{
		Store:     backend.Store,
		Sequence:  backend.Sequence,
		Catalog:   backend.Catalog,
		Directory: backend.Directory,
		Reports:   backend.Reports,
		Logger:    log.Zerolog(),
	}
	if cfg.Metrics.Enabled {
		registry = metrics.New()
		deps.Metrics = registry
	}
	engine := inventory.NewEngine(deps, inventory.Config{
		FlushDebounce:  cfg.Store.FlushDebounce,
		ConflictPolicy: cfg.Store.ConflictPolicy,
		AuditRestore:   cfg.Ledger.AuditRestore,
	})

	routerDeps := httpRouter.RouterDeps{
		Engine:      engine,
		JWTSecret:   cfg.JWT.Secret,
		ServiceName: cfg.App.Name,
		MetricsPath: cfg.Metrics.Path,
	}
	if registry != nil {
		routerDeps.Metrics = registry.Handler()
	}

	// Cola de tareas: la revisión bajo demanda se delega al worker.
	if cfg.Redis.Addr != "" {
		jobsClient := jobs.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer jobsClient.Close()
		routerDeps.Enqueuer = jobsClient
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Inventario Ledger API",
		}))
	}

	httpRouter.Router(app, routerDeps)

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	// Cambios aún en espera de escritura diferida.
	if err := engine.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("guardar estado pendiente")
	}

	log.Info().Msg("aplicación detenida")
}
