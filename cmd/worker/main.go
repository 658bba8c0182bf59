package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/hibiken/asynq"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/metrics"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/storage"
	"github.com/jhoicas/inventario-ledger/internal/jobs"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
		App:   cfg.App.Name + "-worker",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer backend.Close()

	registry := metrics.New()
	// El worker solo lee: nunca programa escrituras sobre el estado de la API.
	engine := inventory.NewEngine(inventory.Deps{
		Store:     backend.Store,
		Sequence:  backend.Sequence,
		Catalog:   backend.Catalog,
		Directory: backend.Directory,
		Metrics:   registry,
		Logger:    log.Zerolog(),
	}, inventory.Config{
		FlushDebounce:  time.Hour,
		ConflictPolicy: inventory.ConflictReject,
	})

	reconcile := jobs.NewReconcileJob(engine, backend.Companies, log.Zerolog(), registry.TrackJob)

	var cron []jobs.CronRegistration
	if cfg.Jobs.ReconcileCron != "" {
		task, err := jobs.NewReconcileTask("")
		if err != nil {
			log.Fatal().Err(err).Msg("tarea programada")
		}
		cron = append(cron, jobs.CronRegistration{Spec: cfg.Jobs.ReconcileCron, Task: task})
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		Concurrency: cfg.Jobs.Concurrency,
		Logger:      log.Zerolog(),
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskStockReconcile, Handler: reconcile.Handle},
		},
		Cron: cron,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("construir worker")
	}

	if cfg.Metrics.Enabled {
		app := fiber.New(fiber.Config{AppName: cfg.App.Name + "-worker", DisableStartupMessage: true})
		app.Get("/health", func(c *fiber.Ctx) error {
			return c.JSON(fiber.Map{"status": "ok"})
		})
		app.Get(cfg.Metrics.Path, adaptor.HTTPHandler(registry.Handler()))
		go func() {
			if err := app.Listen(cfg.HTTP.Addr()); err != nil {
				log.Error().Err(err).Msg("servidor de métricas finalizado")
			}
		}()
		defer func() { _ = app.Shutdown() }()
	}

	log.Info().
		Str("store", backend.Name).
		Str("cron", cfg.Jobs.ReconcileCron).
		Msg("iniciando worker")

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("worker finalizado")
		os.Exit(1)
	}
	log.Info().Msg("worker detenido")
}
