package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/application/pricing"
	"github.com/jhoicas/Kardex-api/internal/infrastructure/notify"
	"github.com/jhoicas/Kardex-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Kardex-api/internal/interfaces/http"
	"github.com/jhoicas/Kardex-api/internal/jobs"
	"github.com/jhoicas/Kardex-api/pkg/config"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()

	if err := postgres.Migrate(cfg.DB.ConnectionString()); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	movementLog := postgres.NewMovementLog(pool)
	itemRepo := postgres.NewItemRepository(pool)
	warehouseRepo := postgres.NewWarehouseRepository(pool)
	priceRepo := postgres.NewPriceListRepository(pool)

	projector := ledger.NewProjector(movementLog, log)
	if cfg.Ledger.RebuildOnStart {
		// Ruta de recuperación: la caché de balances no se persiste, se
		// reconstruye desde el kardex en cada arranque.
		if err := projector.Rebuild(ctx); err != nil {
			log.Fatal().Err(err).Msg("reconstruir proyección")
		}
	}

	broadcaster := notify.NewBroadcaster(log)
	defer broadcaster.Close()
	monitor := ledger.NewMonitor(itemRepo, projector, broadcaster, log)
	projector.SetObserver(monitor)

	coordinator := ledger.NewCoordinator(movementLog, projector, itemRepo, warehouseRepo, log)
	resolver := pricing.NewResolver(priceRepo)
	checker := jobs.NewConsistencyChecker(projector, log)

	// Suscriptor de arranque: deja rastro estructurado de cada señal de
	// reorden para el colaborador de notificaciones externo.
	signals, cancelSignals := broadcaster.Subscribe()
	defer cancelSignals()
	go func() {
		for s := range signals {
			log.Info().
				Str("item_id", s.ItemID).
				Str("warehouse_id", s.WarehouseID).
				Int64("on_hand", s.OnHand).
				Int64("reorder_point", s.ReorderPoint).
				Msg("señal de reorden")
		}
	}()

	var stopCron func()
	if cfg.Ledger.ConsistencyCron != "" {
		scheduler, err := checker.Schedule(cfg.Ledger.ConsistencyCron)
		if err != nil {
			log.Fatal().Err(err).Str("cron", cfg.Ledger.ConsistencyCron).Msg("programar verificación de consistencia")
		}
		stopCron = func() { <-scheduler.Stop().Done() }
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Coordinator: coordinator,
		Monitor:     monitor,
		MovementLog: movementLog,
		Resolver:    resolver,
		Checker:     checker,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()
	log.Info().Str("addr", cfg.HTTP.Addr()).Msg("API escuchando")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("apagando aplicación")

	if stopCron != nil {
		stopCron()
	}
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error().Err(err).Msg("shutdown HTTP")
	}
}
