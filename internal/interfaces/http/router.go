package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/application/pricing"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
	"github.com/jhoicas/Kardex-api/internal/jobs"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Coordinator *ledger.Coordinator
	Monitor     *ledger.Monitor
	MovementLog repository.MovementLog
	Resolver    *pricing.Resolver
	Checker     *jobs.ConsistencyChecker
}

// Router registra las rutas de la API. La autenticación es responsabilidad
// del gateway externo; este servicio expone solo el núcleo del kardex.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	ledgerHandler := NewLedgerHandler(deps.Coordinator, deps.Monitor, deps.MovementLog, deps.Checker)
	ledgerGroup := api.Group("/ledger")
	ledgerGroup.Post("/movements", ledgerHandler.RegisterMovement)
	ledgerGroup.Get("/movements", ledgerHandler.ListMovements)
	ledgerGroup.Post("/transfers", ledgerHandler.RegisterTransfer)
	ledgerGroup.Get("/balances/:itemId/:warehouseId", ledgerHandler.GetBalance)
	ledgerGroup.Get("/reorder-alerts", ledgerHandler.GetReorderAlerts)
	ledgerGroup.Post("/consistency-check", ledgerHandler.RunConsistencyCheck)

	priceHandler := NewPriceHandler(deps.Resolver)
	api.Get("/prices/resolve", priceHandler.Resolve)
}
