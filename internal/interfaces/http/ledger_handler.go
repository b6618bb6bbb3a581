package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
	"github.com/jhoicas/Kardex-api/internal/jobs"
)

// LedgerHandler maneja las peticiones HTTP del kardex: movimientos, traslados,
// balances, alertas de reorden y verificación de consistencia.
type LedgerHandler struct {
	coordinator *ledger.Coordinator
	monitor     *ledger.Monitor
	log         repository.MovementLog
	checker     *jobs.ConsistencyChecker
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(
	coordinator *ledger.Coordinator,
	monitor *ledger.Monitor,
	log repository.MovementLog,
	checker *jobs.ConsistencyChecker,
) *LedgerHandler {
	return &LedgerHandler{coordinator: coordinator, monitor: monitor, log: log, checker: checker}
}

// RegisterMovement registra un movimiento simple (RECEIPT, SHIPMENT, ajustes).
// POST /api/ledger/movements
func (h *LedgerHandler) RegisterMovement(c *fiber.Ctx) error {
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	committed, err := h.coordinator.PostMovement(c.Context(), ledger.PostMovementCommand{
		MovementID:  in.MovementID,
		Type:        in.Type,
		ItemID:      in.ItemID,
		WarehouseID: in.WarehouseID,
		Quantity:    in.Quantity,
		Reference:   in.Reference,
		Reason:      in.Reason,
		Actor:       in.Actor,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementResponse(committed))
}

// RegisterTransfer traslada stock entre bodegas como una unidad atómica.
// POST /api/ledger/transfers
func (h *LedgerHandler) RegisterTransfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	group, err := h.coordinator.Transfer(c.Context(), ledger.TransferCommand{
		ItemID:          in.ItemID,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		Quantity:        in.Quantity,
		Actor:           in.Actor,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTransferResponse(group))
}

// GetBalance devuelve el balance proyectado de un ítem en una bodega.
// GET /api/ledger/balances/:itemId/:warehouseId
func (h *LedgerHandler) GetBalance(c *fiber.Ctx) error {
	itemID := c.Params("itemId")
	warehouseID := c.Params("warehouseId")
	if itemID == "" || warehouseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "itemId y warehouseId son obligatorios"})
	}
	return c.JSON(dto.BalanceResponse{
		ItemID:      itemID,
		WarehouseID: warehouseID,
		OnHand:      h.coordinator.GetBalance(itemID, warehouseID),
	})
}

// ListMovements lista movimientos por ítem o por bodega con rango de fechas.
// GET /api/ledger/movements?item_id=&warehouse_id=&from=&to=&limit=&offset=
func (h *LedgerHandler) ListMovements(c *fiber.Ctx) error {
	itemID := c.Query("item_id")
	warehouseID := c.Query("warehouse_id")
	if (itemID == "") == (warehouseID == "") {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "indicar item_id o warehouse_id (exactamente uno)"})
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	page.DefaultPage()
	from, err := parseTimeQuery(c.Query("from"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from inválido (RFC3339)"})
	}
	to, err := parseTimeQuery(c.Query("to"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to inválido (RFC3339)"})
	}

	return h.listMovements(c, itemID, warehouseID, from, to, page)
}

// GetReorderAlerts devuelve las claves en o bajo el punto de reorden
// (ruta de consulta complementaria a la suscripción de señales).
// GET /api/ledger/reorder-alerts
func (h *LedgerHandler) GetReorderAlerts(c *fiber.Ctx) error {
	alerts, err := h.monitor.Shortlist(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.ReorderAlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, dto.NewReorderAlertResponse(a))
	}
	return c.JSON(fiber.Map{"total": len(out), "alerts": out})
}

// RunConsistencyCheck dispara manualmente la verificación de consistencia.
// POST /api/ledger/consistency-check
func (h *LedgerHandler) RunConsistencyCheck(c *fiber.Ctx) error {
	drifted, err := h.checker.Run(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	status := "ok"
	if drifted > 0 {
		status = "repaired"
	}
	return c.JSON(dto.ConsistencyCheckResponse{DriftedKeys: drifted, Status: status})
}

func (h *LedgerHandler) listMovements(c *fiber.Ctx, itemID, warehouseID string, from, to *time.Time, page dto.PageRequest) error {
	if itemID != "" {
		ms, err := h.log.ListByItem(c.Context(), itemID, from, to, page.Limit, page.Offset)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
		return respondMovements(c, ms)
	}
	ms, err := h.log.ListByWarehouse(c.Context(), warehouseID, from, to, page.Limit, page.Offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return respondMovements(c, ms)
}

func respondMovements(c *fiber.Ctx, ms []*entity.Movement) error {
	out := make([]dto.MovementResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, dto.NewMovementResponse(m))
	}
	return c.JSON(dto.MovementListResponse{Total: len(out), Movements: out})
}

// respondDomainError mapea errores de dominio a códigos HTTP.
func respondDomainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidMovement):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_MOVEMENT", Message: err.Error()})
	case errors.Is(err, domain.ErrReferenceIntegrity):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "UNKNOWN_REFERENCE", Message: err.Error()})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrTransferFailed):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "TRANSFER_FAILED", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

func parseTimeQuery(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
