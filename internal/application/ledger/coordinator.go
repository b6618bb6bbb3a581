package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

// PostMovementCommand intención tipada de registrar un movimiento simple
// (RECEIPT, SHIPMENT, ADJUSTMENT_INCREASE, ADJUSTMENT_DECREASE).
// Quantity siempre positiva; el signo del delta lo determina el tipo.
type PostMovementCommand struct {
	MovementID  string // opcional: fijarlo permite reintentos idempotentes
	Type        string
	ItemID      string
	WarehouseID string
	Quantity    int64
	Reference   string
	Reason      string // obligatorio en ajustes
	Actor       string
	OccurredAt  time.Time // opcional; vacío = ahora
}

// TransferCommand intención tipada de trasladar stock entre bodegas.
type TransferCommand struct {
	ItemID          string
	FromWarehouseID string
	ToWarehouseID   string
	Quantity        int64
	Actor           string
}

// Coordinator convierte intenciones de alto nivel en appends al kardex que
// triunfan o fallan como unidad. Serializa por clave (ítem, bodega): la
// validación de stock, el append y la proyección de una clave ocurren bajo su
// mutex, y solo retorna después de proyectar (lectura consistente para el
// caller que escribió).
type Coordinator struct {
	log        repository.MovementLog
	projector  *Projector
	items      repository.ItemRepository
	warehouses repository.WarehouseRepository
	keys       *keyMutex
	logg       *logger.Logger
}

// NewCoordinator construye el coordinador de transacciones del kardex.
func NewCoordinator(
	log repository.MovementLog,
	projector *Projector,
	items repository.ItemRepository,
	warehouses repository.WarehouseRepository,
	logg *logger.Logger,
) *Coordinator {
	return &Coordinator{
		log:        log,
		projector:  projector,
		items:      items,
		warehouses: warehouses,
		keys:       newKeyMutex(),
		logg:       logg,
	}
}

// PostMovement valida y confirma un movimiento simple. Los tipos de traslado
// se rechazan aquí: solo Transfer puede crear el par OUT/IN con la misma
// referencia (invariante de emparejamiento).
func (c *Coordinator) PostMovement(ctx context.Context, cmd PostMovementCommand) (*entity.Movement, error) {
	switch cmd.Type {
	case entity.MovementTypeReceipt, entity.MovementTypeShipment,
		entity.MovementTypeAdjustmentIncrease, entity.MovementTypeAdjustmentDecrease:
	default:
		return nil, domain.ErrInvalidMovement
	}
	if cmd.Quantity <= 0 || cmd.Actor == "" {
		return nil, domain.ErrInvalidMovement
	}
	if entity.IsAdjustment(cmd.Type) && cmd.Reason == "" {
		return nil, domain.ErrInvalidMovement
	}

	// Reintento idempotente: un ID ya confirmado devuelve el resultado original
	// sin reevaluar stock.
	if cmd.MovementID != "" {
		if prior, err := c.log.GetByID(ctx, cmd.MovementID); err != nil {
			return nil, err
		} else if prior != nil {
			return prior, nil
		}
	}

	item, err := c.lookupItem(ctx, cmd.ItemID)
	if err != nil {
		return nil, err
	}
	if _, err := c.lookupWarehouse(ctx, cmd.WarehouseID); err != nil {
		return nil, err
	}

	delta := entity.MovementSign(cmd.Type) * cmd.Quantity
	key := balanceKey{itemID: cmd.ItemID, warehouseID: cmd.WarehouseID}
	unlock := c.keys.Lock(key)
	defer unlock()

	// Política de stock: una salida no puede dejar el balance por debajo del
	// nivel mínimo del ítem (0 si no se configura). Se rechaza antes de
	// confirmar, nunca después.
	if delta < 0 && !item.AllowNegativeStock {
		if c.projector.Get(cmd.ItemID, cmd.WarehouseID)+delta < item.MinStockLevel {
			return nil, domain.ErrInsufficientStock
		}
	}

	committed, err := c.append(ctx, &entity.Movement{
		ID:            movementID(cmd.MovementID),
		ItemID:        cmd.ItemID,
		WarehouseID:   cmd.WarehouseID,
		Type:          cmd.Type,
		QuantityDelta: delta,
		Reference:     cmd.Reference,
		Reason:        cmd.Reason,
		Actor:         cmd.Actor,
		OccurredAt:    occurredAt(cmd.OccurredAt),
	})
	if err != nil {
		return nil, err
	}
	return committed, nil
}

// Transfer genera una referencia fresca (id del grupo de traslado) y confirma
// el par TRANSFER_OUT/TRANSFER_IN como una operación lógica. Si la verificación
// de stock del OUT falla, no se registra nada; si el OUT ya fue confirmado y el
// IN falla (ej. bodega destino inválida), se registra un ADJUSTMENT_INCREASE
// compensatorio que revierte el OUT y se reporta ErrTransferFailed: el kardex
// es append-only, los fallos se corrigen hacia adelante, nunca se reescriben.
func (c *Coordinator) Transfer(ctx context.Context, cmd TransferCommand) (*entity.TransferGroup, error) {
	if cmd.Quantity <= 0 || cmd.Actor == "" || cmd.ItemID == "" ||
		cmd.FromWarehouseID == "" || cmd.ToWarehouseID == "" ||
		cmd.FromWarehouseID == cmd.ToWarehouseID {
		return nil, domain.ErrInvalidMovement
	}

	item, err := c.lookupItem(ctx, cmd.ItemID)
	if err != nil {
		return nil, err
	}
	if _, err := c.lookupWarehouse(ctx, cmd.FromWarehouseID); err != nil {
		return nil, err
	}

	reference := uuid.New().String()
	now := time.Now()
	fromKey := balanceKey{itemID: cmd.ItemID, warehouseID: cmd.FromWarehouseID}
	toKey := balanceKey{itemID: cmd.ItemID, warehouseID: cmd.ToWarehouseID}
	unlock := c.keys.LockPair(fromKey, toKey)
	defer unlock()

	if !item.AllowNegativeStock && c.projector.Get(cmd.ItemID, cmd.FromWarehouseID)-cmd.Quantity < item.MinStockLevel {
		return nil, domain.ErrInsufficientStock
	}

	out, err := c.append(ctx, &entity.Movement{
		ID:            uuid.New().String(),
		ItemID:        cmd.ItemID,
		WarehouseID:   cmd.FromWarehouseID,
		Type:          entity.MovementTypeTransferOut,
		QuantityDelta: -cmd.Quantity,
		Reference:     reference,
		Actor:         cmd.Actor,
		OccurredAt:    now,
	})
	if err != nil {
		return nil, err
	}

	// La bodega destino se valida con el OUT ya confirmado: si resulta
	// inválida, el kardex se corrige hacia adelante con la compensación.
	if _, err := c.lookupWarehouse(ctx, cmd.ToWarehouseID); err != nil {
		return nil, c.compensateTransfer(ctx, cmd, reference, err)
	}

	in, err := c.append(ctx, &entity.Movement{
		ID:            uuid.New().String(),
		ItemID:        cmd.ItemID,
		WarehouseID:   cmd.ToWarehouseID,
		Type:          entity.MovementTypeTransferIn,
		QuantityDelta: cmd.Quantity,
		Reference:     reference,
		Actor:         cmd.Actor,
		OccurredAt:    now,
	})
	if err != nil {
		return nil, c.compensateTransfer(ctx, cmd, reference, err)
	}

	c.logg.Info().
		Str("reference", reference).
		Str("item_id", cmd.ItemID).
		Str("from", cmd.FromWarehouseID).
		Str("to", cmd.ToWarehouseID).
		Int64("quantity", cmd.Quantity).
		Msg("traslado confirmado")

	return &entity.TransferGroup{
		Reference:       reference,
		ItemID:          cmd.ItemID,
		FromWarehouseID: cmd.FromWarehouseID,
		ToWarehouseID:   cmd.ToWarehouseID,
		Quantity:        cmd.Quantity,
		Out:             out,
		In:              in,
	}, nil
}

// GetBalance devuelve el balance proyectado de un ítem en una bodega.
func (c *Coordinator) GetBalance(itemID, warehouseID string) int64 {
	return c.projector.Get(itemID, warehouseID)
}

// append valida, confirma en el kardex y proyecta. Caller debe tener tomado
// el mutex de la clave.
func (c *Coordinator) append(ctx context.Context, m *entity.Movement) (*entity.Movement, error) {
	if err := domain.ValidateMovement(m); err != nil {
		return nil, err
	}
	committed, err := c.log.Append(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("append al kardex: %w", err)
	}
	c.projector.Apply(ctx, committed)
	return committed, nil
}

// compensateTransfer revierte un TRANSFER_OUT ya confirmado con un
// ADJUSTMENT_INCREASE de la misma magnitud y referencia.
func (c *Coordinator) compensateTransfer(ctx context.Context, cmd TransferCommand, reference string, cause error) error {
	_, err := c.append(ctx, &entity.Movement{
		ID:            uuid.New().String(),
		ItemID:        cmd.ItemID,
		WarehouseID:   cmd.FromWarehouseID,
		Type:          entity.MovementTypeAdjustmentIncrease,
		QuantityDelta: cmd.Quantity,
		Reference:     reference,
		Reason:        "reversa de traslado fallido",
		Actor:         cmd.Actor,
		OccurredAt:    time.Now(),
	})
	if err != nil {
		// Compensación fallida: el OUT queda huérfano hasta intervención manual.
		c.logg.Error().
			Str("reference", reference).
			Err(err).
			Msg("no se pudo compensar el traslado fallido")
		return fmt.Errorf("%w: compensación fallida: %v", domain.ErrTransferFailed, err)
	}
	c.logg.Warn().
		Str("reference", reference).
		Str("item_id", cmd.ItemID).
		Str("from", cmd.FromWarehouseID).
		Str("to", cmd.ToWarehouseID).
		Err(cause).
		Msg("traslado fallido: OUT revertido con ajuste compensatorio")
	return fmt.Errorf("%w: %v", domain.ErrTransferFailed, cause)
}

// lookupItem resuelve el ítem y verifica que esté activo.
func (c *Coordinator) lookupItem(ctx context.Context, itemID string) (*entity.Item, error) {
	if itemID == "" {
		return nil, domain.ErrInvalidMovement
	}
	item, err := c.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil || !item.Active {
		return nil, domain.ErrReferenceIntegrity
	}
	return item, nil
}

// lookupWarehouse resuelve la bodega y verifica que esté activa.
func (c *Coordinator) lookupWarehouse(ctx context.Context, warehouseID string) (*entity.Warehouse, error) {
	if warehouseID == "" {
		return nil, domain.ErrInvalidMovement
	}
	wh, err := c.warehouses.GetByID(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if wh == nil || !wh.Active {
		return nil, domain.ErrReferenceIntegrity
	}
	return wh, nil
}

func movementID(id string) string {
	if id != "" {
		return id
	}
	return uuid.New().String()
}

func occurredAt(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
