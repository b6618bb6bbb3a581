package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

// SignalSink recibe las señales de reorden (colaborador de notificación externo).
type SignalSink interface {
	Publish(signal entity.ReorderSignal)
}

// Monitor compara balances proyectados contra el punto de reorden de cada ítem
// y emite señales al sink. La evaluación es idempotente y sin efectos más allá
// de la emisión: con el mismo balance vuelve a emitir la misma señal.
type Monitor struct {
	items     repository.ItemRepository
	projector *Projector
	sink      SignalSink
	logg      *logger.Logger
}

// NewMonitor construye el monitor de reorden.
func NewMonitor(items repository.ItemRepository, projector *Projector, sink SignalSink, logg *logger.Logger) *Monitor {
	return &Monitor{items: items, projector: projector, sink: sink, logg: logg}
}

// KeyChanged implementa el observador del proyector: reevaluar la clave afectada.
func (m *Monitor) KeyChanged(ctx context.Context, itemID, warehouseID string) {
	m.Evaluate(ctx, itemID, warehouseID)
}

// Evaluate lee el balance actual y el punto de reorden del ítem; si
// onHand <= reorderPoint emite una ReorderSignal al sink.
func (m *Monitor) Evaluate(ctx context.Context, itemID, warehouseID string) {
	item, err := m.items.GetByID(ctx, itemID)
	if err != nil || item == nil {
		m.logg.Warn().Str("item_id", itemID).Err(err).Msg("ítem no disponible al evaluar reorden")
		return
	}
	onHand := m.projector.Get(itemID, warehouseID)
	if onHand > item.ReorderPoint {
		return
	}
	signal := entity.ReorderSignal{
		ItemID:       itemID,
		WarehouseID:  warehouseID,
		OnHand:       onHand,
		ReorderPoint: item.ReorderPoint,
		At:           time.Now(),
	}
	if m.sink != nil {
		m.sink.Publish(signal)
	}
	m.logg.Debug().
		Str("item_id", itemID).
		Str("warehouse_id", warehouseID).
		Int64("on_hand", onHand).
		Int64("reorder_point", item.ReorderPoint).
		Msg("señal de reorden emitida")
}

// ReorderAlert clave en o por debajo del punto de reorden, con su déficit.
type ReorderAlert struct {
	ItemID       string
	SKU          string
	WarehouseID  string
	OnHand       int64
	ReorderPoint int64
	Deficit      int64 // reorderPoint - onHand
}

// Shortlist devuelve las claves actualmente en o por debajo del punto de
// reorden, ordenadas por mayor déficit primero. Es la ruta de consulta
// (polling) complementaria a la suscripción de señales.
func (m *Monitor) Shortlist(ctx context.Context) ([]ReorderAlert, error) {
	var alerts []ReorderAlert
	for _, b := range m.projector.Balances() {
		item, err := m.items.GetByID(ctx, b.ItemID)
		if err != nil {
			return nil, err
		}
		if item == nil || b.OnHand > item.ReorderPoint {
			continue
		}
		alerts = append(alerts, ReorderAlert{
			ItemID:       b.ItemID,
			SKU:          item.SKU,
			WarehouseID:  b.WarehouseID,
			OnHand:       b.OnHand,
			ReorderPoint: item.ReorderPoint,
			Deficit:      item.ReorderPoint - b.OnHand,
		})
	}
	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Deficit != alerts[j].Deficit {
			return alerts[i].Deficit > alerts[j].Deficit
		}
		if alerts[i].SKU != alerts[j].SKU {
			return alerts[i].SKU < alerts[j].SKU
		}
		return alerts[i].WarehouseID < alerts[j].WarehouseID
	})
	return alerts, nil
}
