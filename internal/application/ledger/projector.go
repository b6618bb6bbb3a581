package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
	"github.com/jhoicas/Kardex-api/pkg/logger"
)

// rebuildBatchSize tamaño de página al releer el kardex completo.
const rebuildBatchSize = 500

// balanceKey identifica un balance: (ítem, bodega).
type balanceKey struct {
	itemID      string
	warehouseID string
}

// Projector mantiene los balances en memoria derivados del kardex.
// No es autoritativo: cualquier balance es recalculable desde el log con
// Rebuild, que es la ruta de recuperación tras un reinicio o ante sospecha
// de desfase. Procesa los movimientos de una clave en orden estricto de
// secuencia; claves distintas pueden aplicarse concurrentemente.
type Projector struct {
	log  repository.MovementLog
	logg *logger.Logger

	mu        sync.RWMutex
	balances  map[balanceKey]int64
	lastSeq   map[balanceKey]int64
	updatedAt map[balanceKey]time.Time

	// observer recibe la clave afectada tras cada Apply (monitor de reorden).
	observer KeyObserver
}

// KeyObserver es notificado tras aplicar un movimiento sobre una clave.
type KeyObserver interface {
	KeyChanged(ctx context.Context, itemID, warehouseID string)
}

// NewProjector construye el proyector sobre el kardex dado.
func NewProjector(log repository.MovementLog, logg *logger.Logger) *Projector {
	return &Projector{
		log:       log,
		logg:      logg,
		balances:  make(map[balanceKey]int64),
		lastSeq:   make(map[balanceKey]int64),
		updatedAt: make(map[balanceKey]time.Time),
	}
}

// SetObserver registra el observador de claves (se fija una vez en el arranque).
func (p *Projector) SetObserver(o KeyObserver) {
	p.observer = o
}

// Apply actualiza el balance de la clave del movimiento con su delta.
// Los movimientos ya aplicados (secuencia <= última vista para la clave) se
// ignoran: esto hace el replay idempotente y absorbe reintentos del caller.
func (p *Projector) Apply(ctx context.Context, m *entity.Movement) {
	if m == nil || !m.Committed() {
		return
	}
	k := balanceKey{itemID: m.ItemID, warehouseID: m.WarehouseID}

	p.mu.Lock()
	if m.Sequence <= p.lastSeq[k] {
		p.mu.Unlock()
		return
	}
	p.balances[k] += m.QuantityDelta
	p.lastSeq[k] = m.Sequence
	p.updatedAt[k] = time.Now()
	p.mu.Unlock()

	if p.observer != nil {
		p.observer.KeyChanged(ctx, m.ItemID, m.WarehouseID)
	}
}

// Get devuelve el balance actual de un ítem en una bodega (0 si no hay movimientos).
// Lectura sin bloqueo de escritores: puede observar un balance levemente
// desactualizado entre el commit de un movimiento y su Apply.
func (p *Projector) Get(itemID, warehouseID string) int64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.balances[balanceKey{itemID: itemID, warehouseID: warehouseID}]
}

// Balances devuelve una copia de todos los balances cacheados.
func (p *Projector) Balances() []*entity.Balance {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]*entity.Balance, 0, len(p.balances))
	for k, onHand := range p.balances {
		out = append(out, &entity.Balance{
			ItemID:      k.itemID,
			WarehouseID: k.warehouseID,
			OnHand:      onHand,
			UpdatedAt:   p.updatedAt[k],
		})
	}
	return out
}

// Rebuild descarta los balances cacheados y relee el kardex completo en orden
// de secuencia. Mantiene el lock de escritura durante el replay, excluyendo
// cualquier Apply concurrente.
func (p *Projector) Rebuild(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	balances, lastSeq, err := p.replayLocked(ctx)
	if err != nil {
		return err
	}
	p.balances = balances
	p.lastSeq = lastSeq
	now := time.Now()
	p.updatedAt = make(map[balanceKey]time.Time, len(balances))
	for k := range balances {
		p.updatedAt[k] = now
	}
	p.logg.Info().Int("claves", len(balances)).Msg("proyección reconstruida desde el kardex")
	return nil
}

// Verify recalcula todos los balances desde el kardex y los compara con la
// caché. Devuelve las claves con desfase; si hay alguna, repara en el acto
// adoptando los valores recalculados (equivale a un Rebuild). Se ejecuta bajo
// el lock de escritura: ningún Apply puede intercalarse durante la verificación.
func (p *Projector) Verify(ctx context.Context) ([]*entity.Balance, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	balances, lastSeq, err := p.replayLocked(ctx)
	if err != nil {
		return nil, err
	}

	var drifted []*entity.Balance
	for k, recomputed := range balances {
		if cached := p.balances[k]; cached != recomputed {
			drifted = append(drifted, &entity.Balance{ItemID: k.itemID, WarehouseID: k.warehouseID, OnHand: recomputed})
			p.logg.Error().
				Str("item_id", k.itemID).
				Str("warehouse_id", k.warehouseID).
				Int64("cacheado", cached).
				Int64("recalculado", recomputed).
				Msg("desfase de proyección detectado")
		}
	}
	// Claves cacheadas sin respaldo en el kardex también son desfase.
	for k, cached := range p.balances {
		if _, ok := balances[k]; !ok && cached != 0 {
			drifted = append(drifted, &entity.Balance{ItemID: k.itemID, WarehouseID: k.warehouseID, OnHand: 0})
			p.logg.Error().
				Str("item_id", k.itemID).
				Str("warehouse_id", k.warehouseID).
				Int64("cacheado", cached).
				Msg("balance cacheado sin movimientos en el kardex")
		}
	}

	if len(drifted) > 0 {
		p.balances = balances
		p.lastSeq = lastSeq
		now := time.Now()
		p.updatedAt = make(map[balanceKey]time.Time, len(balances))
		for k := range balances {
			p.updatedAt[k] = now
		}
	}
	return drifted, nil
}

// replayLocked relee el kardex completo por páginas. Requiere p.mu tomado.
func (p *Projector) replayLocked(ctx context.Context) (map[balanceKey]int64, map[balanceKey]int64, error) {
	balances := make(map[balanceKey]int64)
	lastSeq := make(map[balanceKey]int64)
	var since int64
	for {
		batch, err := p.log.ReadSince(ctx, since, rebuildBatchSize)
		if err != nil {
			return nil, nil, fmt.Errorf("releer kardex desde %d: %w", since, err)
		}
		if len(batch) == 0 {
			return balances, lastSeq, nil
		}
		for _, m := range batch {
			k := balanceKey{itemID: m.ItemID, warehouseID: m.WarehouseID}
			balances[k] += m.QuantityDelta
			lastSeq[k] = m.Sequence
			since = m.Sequence
		}
	}
}
