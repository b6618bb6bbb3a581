package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.MovementLog = (*MovementLog)(nil)

// MovementLog kardex en memoria: mutex + slice en orden de secuencia + índice
// por ID. Para tests y despliegues embebidos; la asignación de secuencia es
// estrictamente creciente y sin huecos.
type MovementLog struct {
	mu       sync.Mutex
	sequence int64
	ordered  []*entity.Movement
	byID     map[string]*entity.Movement
}

// NewMovementLog construye un kardex vacío en memoria.
func NewMovementLog() *MovementLog {
	return &MovementLog{byID: make(map[string]*entity.Movement)}
}

// Append confirma el movimiento asignando la siguiente secuencia. Un ID ya
// confirmado devuelve el movimiento original sin error (append idempotente).
func (l *MovementLog) Append(_ context.Context, movement *entity.Movement) (*entity.Movement, error) {
	if err := domain.ValidateMovement(movement); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if prior, ok := l.byID[movement.ID]; ok {
		return copyMovement(prior), nil
	}

	l.sequence++
	committed := copyMovement(movement)
	committed.Sequence = l.sequence
	committed.CreatedAt = time.Now()
	l.ordered = append(l.ordered, committed)
	l.byID[committed.ID] = committed
	return copyMovement(committed), nil
}

// ReadSince devuelve hasta limit movimientos con secuencia > sinceSequence.
func (l *MovementLog) ReadSince(_ context.Context, sinceSequence int64, limit int) ([]*entity.Movement, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []*entity.Movement
	for _, m := range l.ordered {
		if m.Sequence <= sinceSequence {
			continue
		}
		out = append(out, copyMovement(m))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// GetByID devuelve el movimiento confirmado con ese ID, o nil si no existe.
func (l *MovementLog) GetByID(_ context.Context, id string) (*entity.Movement, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if m, ok := l.byID[id]; ok {
		return copyMovement(m), nil
	}
	return nil, nil
}

// ListByWarehouse lista movimientos de una bodega en un rango de fechas,
// más reciente primero.
func (l *MovementLog) ListByWarehouse(_ context.Context, warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	return l.filter(func(m *entity.Movement) bool { return m.WarehouseID == warehouseID }, from, to, limit, offset), nil
}

// ListByItem lista movimientos de un ítem en un rango de fechas, más reciente primero.
func (l *MovementLog) ListByItem(_ context.Context, itemID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	return l.filter(func(m *entity.Movement) bool { return m.ItemID == itemID }, from, to, limit, offset), nil
}

func (l *MovementLog) filter(match func(*entity.Movement) bool, from, to *time.Time, limit, offset int) []*entity.Movement {
	l.mu.Lock()
	defer l.mu.Unlock()

	var selected []*entity.Movement
	for i := len(l.ordered) - 1; i >= 0; i-- {
		m := l.ordered[i]
		if !match(m) {
			continue
		}
		if from != nil && m.OccurredAt.Before(*from) {
			continue
		}
		if to != nil && m.OccurredAt.After(*to) {
			continue
		}
		selected = append(selected, m)
	}
	if offset > len(selected) {
		offset = len(selected)
	}
	selected = selected[offset:]
	if limit > 0 && len(selected) > limit {
		selected = selected[:limit]
	}
	out := make([]*entity.Movement, len(selected))
	for i, m := range selected {
		out[i] = copyMovement(m)
	}
	return out
}

// copyMovement devuelve una copia para que los callers no muten el kardex.
func copyMovement(m *entity.Movement) *entity.Movement {
	c := *m
	return &c
}
