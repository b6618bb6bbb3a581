package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// MovementLog define el puerto del kardex: un log de movimientos de solo
// apéndice con orden total por secuencia. Los movimientos confirmados son
// inmutables; las correcciones se registran como nuevos movimientos.
type MovementLog interface {
	// Append valida y confirma el movimiento, asignándole la siguiente
	// secuencia. Si el ID ya fue confirmado devuelve el movimiento original
	// sin error (append idempotente para reintentos).
	Append(ctx context.Context, movement *entity.Movement) (*entity.Movement, error)

	// ReadSince devuelve hasta limit movimientos con secuencia mayor que
	// sinceSequence, en orden de secuencia ascendente. Permite reconstruir
	// proyecciones de forma reanudable y paginada.
	ReadSince(ctx context.Context, sinceSequence int64, limit int) ([]*entity.Movement, error)

	// GetByID devuelve el movimiento confirmado con ese ID, o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Movement, error)

	// ListByWarehouse lista movimientos de una bodega en un rango de fechas
	// opcional [from, to], más reciente primero.
	ListByWarehouse(ctx context.Context, warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error)

	// ListByItem lista movimientos de un ítem en un rango de fechas opcional
	// [from, to], más reciente primero.
	ListByItem(ctx context.Context, itemID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error)
}
