package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.MovementLog = (*MovementLog)(nil)

// MovementLog kardex sobre PostgreSQL. La secuencia la asigna un BIGSERIAL en
// el INSERT: la asignación es atómica frente a cualquier otro append y ningún
// movimiento confirmado se reordena. La idempotencia por ID se resuelve con
// ON CONFLICT (id) DO NOTHING + relectura del movimiento original.
type MovementLog struct {
	q Querier
}

// NewMovementLog construye el adaptador. Pasar pool o tx (Querier).
func NewMovementLog(q Querier) *MovementLog {
	return &MovementLog{q: q}
}

const movementColumns = `id, item_id, warehouse_id, type, quantity_delta, reference, reason, actor, occurred_at, sequence, created_at`

// Append confirma el movimiento. Un ID ya confirmado devuelve el movimiento
// original sin error (reintentos idempotentes).
func (l *MovementLog) Append(ctx context.Context, movement *entity.Movement) (*entity.Movement, error) {
	if err := domain.ValidateMovement(movement); err != nil {
		return nil, err
	}
	query := `
		INSERT INTO ledger_movements (id, item_id, warehouse_id, type, quantity_delta, reference, reason, actor, occurred_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		ON CONFLICT (id) DO NOTHING
		RETURNING sequence, created_at`

	committed := *movement
	err := l.q.QueryRow(ctx, query,
		movement.ID, movement.ItemID, movement.WarehouseID, movement.Type,
		movement.QuantityDelta, movement.Reference, movement.Reason,
		movement.Actor, movement.OccurredAt,
	).Scan(&committed.Sequence, &committed.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Conflicto de ID: devolver el movimiento confirmado originalmente.
			prior, gerr := l.GetByID(ctx, movement.ID)
			if gerr != nil {
				return nil, gerr
			}
			if prior == nil {
				return nil, fmt.Errorf("append kardex: conflicto de id %s sin fila previa", movement.ID)
			}
			return prior, nil
		}
		return nil, fmt.Errorf("append kardex: %w", err)
	}
	return &committed, nil
}

// ReadSince devuelve hasta limit movimientos con secuencia > sinceSequence en
// orden de secuencia (reiniciable desde cualquier punto).
func (l *MovementLog) ReadSince(ctx context.Context, sinceSequence int64, limit int) ([]*entity.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM ledger_movements WHERE sequence > $1
		ORDER BY sequence ASC LIMIT $2`
	rows, err := l.q.Query(ctx, query, sinceSequence, limit)
	if err != nil {
		return nil, fmt.Errorf("read since: %w", err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

// GetByID obtiene un movimiento por ID, o nil si no existe.
func (l *MovementLog) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM ledger_movements WHERE id = $1`
	m, err := scanMovement(l.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movement: %w", err)
	}
	return m, nil
}

// ListByWarehouse lista movimientos de una bodega en un rango de fechas.
func (l *MovementLog) ListByWarehouse(ctx context.Context, warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	return l.list(ctx, "warehouse_id", warehouseID, from, to, limit, offset)
}

// ListByItem lista movimientos de un ítem en un rango de fechas.
func (l *MovementLog) ListByItem(ctx context.Context, itemID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	return l.list(ctx, "item_id", itemID, from, to, limit, offset)
}

func (l *MovementLog) list(ctx context.Context, column, value string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM ledger_movements WHERE ` + column + ` = $1`
	args := []any{value}
	pos := 2
	if from != nil {
		query += fmt.Sprintf(" AND occurred_at >= $%d", pos)
		args = append(args, *from)
		pos++
	}
	if to != nil {
		query += fmt.Sprintf(" AND occurred_at <= $%d", pos)
		args = append(args, *to)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY sequence DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := l.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements by %s: %w", column, err)
	}
	defer rows.Close()
	return scanMovements(rows)
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	err := row.Scan(
		&m.ID, &m.ItemID, &m.WarehouseID, &m.Type, &m.QuantityDelta,
		&m.Reference, &m.Reason, &m.Actor, &m.OccurredAt, &m.Sequence, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func scanMovements(rows pgx.Rows) ([]*entity.Movement, error) {
	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}
