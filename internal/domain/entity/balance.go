package entity

import "time"

// Balance representa el stock actual de un ítem en una bodega.
// Entidad derivada: siempre recalculable desde el kardex de movimientos;
// solo el proyector la actualiza al aplicar movimientos confirmados.
type Balance struct {
	ItemID      string
	WarehouseID string
	OnHand      int64
	UpdatedAt   time.Time
}
