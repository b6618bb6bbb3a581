package entity

import "time"

// ReorderSignal se emite cuando el stock de un ítem en una bodega cae al punto
// de reorden o por debajo. El monitor no deduplica: evaluar de nuevo con el
// mismo balance re-emite la misma señal (deduplicar es tarea del receptor).
type ReorderSignal struct {
	ItemID       string
	WarehouseID  string
	OnHand       int64
	ReorderPoint int64
	At           time.Time
}
