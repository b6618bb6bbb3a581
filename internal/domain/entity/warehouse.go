package entity

import "time"

// Warehouse representa una bodega o sucursal donde se almacena inventario (multi-bodega).
// Puede desactivarse pero nunca eliminarse mientras existan movimientos que la
// referencien (inmutabilidad referencial).
type Warehouse struct {
	ID        string
	Code      string // único, visible para el usuario
	Name      string
	Active    bool
	CreatedAt time.Time
}
