package entity

import "time"

// Item es la identidad de catálogo de un producto en el kardex.
// Inmutable una vez que existen movimientos que la referencian;
// la gestión de catálogo (creación, edición de atributos) es externa.
type Item struct {
	ID            string
	SKU           string // único, visible para el usuario
	Name          string
	UnitOfMeasure string
	MinStockLevel int64
	ReorderPoint  int64
	// AllowNegativeStock permite stock negativo para este ítem (backorder).
	// Por defecto false: la política es stock no negativo.
	AllowNegativeStock bool
	Active             bool
	CreatedAt          time.Time
}
