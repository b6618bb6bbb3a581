package entity

import "time"

// Tipos de movimiento del kardex.
const (
	MovementTypeReceipt            = "RECEIPT"             // entrada por compra/recepción
	MovementTypeShipment           = "SHIPMENT"            // salida por venta/despacho
	MovementTypeAdjustmentIncrease = "ADJUSTMENT_INCREASE" // ajuste positivo (conteo físico, reversa)
	MovementTypeAdjustmentDecrease = "ADJUSTMENT_DECREASE" // ajuste negativo (merma, daño)
	MovementTypeTransferOut        = "TRANSFER_OUT"        // salida por traslado entre bodegas
	MovementTypeTransferIn         = "TRANSFER_IN"         // entrada por traslado entre bodegas
)

// Movement es la unidad atómica del kardex: un cambio firmado de cantidad
// para un ítem en una bodega. Inmutable una vez confirmado; las correcciones
// se registran como movimientos compensatorios, nunca como ediciones.
type Movement struct {
	ID            string    // asignado al crear; clave de idempotencia en reintentos
	ItemID        string
	WarehouseID   string
	Type          string
	QuantityDelta int64     // positivo = entrada, negativo = salida
	Reference     string    // correlación libre: orden de compra, grupo de traslado, etc.
	Reason        string    // obligatorio en ajustes
	Actor         string
	OccurredAt    time.Time // timestamp lógico del negocio
	Sequence      int64     // asignado al confirmar; orden total del kardex
	CreatedAt     time.Time
}

// Committed indica si el movimiento ya fue confirmado en el kardex.
func (m *Movement) Committed() bool {
	return m.Sequence > 0
}

// MovementSign devuelve el signo del delta según el tipo (+1 entrada, -1 salida)
// o 0 si el tipo no es válido.
func MovementSign(movementType string) int64 {
	switch movementType {
	case MovementTypeReceipt, MovementTypeAdjustmentIncrease, MovementTypeTransferIn:
		return 1
	case MovementTypeShipment, MovementTypeAdjustmentDecrease, MovementTypeTransferOut:
		return -1
	}
	return 0
}

// IsAdjustment indica si el tipo es un ajuste (requiere Reason).
func IsAdjustment(movementType string) bool {
	return movementType == MovementTypeAdjustmentIncrease || movementType == MovementTypeAdjustmentDecrease
}
