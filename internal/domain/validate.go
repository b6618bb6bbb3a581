package domain

import "github.com/jhoicas/Kardex-api/internal/domain/entity"

// ValidateMovement verifica los campos obligatorios de un movimiento antes de
// confirmarlo en el kardex: tipo conocido, delta distinto de cero con el signo
// del tipo, y motivo presente en ajustes. No verifica integridad referencial
// (ítem/bodega); eso lo hace el coordinador contra el catálogo.
func ValidateMovement(m *entity.Movement) error {
	if m == nil || m.ID == "" || m.ItemID == "" || m.WarehouseID == "" || m.Actor == "" {
		return ErrInvalidMovement
	}
	sign := entity.MovementSign(m.Type)
	if sign == 0 || m.QuantityDelta == 0 {
		return ErrInvalidMovement
	}
	if (sign > 0 && m.QuantityDelta < 0) || (sign < 0 && m.QuantityDelta > 0) {
		return ErrInvalidMovement
	}
	if entity.IsAdjustment(m.Type) && m.Reason == "" {
		return ErrInvalidMovement
	}
	return nil
}
