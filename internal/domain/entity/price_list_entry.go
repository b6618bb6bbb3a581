package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceListEntry define el precio unitario de un ítem dentro de una lista de
// precios para una ventana temporal [EffectiveFrom, EffectiveTo).
// EffectiveTo nil significa vigencia abierta. Ventanas superpuestas para el
// mismo ítem en la misma lista son una violación de invariante.
type PriceListEntry struct {
	ID            string
	PriceListID   string
	ItemID        string
	UnitPrice     decimal.Decimal
	Currency      string
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
	CreatedAt     time.Time
}

// Contains indica si asOf cae dentro de la ventana de vigencia.
func (e *PriceListEntry) Contains(asOf time.Time) bool {
	if asOf.Before(e.EffectiveFrom) {
		return false
	}
	return e.EffectiveTo == nil || asOf.Before(*e.EffectiveTo)
}
