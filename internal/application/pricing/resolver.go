package pricing

import (
	"context"
	"time"

	"github.com/jhoicas/Kardex-api/internal/domain"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

// Resolver determina el precio unitario vigente de un ítem en una lista de
// precios a una fecha dada. Lectura pura: nunca muta el kardex.
type Resolver struct {
	prices repository.PriceListRepository
}

// NewResolver construye el resolver de precios.
func NewResolver(prices repository.PriceListRepository) *Resolver {
	return &Resolver{prices: prices}
}

// Resolve selecciona la entrada cuya ventana [EffectiveFrom, EffectiveTo)
// contiene asOf. Sin coincidencias devuelve ErrPriceNotFound (el caller decide
// si recurre a una lista por defecto); más de una coincidencia es una
// violación de invariante y devuelve ErrAmbiguousPriceWindow en vez de
// escoger a ciegas.
func (r *Resolver) Resolve(ctx context.Context, itemID, priceListID string, asOf time.Time) (*entity.PriceListEntry, error) {
	entries, err := r.prices.ListForItem(ctx, priceListID, itemID)
	if err != nil {
		return nil, err
	}
	var match *entity.PriceListEntry
	for _, e := range entries {
		if !e.Contains(asOf) {
			continue
		}
		if match != nil {
			return nil, domain.ErrAmbiguousPriceWindow
		}
		match = e
	}
	if match == nil {
		return nil, domain.ErrPriceNotFound
	}
	return match, nil
}
