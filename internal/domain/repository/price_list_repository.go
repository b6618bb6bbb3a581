package repository

import (
	"context"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// PriceListRepository define el puerto de consulta de listas de precios.
// La resolución de precio es una lectura pura: nunca muta el kardex.
type PriceListRepository interface {
	// ListForItem devuelve todas las entradas del ítem en la lista indicada,
	// sin filtrar por vigencia; el resolver decide la ventana aplicable.
	ListForItem(ctx context.Context, priceListID, itemID string) ([]*entity.PriceListEntry, error)
}
