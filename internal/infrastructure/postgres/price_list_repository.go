package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.PriceListRepository = (*PriceListRepo)(nil)

// PriceListRepo consulta de listas de precios sobre PostgreSQL.
type PriceListRepo struct {
	q Querier
}

// NewPriceListRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPriceListRepository(q Querier) *PriceListRepo {
	return &PriceListRepo{q: q}
}

// ListForItem devuelve todas las entradas del ítem en la lista indicada,
// sin filtrar por vigencia.
func (r *PriceListRepo) ListForItem(ctx context.Context, priceListID, itemID string) ([]*entity.PriceListEntry, error) {
	query := `
		SELECT id, price_list_id, item_id, unit_price, currency, effective_from, effective_to, created_at
		FROM price_list_entries
		WHERE price_list_id = $1 AND item_id = $2
		ORDER BY effective_from`
	rows, err := r.q.Query(ctx, query, priceListID, itemID)
	if err != nil {
		return nil, fmt.Errorf("list price entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.PriceListEntry
	for rows.Next() {
		var e entity.PriceListEntry
		if err := rows.Scan(&e.ID, &e.PriceListID, &e.ItemID, &e.UnitPrice,
			&e.Currency, &e.EffectiveFrom, &e.EffectiveTo, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan price entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
