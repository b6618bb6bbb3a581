package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.PriceListRepository = (*PriceList)(nil)

// PriceList almacén de listas de precios en memoria.
type PriceList struct {
	mu      sync.RWMutex
	entries []*entity.PriceListEntry
}

// NewPriceList construye el almacén, opcionalmente sembrado.
func NewPriceList(entries ...*entity.PriceListEntry) *PriceList {
	p := &PriceList{}
	for _, e := range entries {
		p.Add(e)
	}
	return p
}

// Add agrega una entrada. No valida superposición de ventanas: esa invariante
// la detecta el resolver al fallar con ventana ambigua.
func (p *PriceList) Add(e *entity.PriceListEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cp := *e
	p.entries = append(p.entries, &cp)
}

// ListForItem devuelve todas las entradas del ítem en la lista indicada.
func (p *PriceList) ListForItem(_ context.Context, priceListID, itemID string) ([]*entity.PriceListEntry, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []*entity.PriceListEntry
	for _, e := range p.entries {
		if e.PriceListID == priceListID && e.ItemID == itemID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}
