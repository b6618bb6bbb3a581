package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
	"github.com/jhoicas/Kardex-api/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemCatalog)(nil)
var _ repository.WarehouseRepository = (*WarehouseCatalog)(nil)

// ItemCatalog catálogo de ítems en memoria (tests y despliegues embebidos).
type ItemCatalog struct {
	mu    sync.RWMutex
	items map[string]*entity.Item
}

// NewItemCatalog construye el catálogo, opcionalmente sembrado.
func NewItemCatalog(items ...*entity.Item) *ItemCatalog {
	c := &ItemCatalog{items: make(map[string]*entity.Item)}
	for _, it := range items {
		c.Put(it)
	}
	return c
}

// Put agrega o reemplaza un ítem.
func (c *ItemCatalog) Put(item *entity.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *item
	c.items[item.ID] = &cp
}

// GetByID devuelve el ítem o nil si no existe.
func (c *ItemCatalog) GetByID(_ context.Context, id string) (*entity.Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if it, ok := c.items[id]; ok {
		cp := *it
		return &cp, nil
	}
	return nil, nil
}

// List devuelve los ítems ordenados por SKU.
func (c *ItemCatalog) List(_ context.Context, limit, offset int) ([]*entity.Item, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	all := make([]*entity.Item, 0, len(c.items))
	for _, it := range c.items {
		cp := *it
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SKU < all[j].SKU })
	return page(all, limit, offset), nil
}

// WarehouseCatalog catálogo de bodegas en memoria.
type WarehouseCatalog struct {
	mu         sync.RWMutex
	warehouses map[string]*entity.Warehouse
}

// NewWarehouseCatalog construye el catálogo, opcionalmente sembrado.
func NewWarehouseCatalog(warehouses ...*entity.Warehouse) *WarehouseCatalog {
	c := &WarehouseCatalog{warehouses: make(map[string]*entity.Warehouse)}
	for _, wh := range warehouses {
		c.Put(wh)
	}
	return c
}

// Put agrega o reemplaza una bodega.
func (c *WarehouseCatalog) Put(wh *entity.Warehouse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := *wh
	c.warehouses[wh.ID] = &cp
}

// Deactivate marca la bodega como inactiva (las bodegas nunca se eliminan).
func (c *WarehouseCatalog) Deactivate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if wh, ok := c.warehouses[id]; ok {
		wh.Active = false
	}
}

// GetByID devuelve la bodega o nil si no existe.
func (c *WarehouseCatalog) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if wh, ok := c.warehouses[id]; ok {
		cp := *wh
		return &cp, nil
	}
	return nil, nil
}

// List devuelve las bodegas ordenadas por código.
func (c *WarehouseCatalog) List(_ context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	all := make([]*entity.Warehouse, 0, len(c.warehouses))
	for _, wh := range c.warehouses {
		cp := *wh
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	return page(all, limit, offset), nil
}

func page[T any](all []T, limit, offset int) []T {
	if offset > len(all) {
		offset = len(all)
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all
}
