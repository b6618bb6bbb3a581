package repository

import (
	"context"

	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// ItemRepository define el puerto de consulta de ítems de catálogo.
// La gestión del catálogo (altas, edición de atributos) es externa; el kardex
// solo necesita leer identidad, punto de reorden y política de stock.
type ItemRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Item, error)
}
