package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Kardex-api/internal/application/ledger"
	"github.com/jhoicas/Kardex-api/internal/domain/entity"
)

// RegisterMovementRequest cuerpo para registrar un movimiento simple.
// movement_id es opcional: fijarlo permite reintentar la petición de forma
// idempotente si el cliente no recibió respuesta.
type RegisterMovementRequest struct {
	MovementID  string `json:"movement_id"`
	Type        string `json:"type"`
	ItemID      string `json:"item_id"`
	WarehouseID string `json:"warehouse_id"`
	Quantity    int64  `json:"quantity"`
	Reference   string `json:"reference"`
	Reason      string `json:"reason"`
	Actor       string `json:"actor"`
}

// TransferRequest cuerpo para trasladar stock entre bodegas.
type TransferRequest struct {
	ItemID          string `json:"item_id"`
	FromWarehouseID string `json:"from_warehouse_id"`
	ToWarehouseID   string `json:"to_warehouse_id"`
	Quantity        int64  `json:"quantity"`
	Actor           string `json:"actor"`
}

// MovementResponse movimiento confirmado del kardex.
type MovementResponse struct {
	MovementID    string    `json:"movement_id"`
	ItemID        string    `json:"item_id"`
	WarehouseID   string    `json:"warehouse_id"`
	Type          string    `json:"type"`
	QuantityDelta int64     `json:"quantity_delta"`
	Reference     string    `json:"reference,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	Actor         string    `json:"actor"`
	OccurredAt    time.Time `json:"occurred_at"`
	Sequence      int64     `json:"sequence"`
}

// NewMovementResponse mapea la entidad al DTO.
func NewMovementResponse(m *entity.Movement) MovementResponse {
	return MovementResponse{
		MovementID:    m.ID,
		ItemID:        m.ItemID,
		WarehouseID:   m.WarehouseID,
		Type:          m.Type,
		QuantityDelta: m.QuantityDelta,
		Reference:     m.Reference,
		Reason:        m.Reason,
		Actor:         m.Actor,
		OccurredAt:    m.OccurredAt,
		Sequence:      m.Sequence,
	}
}

// MovementListResponse página de movimientos.
type MovementListResponse struct {
	Total     int                `json:"total"`
	Movements []MovementResponse `json:"movements"`
}

// TransferResponse grupo de traslado confirmado.
type TransferResponse struct {
	Reference       string           `json:"reference"`
	ItemID          string           `json:"item_id"`
	FromWarehouseID string           `json:"from_warehouse_id"`
	ToWarehouseID   string           `json:"to_warehouse_id"`
	Quantity        int64            `json:"quantity"`
	Out             MovementResponse `json:"out"`
	In              MovementResponse `json:"in"`
}

// NewTransferResponse mapea el grupo de traslado al DTO.
func NewTransferResponse(g *entity.TransferGroup) TransferResponse {
	return TransferResponse{
		Reference:       g.Reference,
		ItemID:          g.ItemID,
		FromWarehouseID: g.FromWarehouseID,
		ToWarehouseID:   g.ToWarehouseID,
		Quantity:        g.Quantity,
		Out:             NewMovementResponse(g.Out),
		In:              NewMovementResponse(g.In),
	}
}

// BalanceResponse balance proyectado de una clave (ítem, bodega).
type BalanceResponse struct {
	ItemID      string `json:"item_id"`
	WarehouseID string `json:"warehouse_id"`
	OnHand      int64  `json:"on_hand"`
}

// PriceResponse precio resuelto para un ítem, lista y fecha.
type PriceResponse struct {
	ItemID        string          `json:"item_id"`
	PriceListID   string          `json:"price_list_id"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Currency      string          `json:"currency"`
	EffectiveFrom time.Time       `json:"effective_from"`
	EffectiveTo   *time.Time      `json:"effective_to,omitempty"`
}

// ReorderAlertResponse clave en o bajo el punto de reorden.
type ReorderAlertResponse struct {
	ItemID       string `json:"item_id"`
	SKU          string `json:"sku"`
	WarehouseID  string `json:"warehouse_id"`
	OnHand       int64  `json:"on_hand"`
	ReorderPoint int64  `json:"reorder_point"`
	Deficit      int64  `json:"deficit"`
}

// NewReorderAlertResponse mapea la alerta al DTO.
func NewReorderAlertResponse(a ledger.ReorderAlert) ReorderAlertResponse {
	return ReorderAlertResponse{
		ItemID:       a.ItemID,
		SKU:          a.SKU,
		WarehouseID:  a.WarehouseID,
		OnHand:       a.OnHand,
		ReorderPoint: a.ReorderPoint,
		Deficit:      a.Deficit,
	}
}

// ConsistencyCheckResponse resultado de una verificación manual.
type ConsistencyCheckResponse struct {
	DriftedKeys int    `json:"drifted_keys"`
	Status      string `json:"status"` // ok | repaired
}
