package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Kardex-api/internal/application/dto"
	"github.com/jhoicas/Kardex-api/internal/application/pricing"
	"github.com/jhoicas/Kardex-api/internal/domain"
)

// PriceHandler maneja la resolución de precios.
type PriceHandler struct {
	resolver *pricing.Resolver
}

// NewPriceHandler construye el handler.
func NewPriceHandler(resolver *pricing.Resolver) *PriceHandler {
	return &PriceHandler{resolver: resolver}
}

// Resolve devuelve el precio unitario vigente para (ítem, lista, fecha).
// as_of es opcional (RFC3339); vacío = ahora.
// GET /api/prices/resolve?item_id=&price_list_id=&as_of=
func (h *PriceHandler) Resolve(c *fiber.Ctx) error {
	itemID := c.Query("item_id")
	priceListID := c.Query("price_list_id")
	if itemID == "" || priceListID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "item_id y price_list_id son obligatorios"})
	}
	asOf := time.Now()
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "as_of inválido (RFC3339)"})
		}
		asOf = parsed
	}

	entry, err := h.resolver.Resolve(c.Context(), itemID, priceListID, asOf)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPriceNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "PRICE_NOT_FOUND", Message: err.Error()})
		case errors.Is(err, domain.ErrAmbiguousPriceWindow):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "AMBIGUOUS_PRICE_WINDOW", Message: err.Error()})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
		}
	}
	return c.JSON(dto.PriceResponse{
		ItemID:        entry.ItemID,
		PriceListID:   entry.PriceListID,
		UnitPrice:     entry.UnitPrice,
		Currency:      entry.Currency,
		EffectiveFrom: entry.EffectiveFrom,
		EffectiveTo:   entry.EffectiveTo,
	})
}
