package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidMovement      = errors.New("movimiento inválido")
	ErrReferenceIntegrity   = errors.New("ítem o bodega desconocidos")
	ErrInsufficientStock    = errors.New("stock insuficiente")
	ErrPriceNotFound        = errors.New("precio no encontrado para la fecha")
	ErrAmbiguousPriceWindow = errors.New("ventanas de precio superpuestas para el ítem")
	ErrTransferFailed       = errors.New("traslado fallido: revertido con movimiento compensatorio")
	ErrProjectionDrift      = errors.New("balance proyectado difiere del recalculado desde el kardex")
)
