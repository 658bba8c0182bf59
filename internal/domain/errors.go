package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvariantViolation = errors.New("violación de invariante de inventario")
	ErrInvalidTransition  = errors.New("transición de estado inválida")
	ErrValidation         = errors.New("entrada inválida")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrNoPendingChanges   = errors.New("no hay cambios pendientes por guardar")
	ErrUnauthorized       = errors.New("no autorizado")
)
