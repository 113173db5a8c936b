package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
)

// Errores del motor de finalización (taxonomía cerrada; todos abortan la
// transacción completa y ninguno se reintenta automáticamente).
var (
	ErrScheduleNotFound      = errors.New("programación de servicio no encontrada")
	ErrInvalidScheduleState  = errors.New("estado de programación inválido para finalizar")
	ErrNoActiveRecipe        = errors.New("el SKU no tiene receta activa")
	ErrInsufficientInventory = errors.New("inventario insuficiente")
	ErrQualityGateBlocked    = errors.New("hay lotes con cantidad pero ninguno pasa la puerta de calidad")
)
