package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound         = errors.New("recurso no encontrado")
	ErrStoreNotFound    = errors.New("tienda no encontrada")
	ErrProductNotFound  = errors.New("producto no encontrado")
	ErrInvalidInput     = errors.New("entrada inválida")
	ErrMissingField     = errors.New("campo requerido")
	ErrInvalidAction    = errors.New("acción de stock desconocida")
	ErrInvalidAmount    = errors.New("la cantidad debe ser un entero positivo")
	ErrInvalidDate      = errors.New("la fecha debe tener formato YYYY-MM-DD")
	ErrQuantityOverflow = errors.New("la cantidad resultante excede el rango permitido")
	ErrUnauthorized     = errors.New("no autorizado")
	ErrConflict         = errors.New("conflicto con el estado actual")
	ErrDispatcherBusy   = errors.New("cola de actualizaciones llena")
	ErrDispatcherClosed = errors.New("el despachador está detenido")
)

// IsClientError indica si el error proviene de datos enviados por el cliente
// y por lo tanto no debe reintentarse.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidAction) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrQuantityOverflow) ||
		errors.Is(err, ErrStoreNotFound) ||
		errors.Is(err, ErrProductNotFound)
}
