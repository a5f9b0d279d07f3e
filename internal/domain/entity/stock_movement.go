package entity

import (
	"math"
	"time"
)

// Acciones de stock aceptadas.
const (
	ActionStockIn = "stock-in" // entrada
	ActionSale    = "sale"     // venta
	ActionRemove  = "remove"   // baja
)

// MovementTimestampLayout formato con el que se exponen los timestamps de movimientos.
const MovementTimestampLayout = "2006-01-02 15:04:05"

// ValidAction indica si action es una de las acciones conocidas.
func ValidAction(action string) bool {
	switch action {
	case ActionStockIn, ActionSale, ActionRemove:
		return true
	}
	return false
}

// Delta devuelve el efecto de la acción sobre la cantidad: +amount en entradas, -amount en ventas y bajas.
func Delta(action string, amount int64) int64 {
	if action == ActionStockIn {
		return amount
	}
	return -amount
}

// ApplyDelta suma delta a quantity; false si el resultado no cabe en int64.
func ApplyDelta(quantity, delta int64) (int64, bool) {
	if delta > 0 && quantity > math.MaxInt64-delta {
		return quantity, false
	}
	if delta < 0 && quantity < math.MinInt64-delta {
		return quantity, false
	}
	return quantity + delta, true
}

// StockMovement registro inmutable de una acción aplicada. Solo se agrega, nunca se modifica.
type StockMovement struct {
	ID        int64
	StoreID   int64
	ProductID int64
	Action    string
	Amount    int64 // siempre > 0; el signo lo determina Action
	Timestamp time.Time
}

// StockAction una acción a aplicar por el ledger.
type StockAction struct {
	StoreID   int64
	ProductID int64
	Action    string
	Amount    int64
	Timestamp time.Time
}

// Key devuelve la clave (tienda, producto) de la acción.
func (a StockAction) Key() StockKey {
	return StockKey{StoreID: a.StoreID, ProductID: a.ProductID}
}
