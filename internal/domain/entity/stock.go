package entity

import "time"

// Stock representa la cantidad actual de un producto en una tienda.
// Existe a lo sumo una fila por (StoreID, ProductID); se crea con la primera acción aplicada.
// Quantity puede ser negativa: no hay piso.
type Stock struct {
	ID        int64
	StoreID   int64
	ProductID int64
	Quantity  int64
	UpdatedAt time.Time
}

// StockKey identifica el contador de un producto en una tienda.
type StockKey struct {
	StoreID   int64
	ProductID int64
}

// Key devuelve la clave (tienda, producto) del stock.
func (s *Stock) Key() StockKey {
	return StockKey{StoreID: s.StoreID, ProductID: s.ProductID}
}
