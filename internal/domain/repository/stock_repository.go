package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// StockRepository define el puerto para consultar/actualizar stock por tienda+producto.
// GetForUpdate y Upsert se usan dentro de transacciones (TxRunner) para garantizar consistencia.
type StockRepository interface {
	// GetForUpdate obtiene el stock y bloquea la fila hasta el fin de la transacción.
	// Si la fila no existe se crea con cantidad 0 dentro de la misma transacción.
	GetForUpdate(ctx context.Context, storeID, productID int64) (*entity.Stock, error)
	// Upsert persiste la cantidad del stock.
	Upsert(ctx context.Context, stock *entity.Stock) error
	// ListByStore devuelve todas las filas de stock de una tienda.
	ListByStore(ctx context.Context, storeID int64) ([]*entity.Stock, error)
}
