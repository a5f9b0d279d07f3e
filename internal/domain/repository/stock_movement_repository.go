package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia para movimientos de stock (solo inserción).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// ListByStore lista movimientos con timestamp en [from, to], ordenados por timestamp e id.
	ListByStore(ctx context.Context, storeID int64, from, to time.Time) ([]*entity.StockMovement, error)
	// ListByKey lista todos los movimientos de un par (tienda, producto) en orden de aplicación.
	ListByKey(ctx context.Context, storeID, productID int64) ([]*entity.StockMovement, error)
}
