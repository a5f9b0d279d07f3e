package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
// FOR UPDATE no bloquea filas inexistentes, así que primero se inserta la fila en 0 si falta:
// dos transacciones concurrentes sobre una clave nueva terminan esperando la misma fila.
func (r *StockRepo) GetForUpdate(ctx context.Context, storeID, productID int64) (*entity.Stock, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock (store_id, product_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (store_id, product_id) DO NOTHING`,
		storeID, productID,
	)
	if err != nil {
		return nil, mapError("ensure stock row", err)
	}

	var s entity.Stock
	err = r.q.QueryRow(ctx, `
		SELECT id, store_id, product_id, quantity, updated_at
		FROM stock WHERE store_id = $1 AND product_id = $2
		FOR UPDATE`,
		storeID, productID,
	).Scan(&s.ID, &s.StoreID, &s.ProductID, &s.Quantity, &s.UpdatedAt)
	if err != nil {
		return nil, mapError("get stock for update", err)
	}
	return &s, nil
}

// Upsert inserta o actualiza la cantidad en stock (por tienda y producto).
func (r *StockRepo) Upsert(ctx context.Context, stock *entity.Stock) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO stock (store_id, product_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (store_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = EXCLUDED.updated_at
		RETURNING id`,
		stock.StoreID, stock.ProductID, stock.Quantity, stock.UpdatedAt,
	).Scan(&stock.ID)
	if err != nil {
		return mapError("upsert stock", err)
	}
	return nil
}

// ListByStore lista el stock de una tienda ordenado por producto.
func (r *StockRepo) ListByStore(ctx context.Context, storeID int64) ([]*entity.Stock, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, store_id, product_id, quantity, updated_at
		FROM stock WHERE store_id = $1 ORDER BY product_id`,
		storeID,
	)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var list []*entity.Stock
	for rows.Next() {
		var s entity.Stock
		if err := rows.Scan(&s.ID, &s.StoreID, &s.ProductID, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
