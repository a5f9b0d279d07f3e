package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

const movementColumns = `id, store_id, product_id, action, amount, timestamp`

// Create persiste un movimiento y asigna su ID.
func (r *StockMovementRepo) Create(ctx context.Context, movement *entity.StockMovement) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO stock_movement (store_id, product_id, action, amount, timestamp)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		movement.StoreID, movement.ProductID, movement.Action, movement.Amount, movement.Timestamp,
	).Scan(&movement.ID)
	if err != nil {
		return mapError("create stock movement", err)
	}
	return nil
}

// ListByStore lista movimientos de una tienda con timestamp en [from, to].
func (r *StockMovementRepo) ListByStore(ctx context.Context, storeID int64, from, to time.Time) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+movementColumns+`
		FROM stock_movement
		WHERE store_id = $1 AND timestamp >= $2 AND timestamp <= $3
		ORDER BY timestamp, id`,
		storeID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return scanMovements(rows)
}

// ListByKey lista los movimientos de un par (tienda, producto) en orden de inserción.
func (r *StockMovementRepo) ListByKey(ctx context.Context, storeID, productID int64) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+movementColumns+`
		FROM stock_movement
		WHERE store_id = $1 AND product_id = $2
		ORDER BY id`,
		storeID, productID,
	)
	if err != nil {
		return nil, fmt.Errorf("list movements by key: %w", err)
	}
	return scanMovements(rows)
}

func scanMovements(rows pgx.Rows) ([]*entity.StockMovement, error) {
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.StoreID, &m.ProductID, &m.Action, &m.Amount, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.Timestamp = m.Timestamp.UTC()
		list = append(list, &m)
	}
	return list, rows.Err()
}
