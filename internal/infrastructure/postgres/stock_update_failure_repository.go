package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var (
	_ repository.StockUpdateFailureRepository = (*StockUpdateFailureRepo)(nil)
	_ inventory.FailureSink                   = (*StockUpdateFailureRepo)(nil)
)

// StockUpdateFailureRepo tabla dead-letter de solicitudes fallidas.
type StockUpdateFailureRepo struct {
	q Querier
}

// NewStockUpdateFailureRepository construye el adaptador.
func NewStockUpdateFailureRepository(q Querier) *StockUpdateFailureRepo {
	return &StockUpdateFailureRepo{q: q}
}

// Create persiste la falla y asigna su ID.
func (r *StockUpdateFailureRepo) Create(ctx context.Context, f *entity.StockUpdateFailure) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO stock_update_failures (request_id, store_id, product_id, action, amount, reason, attempts, failed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		f.RequestID, f.StoreID, f.ProductID, f.Action, f.Amount, f.Reason, f.Attempts, f.FailedAt,
	).Scan(&f.ID)
	if err != nil {
		return fmt.Errorf("insert stock update failure: %w", err)
	}
	return nil
}

// RecordFailure implementa inventory.FailureSink.
func (r *StockUpdateFailureRepo) RecordFailure(ctx context.Context, f *entity.StockUpdateFailure) error {
	return r.Create(ctx, f)
}

// ListRecent devuelve las últimas fallas, más recientes primero.
func (r *StockUpdateFailureRepo) ListRecent(ctx context.Context, limit int) ([]*entity.StockUpdateFailure, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, request_id, store_id, product_id, action, amount, reason, attempts, failed_at
		FROM stock_update_failures
		ORDER BY failed_at DESC, id DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list stock update failures: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockUpdateFailure
	for rows.Next() {
		var f entity.StockUpdateFailure
		if err := rows.Scan(&f.ID, &f.RequestID, &f.StoreID, &f.ProductID, &f.Action, &f.Amount,
			&f.Reason, &f.Attempts, &f.FailedAt); err != nil {
			return nil, fmt.Errorf("scan stock update failure: %w", err)
		}
		list = append(list, &f)
	}
	return list, rows.Err()
}
