package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// StockUpdateFailureRepository persiste las solicitudes fallidas (dead-letter).
type StockUpdateFailureRepository interface {
	Create(ctx context.Context, failure *entity.StockUpdateFailure) error
	ListRecent(ctx context.Context, limit int) ([]*entity.StockUpdateFailure, error)
}
