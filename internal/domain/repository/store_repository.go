package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// StoreRepository define el puerto de persistencia para Store (DIP).
type StoreRepository interface {
	// Create persiste la tienda y asigna store.ID.
	Create(ctx context.Context, store *entity.Store) error
	// GetByID devuelve nil, nil si la tienda no existe.
	GetByID(ctx context.Context, id int64) (*entity.Store, error)
}
