package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var (
	_ repository.StoreRepository              = (*StoreRepo)(nil)
	_ repository.ProductRepository            = (*ProductRepo)(nil)
	_ repository.StockRepository              = (*StockRepo)(nil)
	_ repository.StockMovementRepository      = (*StockMovementRepo)(nil)
	_ repository.StockUpdateFailureRepository = (*StockUpdateFailureRepo)(nil)
	_ inventory.FailureSink                   = (*StockUpdateFailureRepo)(nil)
)

// StoreRepo tiendas en memoria.
type StoreRepo struct {
	s  *Store
	tx *tx
}

// Create asigna ID y CreatedAt.
func (r *StoreRepo) Create(_ context.Context, store *entity.Store) error {
	store.ID = r.s.nextID("store")
	store.CreatedAt = r.s.now().UTC()
	if r.tx != nil {
		r.tx.stores = append(r.tx.stores, store)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.stores[store.ID] = *store
	return nil
}

// GetByID devuelve nil, nil si no existe.
func (r *StoreRepo) GetByID(_ context.Context, id int64) (*entity.Store, error) {
	if r.tx != nil {
		for _, st := range r.tx.stores {
			if st.ID == id {
				out := *st
				return &out, nil
			}
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	st, ok := r.s.stores[id]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

// ProductRepo productos en memoria.
type ProductRepo struct {
	s  *Store
	tx *tx
}

// Create asigna ID y CreatedAt.
func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	product.ID = r.s.nextID("product")
	product.CreatedAt = r.s.now().UTC()
	if r.tx != nil {
		r.tx.products = append(r.tx.products, product)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products[product.ID] = *product
	return nil
}

// GetByID devuelve nil, nil si no existe.
func (r *ProductRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	if r.tx != nil {
		for _, p := range r.tx.products {
			if p.ID == id {
				out := *p
				return &out, nil
			}
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// StockRepo stock en memoria.
type StockRepo struct {
	s  *Store
	tx *tx
}

// GetForUpdate devuelve la fila (creándola en 0 si falta). No bloquea.
func (r *StockRepo) GetForUpdate(_ context.Context, storeID, productID int64) (*entity.Stock, error) {
	key := entity.StockKey{StoreID: storeID, ProductID: productID}
	if r.tx != nil {
		if st, ok := r.tx.stocks[key]; ok {
			return &st, nil
		}
	}
	r.s.mu.RLock()
	st, ok := r.s.stocks[key]
	r.s.mu.RUnlock()
	if !ok {
		st = entity.Stock{
			ID:        r.s.nextID("stock"),
			StoreID:   storeID,
			ProductID: productID,
			UpdatedAt: r.s.now().UTC(),
		}
	}
	if err := r.Upsert(context.Background(), &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Upsert persiste la cantidad.
func (r *StockRepo) Upsert(_ context.Context, stock *entity.Stock) error {
	key := stock.Key()
	if r.tx != nil {
		r.tx.stocks[key] = *stock
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if stock.ID == 0 {
		if prev, ok := r.s.stocks[key]; ok {
			stock.ID = prev.ID
		} else {
			r.s.seq["stock"]++
			stock.ID = r.s.seq["stock"]
		}
	}
	r.s.stocks[key] = *stock
	return nil
}

// ListByStore lista el stock de una tienda ordenado por producto.
func (r *StockRepo) ListByStore(_ context.Context, storeID int64) ([]*entity.Stock, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Stock
	for _, st := range r.s.stocks {
		if st.StoreID == storeID {
			st := st
			list = append(list, &st)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ProductID < list[j].ProductID })
	return list, nil
}

// StockMovementRepo movimientos en memoria (solo inserción).
type StockMovementRepo struct {
	s  *Store
	tx *tx
}

// Create asigna ID al movimiento.
func (r *StockMovementRepo) Create(_ context.Context, movement *entity.StockMovement) error {
	movement.ID = r.s.nextID("movement")
	movement.Timestamp = movement.Timestamp.UTC()
	if r.tx != nil {
		r.tx.movements = append(r.tx.movements, movement)
		return nil
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.movements = append(r.s.movements, *movement)
	return nil
}

// ListByStore lista movimientos con timestamp en [from, to] por timestamp e id.
func (r *StockMovementRepo) ListByStore(_ context.Context, storeID int64, from, to time.Time) ([]*entity.StockMovement, error) {
	return r.filter(func(m entity.StockMovement) bool {
		return m.StoreID == storeID && !m.Timestamp.Before(from) && !m.Timestamp.After(to)
	}), nil
}

// ListByKey lista los movimientos de un par (tienda, producto).
func (r *StockMovementRepo) ListByKey(_ context.Context, storeID, productID int64) ([]*entity.StockMovement, error) {
	return r.filter(func(m entity.StockMovement) bool {
		return m.StoreID == storeID && m.ProductID == productID
	}), nil
}

func (r *StockMovementRepo) filter(match func(m entity.StockMovement) bool) []*entity.StockMovement {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.StockMovement
	for _, m := range r.s.movements {
		if match(m) {
			m := m
			list = append(list, &m)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].Timestamp.Equal(list[j].Timestamp) {
			return list[i].Timestamp.Before(list[j].Timestamp)
		}
		return list[i].ID < list[j].ID
	})
	return list
}

// StockUpdateFailureRepo dead-letter en memoria.
type StockUpdateFailureRepo struct {
	s *Store
}

// Create asigna ID a la falla.
func (r *StockUpdateFailureRepo) Create(_ context.Context, f *entity.StockUpdateFailure) error {
	f.ID = r.s.nextID("failure")
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.failures = append(r.s.failures, *f)
	return nil
}

// RecordFailure implementa inventory.FailureSink.
func (r *StockUpdateFailureRepo) RecordFailure(ctx context.Context, f *entity.StockUpdateFailure) error {
	return r.Create(ctx, f)
}

// ListRecent devuelve las últimas fallas, más recientes primero.
func (r *StockUpdateFailureRepo) ListRecent(_ context.Context, limit int) ([]*entity.StockUpdateFailure, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.StockUpdateFailure
	for i := len(r.s.failures) - 1; i >= 0 && (limit <= 0 || len(list) < limit); i-- {
		f := r.s.failures[i]
		list = append(list, &f)
	}
	return list, nil
}
