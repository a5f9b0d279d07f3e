package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

// Store almacenamiento en proceso para STORE_DRIVER=memory y para tests.
//
// Las transacciones acumulan escrituras y las confirman juntas bajo el mutex; no hay bloqueo
// de filas, así que dos Run concurrentes sobre la misma clave pueden pisarse. El ledger
// serializa por clave antes de llegar aquí.
type Store struct {
	mu        sync.RWMutex
	seq       map[string]int64
	stores    map[int64]entity.Store
	products  map[int64]entity.Product
	stocks    map[entity.StockKey]entity.Stock
	movements []entity.StockMovement
	failures  []entity.StockUpdateFailure
	now       func() time.Time
}

// NewStore construye un almacenamiento vacío.
func NewStore() *Store {
	return &Store{
		seq:      make(map[string]int64),
		stores:   make(map[int64]entity.Store),
		products: make(map[int64]entity.Product),
		stocks:   make(map[entity.StockKey]entity.Stock),
		now:      time.Now,
	}
}

func (s *Store) nextID(table string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq[table]++
	return s.seq[table]
}

// Stores repositorio de tiendas fuera de transacción.
func (s *Store) Stores() *StoreRepo { return &StoreRepo{s: s} }

// Products repositorio de productos fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Stocks repositorio de stock fuera de transacción.
func (s *Store) Stocks() *StockRepo { return &StockRepo{s: s} }

// Movements repositorio de movimientos fuera de transacción.
func (s *Store) Movements() *StockMovementRepo { return &StockMovementRepo{s: s} }

// Failures repositorio dead-letter.
func (s *Store) Failures() *StockUpdateFailureRepo { return &StockUpdateFailureRepo{s: s} }

// tx escrituras pendientes de una transacción.
type tx struct {
	stocks    map[entity.StockKey]entity.Stock
	movements []*entity.StockMovement
	stores    []*entity.Store
	products  []*entity.Product
}

// Run ejecuta fn con repos atados a una transacción; si fn falla nada de lo escrito queda visible.
func (s *Store) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	movRepo repository.StockMovementRepository,
	storeRepo repository.StoreRepository,
	productRepo repository.ProductRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t := &tx{stocks: make(map[entity.StockKey]entity.Stock)}
	if err := fn(
		&StockRepo{s: s, tx: t},
		&StockMovementRepo{s: s, tx: t},
		&StoreRepo{s: s, tx: t},
		&ProductRepo{s: s, tx: t},
	); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.commit(t)
	return nil
}

func (s *Store) commit(t *tx) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range t.stores {
		s.stores[st.ID] = *st
	}
	for _, p := range t.products {
		s.products[p.ID] = *p
	}
	for k, st := range t.stocks {
		s.stocks[k] = st
	}
	for _, m := range t.movements {
		s.movements = append(s.movements, *m)
	}
}
