package inventory

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// keyLocker entrega un mutex por (tienda, producto). Claves distintas nunca comparten lock
// y las entradas sin usuarios se eliminan del mapa.
type keyLocker struct {
	mu    sync.Mutex
	locks map[entity.StockKey]*keyLock
}

type keyLock struct {
	sem  *semaphore.Weighted
	refs int
}

func newKeyLocker() *keyLocker {
	return &keyLocker{locks: make(map[entity.StockKey]*keyLock)}
}

// Lock bloquea la clave o falla cuando ctx termina. La función devuelta libera el lock.
func (k *keyLocker) Lock(ctx context.Context, key entity.StockKey) (func(), error) {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &keyLock{sem: semaphore.NewWeighted(1)}
		k.locks[key] = l
	}
	l.refs++
	k.mu.Unlock()

	if err := l.sem.Acquire(ctx, 1); err != nil {
		k.release(key, l)
		return nil, err
	}
	return func() {
		l.sem.Release(1)
		k.release(key, l)
	}, nil
}

func (k *keyLocker) release(key entity.StockKey, l *keyLock) {
	k.mu.Lock()
	defer k.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(k.locks, key)
	}
}

// size devuelve la cantidad de claves con usuarios activos.
func (k *keyLocker) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
