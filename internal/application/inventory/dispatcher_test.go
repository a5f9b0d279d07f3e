package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Mocks
// ──────────────────────────────────────────────────────────────────────────────

type mockApplier struct {
	mock.Mock
}

func (m *mockApplier) Apply(ctx context.Context, a entity.StockAction) (int64, error) {
	args := m.Called(ctx, a)
	return args.Get(0).(int64), args.Error(1)
}

type recordingSink struct {
	mu       sync.Mutex
	failures []*entity.StockUpdateFailure
}

func (s *recordingSink) RecordFailure(_ context.Context, f *entity.StockUpdateFailure) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, f)
	return nil
}

func (s *recordingSink) all() []*entity.StockUpdateFailure {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*entity.StockUpdateFailure(nil), s.failures...)
}

func request(id string, storeID, productID int64, act string, amount int64) entity.StockUpdateRequest {
	return entity.StockUpdateRequest{RequestID: id, StoreID: storeID, ProductID: productID, Action: act, Amount: amount}
}

func waitStatus(t *testing.T, d *inventory.Dispatcher, id string) *entity.StockUpdateStatus {
	t.Helper()
	var st *entity.StockUpdateStatus
	require.Eventually(t, func() bool {
		s, ok := d.Status(id)
		if !ok || s.Status == entity.UpdateStatusQueued {
			return false
		}
		st = s
		return true
	}, 2*time.Second, 2*time.Millisecond)
	return st
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestDispatcher_AplicaTodasLasSolicitudes(t *testing.T) {
	st := seededStore(t, 2, 2)
	tracker := inventory.NewStatusTracker(0)
	d := inventory.NewDispatcher(inventory.NewLedger(st), tracker, zerolog.Nop(),
		inventory.DispatcherConfig{Workers: 4, QueueSize: 512})
	d.Start()

	const perKey = 50
	for i := 0; i < perKey; i++ {
		for s := int64(1); s <= 2; s++ {
			for p := int64(1); p <= 2; p++ {
				_, err := d.Submit(request(fmt.Sprintf("%d-%d-%d", s, p, i), s, p, entity.ActionStockIn, 2))
				require.NoError(t, err)
			}
		}
	}
	require.NoError(t, d.Shutdown(context.Background()))

	for s := int64(1); s <= 2; s++ {
		for p := int64(1); p <= 2; p++ {
			qty, _ := quantity(t, st, s, p)
			assert.Equal(t, int64(2*perKey), qty)
			_, n := sumOfMovements(t, st, s, p)
			assert.Equal(t, perKey, n, "exactamente un movimiento por solicitud aceptada")
		}
	}
	got, ok := d.Status("1-1-0")
	require.True(t, ok)
	assert.Equal(t, entity.UpdateStatusApplied, got.Status)
}

func TestDispatcher_ReenvioNoEsIdempotente(t *testing.T) {
	st := seededStore(t, 1, 1)
	d := inventory.NewDispatcher(inventory.NewLedger(st), nil, zerolog.Nop(), inventory.DispatcherConfig{Workers: 1})
	d.Start()

	_, err := d.Submit(request("a", 1, 1, entity.ActionStockIn, 3))
	require.NoError(t, err)
	_, err = d.Submit(request("b", 1, 1, entity.ActionStockIn, 3))
	require.NoError(t, err)
	require.NoError(t, d.Shutdown(context.Background()))

	qty, _ := quantity(t, st, 1, 1)
	assert.Equal(t, int64(6), qty)
}

func TestDispatcher_OrdenFIFOPorClave(t *testing.T) {
	st := seededStore(t, 1, 1)
	d := inventory.NewDispatcher(inventory.NewLedger(st), nil, zerolog.Nop(), inventory.DispatcherConfig{Workers: 3})
	d.Start()

	_, err := d.Submit(request("in", 1, 1, entity.ActionStockIn, 10))
	require.NoError(t, err)
	_, err = d.Submit(request("sale", 1, 1, entity.ActionSale, 4))
	require.NoError(t, err)
	require.NoError(t, d.Shutdown(context.Background()))

	in, _ := d.Status("in")
	sale, _ := d.Status("sale")
	require.NotNil(t, in.QuantityAfter)
	require.NotNil(t, sale.QuantityAfter)
	assert.Equal(t, int64(10), *in.QuantityAfter)
	assert.Equal(t, int64(6), *sale.QuantityAfter)
}

func TestDispatcher_ReintentaConflictos(t *testing.T) {
	app := &mockApplier{}
	app.On("Apply", mock.Anything, mock.Anything).Return(int64(0), fmt.Errorf("%w: serialization", domain.ErrConflict)).Twice()
	app.On("Apply", mock.Anything, mock.Anything).Return(int64(5), nil).Once()

	d := inventory.NewDispatcher(app, nil, zerolog.Nop(), inventory.DispatcherConfig{
		Workers: 1, MaxRetries: 3, RetryBackoff: time.Millisecond,
	})
	d.Start()
	_, err := d.Submit(request("r1", 1, 1, entity.ActionStockIn, 5))
	require.NoError(t, err)

	st := waitStatus(t, d, "r1")
	assert.Equal(t, entity.UpdateStatusApplied, st.Status)
	assert.Equal(t, int64(5), *st.QuantityAfter)
	require.NoError(t, d.Shutdown(context.Background()))
	app.AssertNumberOfCalls(t, "Apply", 3)
}

func TestDispatcher_AgotaReintentos(t *testing.T) {
	app := &mockApplier{}
	app.On("Apply", mock.Anything, mock.Anything).Return(int64(0), domain.ErrConflict)
	sink := &recordingSink{}

	d := inventory.NewDispatcher(app, nil, zerolog.Nop(), inventory.DispatcherConfig{
		Workers: 1, MaxRetries: 2, RetryBackoff: time.Millisecond,
	}, sink)
	d.Start()
	_, err := d.Submit(request("r2", 1, 1, entity.ActionSale, 1))
	require.NoError(t, err)
	require.NoError(t, d.Shutdown(context.Background()))

	st, ok := d.Status("r2")
	require.True(t, ok)
	assert.Equal(t, entity.UpdateStatusFailed, st.Status)
	app.AssertNumberOfCalls(t, "Apply", 3)

	failures := sink.all()
	require.Len(t, failures, 1)
	assert.Equal(t, 3, failures[0].Attempts)
}

func TestDispatcher_ErrorDeClienteNoSeReintenta(t *testing.T) {
	app := &mockApplier{}
	app.On("Apply", mock.Anything, mock.Anything).Return(int64(0), domain.ErrStoreNotFound).Once()
	sink := &recordingSink{}

	d := inventory.NewDispatcher(app, nil, zerolog.Nop(), inventory.DispatcherConfig{
		Workers: 1, MaxRetries: 5, RetryBackoff: time.Millisecond,
	}, sink)
	d.Start()
	_, err := d.Submit(request("r3", 7, 8, entity.ActionRemove, 2))
	require.NoError(t, err)
	require.NoError(t, d.Shutdown(context.Background()))

	app.AssertNumberOfCalls(t, "Apply", 1)
	st, _ := d.Status("r3")
	assert.Equal(t, entity.UpdateStatusFailed, st.Status)
	assert.Contains(t, st.Error, domain.ErrStoreNotFound.Error())

	failures := sink.all()
	require.Len(t, failures, 1)
	f := failures[0]
	assert.Equal(t, "r3", f.RequestID)
	assert.Equal(t, int64(7), f.StoreID)
	assert.Equal(t, int64(8), f.ProductID)
	assert.Equal(t, entity.ActionRemove, f.Action)
	assert.Equal(t, int64(2), f.Amount)
	assert.Equal(t, 1, f.Attempts)
	assert.False(t, f.FailedAt.IsZero())
}

func TestDispatcher_FallaConAlmacenamientoReal(t *testing.T) {
	st := seededStore(t, 1, 1)
	sink := st.Failures()
	d := inventory.NewDispatcher(inventory.NewLedger(st), nil, zerolog.Nop(), inventory.DispatcherConfig{Workers: 1}, sink)
	d.Start()

	// La tienda existía al validar pero no al aplicar (p. ej. borrada fuera de banda).
	_, err := d.Submit(request("gone", 42, 1, entity.ActionStockIn, 1))
	require.NoError(t, err)
	require.NoError(t, d.Shutdown(context.Background()))

	list, err := sink.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "gone", list[0].RequestID)
}

func TestDispatcher_TimeoutDeAplicacion(t *testing.T) {
	app := &mockApplier{}
	app.On("Apply", mock.Anything, mock.Anything).Return(int64(0), context.DeadlineExceeded).Run(func(args mock.Arguments) {
		<-args.Get(0).(context.Context).Done()
	}).Once()

	d := inventory.NewDispatcher(app, nil, zerolog.Nop(), inventory.DispatcherConfig{
		Workers: 1, ApplyTimeout: 10 * time.Millisecond,
	})
	d.Start()
	_, err := d.Submit(request("slow", 1, 1, entity.ActionSale, 1))
	require.NoError(t, err)

	st := waitStatus(t, d, "slow")
	assert.Equal(t, entity.UpdateStatusFailed, st.Status)
	assert.Contains(t, st.Error, "timeout")
	require.NoError(t, d.Shutdown(context.Background()))
}

func TestDispatcher_ColaLlena(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 4)
	app := &mockApplier{}
	app.On("Apply", mock.Anything, mock.Anything).Return(int64(1), nil).Run(func(mock.Arguments) {
		started <- struct{}{}
		<-release
	})

	d := inventory.NewDispatcher(app, nil, zerolog.Nop(), inventory.DispatcherConfig{Workers: 1, QueueSize: 1})
	d.Start()

	_, err := d.Submit(request("a", 1, 1, entity.ActionStockIn, 1))
	require.NoError(t, err)
	// El worker toma "a" y queda bloqueado en Apply.
	<-started
	_, err = d.Submit(request("b", 1, 1, entity.ActionStockIn, 1))
	require.NoError(t, err)

	_, err = d.Submit(request("c", 1, 1, entity.ActionStockIn, 1))
	assert.ErrorIs(t, err, domain.ErrDispatcherBusy)
	_, ok := d.Status("c")
	assert.False(t, ok, "una solicitud rechazada no queda registrada")

	close(release)
	require.NoError(t, d.Shutdown(context.Background()))
}

func TestDispatcher_CerradoRechaza(t *testing.T) {
	d := inventory.NewDispatcher(&mockApplier{}, nil, zerolog.Nop(), inventory.DispatcherConfig{})
	d.Start()
	require.NoError(t, d.Shutdown(context.Background()))

	_, err := d.Submit(request("x", 1, 1, entity.ActionSale, 1))
	assert.ErrorIs(t, err, domain.ErrDispatcherClosed)
	assert.NoError(t, d.Shutdown(context.Background()), "Shutdown es idempotente")
}

func TestDispatcher_ShutdownRespetaContexto(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	app := &mockApplier{}
	app.On("Apply", mock.Anything, mock.Anything).Return(int64(1), nil).Run(func(mock.Arguments) { <-release })

	d := inventory.NewDispatcher(app, nil, zerolog.Nop(), inventory.DispatcherConfig{Workers: 1})
	d.Start()
	_, err := d.Submit(request("a", 1, 1, entity.ActionStockIn, 1))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = d.Shutdown(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
