package inventory

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// StatusTracker guarda en memoria el estado de las últimas solicitudes para que el cliente
// pueda consultar el resultado de una actualización ya aceptada.
// Al superar la capacidad se descartan las solicitudes más antiguas: las lecturas usan Peek,
// así que el orden de descarte es el de admisión.
type StatusTracker struct {
	// mu protege los estados apuntados por la caché; la caché en sí es concurrente.
	mu    sync.RWMutex
	cache *lru.Cache[string, *entity.StockUpdateStatus]
	now   func() time.Time
}

// NewStatusTracker construye el tracker. capacity <= 0 usa 10000.
func NewStatusTracker(capacity int) *StatusTracker {
	if capacity <= 0 {
		capacity = 10000
	}
	// lru.New solo falla con tamaño no positivo.
	cache, _ := lru.New[string, *entity.StockUpdateStatus](capacity)
	return &StatusTracker{cache: cache, now: time.Now}
}

// Queued registra una solicitud recién aceptada.
func (t *StatusTracker) Queued(req entity.StockUpdateRequest) *entity.StockUpdateStatus {
	st := &entity.StockUpdateStatus{
		RequestID: req.RequestID,
		StoreID:   req.StoreID,
		ProductID: req.ProductID,
		Status:    entity.UpdateStatusQueued,
		UpdatedAt: t.now().UTC(),
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cache.Add(req.RequestID, st)
	out := *st
	return &out
}

// Applied marca la solicitud como aplicada con la cantidad resultante.
func (t *StatusTracker) Applied(requestID string, quantityAfter int64) {
	t.update(requestID, func(st *entity.StockUpdateStatus) {
		st.Status = entity.UpdateStatusApplied
		st.QuantityAfter = &quantityAfter
	})
}

// Failed marca la solicitud como fallida.
func (t *StatusTracker) Failed(requestID, reason string) {
	t.update(requestID, func(st *entity.StockUpdateStatus) {
		st.Status = entity.UpdateStatusFailed
		st.Error = reason
	})
}

// Get devuelve una copia del estado o false si la solicitud no se conoce (o ya fue descartada).
func (t *StatusTracker) Get(requestID string) (*entity.StockUpdateStatus, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	st, ok := t.cache.Peek(requestID)
	if !ok {
		return nil, false
	}
	out := *st
	return &out, true
}

// Forget elimina una solicitud que no llegó a encolarse.
func (t *StatusTracker) Forget(requestID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cache.Remove(requestID)
}

func (t *StatusTracker) update(requestID string, fn func(st *entity.StockUpdateStatus)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	st, ok := t.cache.Peek(requestID)
	if !ok {
		return
	}
	fn(st)
	st.UpdatedAt = t.now().UTC()
}
