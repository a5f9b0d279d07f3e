package inventory

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

var _ Submitter = (*Dispatcher)(nil)

// DispatcherConfig parámetros del pool de workers.
type DispatcherConfig struct {
	Workers      int           // cantidad de workers (particiones por clave)
	QueueSize    int           // capacidad de la cola de cada worker
	ApplyTimeout time.Duration // presupuesto por solicitud, incluidos los reintentos
	MaxRetries   int           // reintentos ante conflictos de concurrencia
	RetryBackoff time.Duration // espera inicial entre reintentos (se duplica en cada intento)
}

func (c *DispatcherConfig) defaults() {
	if c.Workers <= 0 {
		c.Workers = 8
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	if c.ApplyTimeout <= 0 {
		c.ApplyTimeout = 10 * time.Second
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 50 * time.Millisecond
	}
}

// Dispatcher recibe solicitudes de actualización de stock y las aplica fuera del request HTTP.
//
// Cada (tienda, producto) se asigna siempre al mismo worker (hash de la clave), cuya cola FIFO
// conserva el orden de admisión por clave. Submit nunca espera al ledger: si la cola del worker
// está llena devuelve domain.ErrDispatcherBusy.
type Dispatcher struct {
	cfg     DispatcherConfig
	ledger  Applier
	tracker *StatusTracker
	sinks   []FailureSink
	log     zerolog.Logger
	now     func() time.Time

	mu      sync.RWMutex
	closed  bool
	started bool
	queues  []chan entity.StockUpdateRequest
	wg      sync.WaitGroup
}

// NewDispatcher construye el despachador; Start lanza los workers.
func NewDispatcher(ledger Applier, tracker *StatusTracker, log zerolog.Logger, cfg DispatcherConfig, sinks ...FailureSink) *Dispatcher {
	cfg.defaults()
	if tracker == nil {
		tracker = NewStatusTracker(0)
	}
	queues := make([]chan entity.StockUpdateRequest, cfg.Workers)
	for i := range queues {
		queues[i] = make(chan entity.StockUpdateRequest, cfg.QueueSize)
	}
	return &Dispatcher{
		cfg:     cfg,
		ledger:  ledger,
		tracker: tracker,
		sinks:   sinks,
		log:     log.With().Str("component", "dispatcher").Logger(),
		now:     time.Now,
		queues:  queues,
	}
}

// Start lanza un worker por cola. Llamar una sola vez.
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true
	for i, q := range d.queues {
		d.wg.Add(1)
		go d.worker(i, q)
	}
	d.log.Info().Int("workers", len(d.queues)).Int("queue_size", d.cfg.QueueSize).Msg("despachador iniciado")
}

// Submit encola la solicitud y devuelve su estado inicial (queued) sin esperar al ledger.
func (d *Dispatcher) Submit(req entity.StockUpdateRequest) (*entity.StockUpdateStatus, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, domain.ErrDispatcherClosed
	}
	if req.SubmittedAt.IsZero() {
		req.SubmittedAt = d.now().UTC()
	}
	q := d.queues[d.partition(req.StoreID, req.ProductID)]
	// El estado se registra antes de encolar para que el worker siempre lo encuentre.
	st := d.tracker.Queued(req)
	select {
	case q <- req:
		return st, nil
	default:
		d.tracker.Forget(req.RequestID)
		return nil, domain.ErrDispatcherBusy
	}
}

// Status devuelve el estado de una solicitud aceptada.
func (d *Dispatcher) Status(requestID string) (*entity.StockUpdateStatus, bool) {
	return d.tracker.Get(requestID)
}

// Shutdown deja de aceptar solicitudes, drena las colas y espera a los workers o a ctx.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, q := range d.queues {
			close(q)
		}
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		d.log.Info().Msg("despachador detenido")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) partition(storeID, productID int64) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(storeID, 10)))
	_, _ = h.Write([]byte{'/'})
	_, _ = h.Write([]byte(strconv.FormatInt(productID, 10)))
	return int(h.Sum32() % uint32(len(d.queues)))
}

func (d *Dispatcher) worker(id int, q <-chan entity.StockUpdateRequest) {
	defer d.wg.Done()
	for req := range q {
		d.process(id, req)
	}
}

// process aplica una solicitud con timeout y reintentos; registra el estado terminal.
func (d *Dispatcher) process(workerID int, req entity.StockUpdateRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.ApplyTimeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "dispatcher.process", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()
	span.SetAttributes(
		attribute.String("stock.request_id", req.RequestID),
		attribute.Int("dispatcher.worker", workerID),
	)

	log := d.log.With().
		Str("request_id", req.RequestID).
		Int64("store_id", req.StoreID).
		Int64("product_id", req.ProductID).
		Str("action", req.Action).
		Int64("amount", req.Amount).
		Logger()

	attempts := 0
	var qty int64
	apply := func() error {
		attempts++
		// El timestamp se asigna al momento de la ejecución, no de la recepción.
		var err error
		qty, err = d.ledger.Apply(ctx, req.ToAction(d.now().UTC()))
		if err != nil && !errors.Is(err, domain.ErrConflict) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Int("attempts", attempts).Dur("backoff", wait).Msg("conflicto de concurrencia, reintentando")
	}

	if err := backoff.RetryNotify(apply, d.retryPolicy(ctx), notify); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.fail(ctx, log, req, err, attempts)
		return
	}
	d.tracker.Applied(req.RequestID, qty)
	log.Debug().Int("attempts", attempts).Int64("quantity_after", qty).Msg("actualización de stock aplicada")
}

// retryPolicy backoff exponencial (x2) desde RetryBackoff, acotado por MaxRetries y por ctx.
func (d *Dispatcher) retryPolicy(ctx context.Context) backoff.BackOffContext {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = d.cfg.RetryBackoff
	eb.Multiplier = 2
	eb.RandomizationFactor = 0.2
	eb.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(d.cfg.MaxRetries)), ctx)
}

func (d *Dispatcher) fail(ctx context.Context, log zerolog.Logger, req entity.StockUpdateRequest, err error, attempts int) {
	reason := err.Error()
	if errors.Is(err, context.DeadlineExceeded) {
		reason = "timeout: " + reason
	}
	d.tracker.Failed(req.RequestID, reason)
	log.Error().Err(err).Int("attempts", attempts).Bool("client_error", domain.IsClientError(err)).
		Msg("actualización de stock fallida")

	failure := &entity.StockUpdateFailure{
		RequestID: req.RequestID,
		StoreID:   req.StoreID,
		ProductID: req.ProductID,
		Action:    req.Action,
		Amount:    req.Amount,
		Reason:    reason,
		Attempts:  attempts,
		FailedAt:  d.now().UTC(),
	}
	// Sin el deadline de la solicitud (puede haber expirado) pero con su span.
	sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	for _, sink := range d.sinks {
		if err := sink.RecordFailure(sinkCtx, failure); err != nil {
			log.Error().Err(err).Msg("no se pudo registrar la falla en dead-letter")
		}
	}
}
