package inventory

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ Applier = (*Ledger)(nil)

var tracer = otel.Tracer("github.com/jhoicas/stock-ledger-api/internal/application/inventory")

// Ledger aplica acciones de stock de forma transaccional. Mantiene la invariante
// cantidad = suma de movimientos aplicados para cada (tienda, producto).
//
// Dos Apply sobre la misma clave se serializan con un lock en proceso y con el bloqueo de
// fila del repositorio (SELECT FOR UPDATE); claves distintas no comparten ningún lock.
type Ledger struct {
	txRunner TxRunner
	locks    *keyLocker
}

// NewLedger construye el ledger.
func NewLedger(txRunner TxRunner) *Ledger {
	return &Ledger{txRunner: txRunner, locks: newKeyLocker()}
}

// Apply bloquea la clave, crea el stock si no existe, aplica el delta, persiste la cantidad
// y agrega el movimiento con el mismo timestamp; todo en una transacción.
// Devuelve la cantidad resultante.
func (l *Ledger) Apply(ctx context.Context, action entity.StockAction) (int64, error) {
	ctx, span := tracer.Start(ctx, "ledger.Apply")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("stock.store_id", action.StoreID),
		attribute.Int64("stock.product_id", action.ProductID),
		attribute.String("stock.action", action.Action),
		attribute.Int64("stock.amount", action.Amount),
	)

	qty, err := l.apply(ctx, action)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	span.SetAttributes(attribute.Int64("stock.quantity_after", qty))
	return qty, nil
}

func (l *Ledger) apply(ctx context.Context, action entity.StockAction) (int64, error) {
	if !entity.ValidAction(action.Action) {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidAction, action.Action)
	}
	if action.Amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}

	unlock, err := l.locks.Lock(ctx, action.Key())
	if err != nil {
		return 0, fmt.Errorf("%w: lock stock %d/%d: %w", domain.ErrConflict, action.StoreID, action.ProductID, err)
	}
	defer unlock()

	// Sin timestamp se asigna con el lock tomado: el orden de timestamps sigue al de aplicación.
	// Un timestamp explícito se respeta tal cual; quien lo fija debe serializar por clave.
	if action.Timestamp.IsZero() {
		action.Timestamp = time.Now()
	}
	action.Timestamp = action.Timestamp.UTC()

	var quantityAfter int64
	err = l.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
		storeRepo repository.StoreRepository,
		productRepo repository.ProductRepository,
	) error {
		// Integridad referencial: no se crean filas huérfanas
		store, err := storeRepo.GetByID(ctx, action.StoreID)
		if err != nil {
			return err
		}
		if store == nil {
			return domain.ErrStoreNotFound
		}
		product, err := productRepo.GetByID(ctx, action.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrProductNotFound
		}

		stock, err := stockRepo.GetForUpdate(ctx, action.StoreID, action.ProductID)
		if err != nil {
			return err
		}
		next, ok := entity.ApplyDelta(stock.Quantity, entity.Delta(action.Action, action.Amount))
		if !ok {
			return fmt.Errorf("%w: stock %d/%d = %d, %s %d",
				domain.ErrQuantityOverflow, action.StoreID, action.ProductID, stock.Quantity, action.Action, action.Amount)
		}
		stock.Quantity = next
		stock.UpdatedAt = action.Timestamp
		if err := stockRepo.Upsert(ctx, stock); err != nil {
			return err
		}

		mov := &entity.StockMovement{
			StoreID:   action.StoreID,
			ProductID: action.ProductID,
			Action:    action.Action,
			Amount:    action.Amount,
			Timestamp: action.Timestamp,
		}
		if err := movRepo.Create(ctx, mov); err != nil {
			return err
		}
		quantityAfter = stock.Quantity
		return nil
	})
	if err != nil {
		return 0, err
	}
	return quantityAfter, nil
}
