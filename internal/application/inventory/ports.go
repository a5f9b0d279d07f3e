package inventory

import (
	"context"

	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el ledger: cantidad y movimiento se confirman juntos o ninguno.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		movRepo repository.StockMovementRepository,
		storeRepo repository.StoreRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// Applier aplica una acción de stock; lo implementa *Ledger.
type Applier interface {
	Apply(ctx context.Context, action entity.StockAction) (int64, error)
}

// FailureSink recibe las solicitudes que terminan en Failed (log, dead-letter, Kafka).
type FailureSink interface {
	RecordFailure(ctx context.Context, failure *entity.StockUpdateFailure) error
}

// Submitter encola solicitudes de actualización; lo implementa *Dispatcher.
type Submitter interface {
	Submit(req entity.StockUpdateRequest) (*entity.StockUpdateStatus, error)
}
