package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// DateLayout formato de fechas aceptado en consultas de movimientos.
const DateLayout = "2006-01-02"

// QueryUseCase consultas de solo lectura: inventario actual e historial de movimientos.
// No pasa por el despachador; puede observar el estado previo o posterior de un Apply en curso.
type QueryUseCase struct {
	stockRepo    repository.StockRepository
	movementRepo repository.StockMovementRepository
}

// NewQueryUseCase construye el caso de uso de consultas.
func NewQueryUseCase(stockRepo repository.StockRepository, movementRepo repository.StockMovementRepository) *QueryUseCase {
	return &QueryUseCase{stockRepo: stockRepo, movementRepo: movementRepo}
}

// GetInventory devuelve todas las filas de stock de la tienda. Lista vacía si no hay stock.
func (uc *QueryUseCase) GetInventory(ctx context.Context, storeID int64) ([]dto.InventoryItem, error) {
	stocks, err := uc.stockRepo.ListByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.InventoryItem, 0, len(stocks))
	for _, s := range stocks {
		out = append(out, dto.InventoryItem{
			ProductID: s.ProductID,
			StoreID:   s.StoreID,
			Quantity:  s.Quantity,
		})
	}
	return out, nil
}

// GetMovements lista los movimientos de la tienda con timestamp en [start, end].
// Las fechas son días YYYY-MM-DD interpretados como medianoche UTC.
func (uc *QueryUseCase) GetMovements(ctx context.Context, storeID int64, startDate, endDate string) ([]dto.MovementResponse, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return nil, err
	}
	movs, err := uc.movementRepo.ListByStore(ctx, storeID, start, end)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, dto.MovementResponse{
			ProductID: m.ProductID,
			StoreID:   m.StoreID,
			Action:    m.Action,
			Amount:    m.Amount,
			Timestamp: m.Timestamp.UTC().Format(entity.MovementTimestampLayout),
		})
	}
	return out, nil
}

// ParseDate interpreta YYYY-MM-DD como medianoche UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidDate, s)
	}
	return t, nil
}
