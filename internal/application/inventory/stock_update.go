package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// StockUpdateUseCase valida solicitudes de POST /stock y las entrega al despachador.
// Rechaza acciones desconocidas y cantidades no positivas antes de aceptar.
type StockUpdateUseCase struct {
	dispatcher  Submitter
	storeRepo   repository.StoreRepository
	productRepo repository.ProductRepository
	tracker     *StatusTracker
	failures    repository.StockUpdateFailureRepository
}

// NewStockUpdateUseCase construye el caso de uso. failures puede ser nil si no hay dead-letter persistente.
func NewStockUpdateUseCase(
	dispatcher Submitter,
	storeRepo repository.StoreRepository,
	productRepo repository.ProductRepository,
	tracker *StatusTracker,
	failures repository.StockUpdateFailureRepository,
) *StockUpdateUseCase {
	return &StockUpdateUseCase{
		dispatcher:  dispatcher,
		storeRepo:   storeRepo,
		productRepo: productRepo,
		tracker:     tracker,
		failures:    failures,
	}
}

// Submit valida la solicitud, verifica que tienda y producto existan y la encola.
// No espera a que el ledger la aplique.
func (uc *StockUpdateUseCase) Submit(ctx context.Context, in dto.StockUpdateRequest) (*dto.StockUpdateAccepted, error) {
	switch {
	case in.StoreID == nil:
		return nil, fmt.Errorf("%w: store_id", domain.ErrMissingField)
	case in.ProductID == nil:
		return nil, fmt.Errorf("%w: product_id", domain.ErrMissingField)
	case in.Action == nil || *in.Action == "":
		return nil, fmt.Errorf("%w: action", domain.ErrMissingField)
	case in.Amount == nil:
		return nil, fmt.Errorf("%w: amount", domain.ErrMissingField)
	}
	if !entity.ValidAction(*in.Action) {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidAction, *in.Action)
	}
	if *in.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	store, err := uc.storeRepo.GetByID(ctx, *in.StoreID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.ErrStoreNotFound
	}
	product, err := uc.productRepo.GetByID(ctx, *in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrProductNotFound
	}

	st, err := uc.dispatcher.Submit(entity.StockUpdateRequest{
		RequestID: uuid.New().String(),
		StoreID:   *in.StoreID,
		ProductID: *in.ProductID,
		Action:    *in.Action,
		Amount:    *in.Amount,
	})
	if err != nil {
		return nil, err
	}
	return &dto.StockUpdateAccepted{
		Message:   fmt.Sprintf("Stock update for store %d accepted.", st.StoreID),
		RequestID: st.RequestID,
		StoreID:   st.StoreID,
		Status:    st.Status,
	}, nil
}

// Status devuelve el estado de una solicitud; nil si no se conoce.
func (uc *StockUpdateUseCase) Status(requestID string) *dto.StockUpdateStatusResponse {
	st, ok := uc.tracker.Get(requestID)
	if !ok {
		return nil
	}
	return &dto.StockUpdateStatusResponse{
		RequestID:     st.RequestID,
		StoreID:       st.StoreID,
		ProductID:     st.ProductID,
		Status:        st.Status,
		QuantityAfter: st.QuantityAfter,
		Error:         st.Error,
		UpdatedAt:     st.UpdatedAt,
	}
}

// RecentFailures lista las últimas solicitudes fallidas registradas en dead-letter.
func (uc *StockUpdateUseCase) RecentFailures(ctx context.Context, limit int) ([]dto.StockUpdateFailureResponse, error) {
	if uc.failures == nil {
		return []dto.StockUpdateFailureResponse{}, nil
	}
	list, err := uc.failures.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockUpdateFailureResponse, 0, len(list))
	for _, f := range list {
		out = append(out, dto.StockUpdateFailureResponse{
			RequestID: f.RequestID,
			StoreID:   f.StoreID,
			ProductID: f.ProductID,
			Action:    f.Action,
			Amount:    f.Amount,
			Reason:    f.Reason,
			Attempts:  f.Attempts,
			FailedAt:  f.FailedAt,
		})
	}
	return out, nil
}
