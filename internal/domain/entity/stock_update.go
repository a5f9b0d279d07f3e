package entity

import "time"

// Estados de una solicitud de actualización de stock.
const (
	UpdateStatusQueued  = "queued"
	UpdateStatusApplied = "applied"
	UpdateStatusFailed  = "failed"
)

// StockUpdateRequest solicitud aceptada por el despachador; el timestamp se asigna al procesarla.
type StockUpdateRequest struct {
	RequestID   string
	StoreID     int64
	ProductID   int64
	Action      string
	Amount      int64
	SubmittedAt time.Time
}

// ToAction convierte la solicitud en una acción de ledger con el timestamp de ejecución.
func (r StockUpdateRequest) ToAction(at time.Time) StockAction {
	return StockAction{
		StoreID:   r.StoreID,
		ProductID: r.ProductID,
		Action:    r.Action,
		Amount:    r.Amount,
		Timestamp: at,
	}
}

// StockUpdateStatus estado observable de una solicitud.
type StockUpdateStatus struct {
	RequestID     string
	StoreID       int64
	ProductID     int64
	Status        string
	QuantityAfter *int64
	Error         string
	UpdatedAt     time.Time
}

// StockUpdateFailure registro de dead-letter para una solicitud que terminó en Failed.
type StockUpdateFailure struct {
	ID        int64
	RequestID string
	StoreID   int64
	ProductID int64
	Action    string
	Amount    int64
	Reason    string
	Attempts  int
	FailedAt  time.Time
}
