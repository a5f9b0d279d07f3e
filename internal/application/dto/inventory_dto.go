package dto

import "time"

// StockUpdateRequest body para POST /stock. Los punteros permiten distinguir campos ausentes de ceros.
type StockUpdateRequest struct {
	StoreID   *int64  `json:"store_id"`
	ProductID *int64  `json:"product_id"`
	Action    *string `json:"action"`
	Amount    *int64  `json:"amount"`
}

// StockUpdateAccepted respuesta 202 de POST /stock.
type StockUpdateAccepted struct {
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	StoreID   int64  `json:"store_id"`
	Status    string `json:"status"`
}

// StockUpdateStatusResponse estado de una solicitud (GET /stock/requests/:id).
type StockUpdateStatusResponse struct {
	RequestID     string    `json:"request_id"`
	StoreID       int64     `json:"store_id"`
	ProductID     int64     `json:"product_id"`
	Status        string    `json:"status"`
	QuantityAfter *int64    `json:"quantity_after,omitempty"`
	Error         string    `json:"error,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// InventoryItem una fila de GET /inventory.
type InventoryItem struct {
	ProductID int64 `json:"product_id"`
	StoreID   int64 `json:"store_id"`
	Quantity  int64 `json:"quantity"`
}

// MovementResponse una fila de GET /movements; timestamp como YYYY-MM-DD HH:MM:SS (UTC).
type MovementResponse struct {
	ProductID int64  `json:"product_id"`
	StoreID   int64  `json:"store_id"`
	Action    string `json:"action"`
	Amount    int64  `json:"amount"`
	Timestamp string `json:"timestamp"`
}

// StockUpdateFailureResponse una fila de GET /stock/failures.
type StockUpdateFailureResponse struct {
	RequestID string    `json:"request_id"`
	StoreID   int64     `json:"store_id"`
	ProductID int64     `json:"product_id"`
	Action    string    `json:"action"`
	Amount    int64     `json:"amount"`
	Reason    string    `json:"reason"`
	Attempts  int       `json:"attempts"`
	FailedAt  time.Time `json:"failed_at"`
}
