package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
)

// Códigos SQLSTATE que indican conflicto de concurrencia (reintentable).
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeForeignKeyViolation  = "23503"
)

// mapError traduce errores de PostgreSQL a errores de dominio conservando el original.
func mapError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable:
			return fmt.Errorf("%w: %s: %w", domain.ErrConflict, op, err)
		case codeForeignKeyViolation:
			switch pgErr.ConstraintName {
			case "stock_store_id_fkey", "stock_movement_store_id_fkey":
				return fmt.Errorf("%w: %s", domain.ErrStoreNotFound, op)
			case "stock_product_id_fkey", "stock_movement_product_id_fkey":
				return fmt.Errorf("%w: %s", domain.ErrProductNotFound, op)
			}
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
