package entity

import "time"

// Store representa una tienda (física o virtual) que mantiene inventario.
type Store struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}
