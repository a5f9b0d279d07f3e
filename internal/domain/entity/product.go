package entity

import "time"

// Product representa un tipo de artículo que puede tener stock en una tienda.
type Product struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// MaxNameLength longitud máxima de nombre para tiendas y productos.
const MaxNameLength = 50
