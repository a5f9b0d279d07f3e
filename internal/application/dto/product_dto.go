package dto

// CreateProductRequest body para POST /product.
type CreateProductRequest struct {
	Name string `json:"name" validate:"required,min=1,max=50"`
}
