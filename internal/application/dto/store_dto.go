package dto

// CreateStoreRequest body para POST /store.
type CreateStoreRequest struct {
	Name string `json:"name" validate:"required,min=1,max=50"`
}
