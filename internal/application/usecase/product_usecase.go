package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// ProductUseCase casos de uso de productos.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// Create crea un nuevo producto.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.CreatedResponse, error) {
	name, err := validName(in.Name)
	if err != nil {
		return nil, err
	}
	product := &entity.Product{Name: name, CreatedAt: time.Now().UTC()}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return &dto.CreatedResponse{Message: "Product added", ID: product.ID}, nil
}
