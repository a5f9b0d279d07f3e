package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// StoreUseCase casos de uso de tiendas.
type StoreUseCase struct {
	repo repository.StoreRepository
}

// NewStoreUseCase construye el caso de uso.
func NewStoreUseCase(repo repository.StoreRepository) *StoreUseCase {
	return &StoreUseCase{repo: repo}
}

// Create crea una nueva tienda.
func (uc *StoreUseCase) Create(ctx context.Context, in dto.CreateStoreRequest) (*dto.CreatedResponse, error) {
	name, err := validName(in.Name)
	if err != nil {
		return nil, err
	}
	store := &entity.Store{Name: name, CreatedAt: time.Now().UTC()}
	if err := uc.repo.Create(ctx, store); err != nil {
		return nil, err
	}
	return &dto.CreatedResponse{Message: "Store added", ID: store.ID}, nil
}

// validName recorta espacios y exige 1..MaxNameLength caracteres.
func validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domain.ErrMissingField
	}
	if len([]rune(name)) > entity.MaxNameLength {
		return "", domain.ErrInvalidInput
	}
	return name, nil
}
