package usecase

import (
	"context"

	"energyfit/internal/domain/entity"
)

// OrderUsecase exposes a seller's sales.
type OrderUsecase interface {
	// ListBySeller returns the acting seller's orders, newest first.
	ListBySeller(ctx context.Context, actor entity.PrincipalView) ([]*entity.Order, error)

	// RevenueTotal sums the acting seller's completed orders.
	RevenueTotal(ctx context.Context, actor entity.PrincipalView) (float64, error)
}
