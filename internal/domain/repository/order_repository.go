package repository

import (
	"context"

	"energyfit/internal/domain/entity"
)

// OrderRepository reads the sales recorded against sellers.
type OrderRepository interface {
	// ListBySeller returns the seller's orders, newest first.
	ListBySeller(ctx context.Context, sellerID int64) ([]*entity.Order, error)
	// SumCompletedTotal adds up the totals of the seller's completed orders.
	// A seller without completed orders sums to zero.
	SumCompletedTotal(ctx context.Context, sellerID int64) (float64, error)
}
