package repository

import (
	"context"

	"energyfit/internal/domain/entity"
)

// ProductRepository persists the product catalog.
type ProductRepository interface {
	// List returns every product, newest first.
	List(ctx context.Context) ([]*entity.Product, error)

	// ListBySeller returns the products owned by a seller.
	ListBySeller(ctx context.Context, sellerID int64) ([]*entity.Product, error)

	// FindByID returns the product or ErrProductNotFound.
	FindByID(ctx context.Context, id int64) (*entity.Product, error)

	// Create inserts a product and sets its ID.
	Create(ctx context.Context, product *entity.Product) error

	// Update saves every mutable field of the product.
	Update(ctx context.Context, product *entity.Product) error

	// Delete removes a product. A missing row yields ErrProductNotFound.
	Delete(ctx context.Context, id int64) error
}
