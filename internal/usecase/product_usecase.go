package usecase

import (
	"context"

	"energyfit/internal/domain/entity"
)

// CreateProductInput defines a new catalog item.
type CreateProductInput struct {
	Name        string
	Price       float64
	Description string
	CategoryID  string
	Image       string
}

// ProductUsecase defines catalog browsing and seller-side management.
type ProductUsecase interface {
	List(ctx context.Context) ([]*entity.Product, error)
	ListBySeller(ctx context.Context, sellerID int64) ([]*entity.Product, error)
	Get(ctx context.Context, id int64) (*entity.Product, error)

	// Create adds a product owned by the acting seller.
	Create(ctx context.Context, actor entity.PrincipalView, input *CreateProductInput) (*entity.Product, error)

	// Update applies the non-empty fields of patch. Sellers may only touch their own
	// products; administrators may touch any.
	Update(ctx context.Context, actor entity.PrincipalView, id int64, patch *entity.ProductPatch) (*entity.Product, error)

	// Delete removes a product under the same ownership rule as Update.
	Delete(ctx context.Context, actor entity.PrincipalView, id int64) error
}
