package database

import (
	"context"
	"time"

	"energyfit/internal/domain/entity"
	domainerrors "energyfit/internal/domain/errors"
	"energyfit/internal/domain/repository"
	"energyfit/internal/errors"
	"energyfit/internal/infra/persistence/model"

	"gorm.io/gorm"
)

// productRepository implements repository.ProductRepository over produtos.
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository is the constructor for productRepository.
func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

// List returns the whole catalog, newest first.
func (repo *productRepository) List(ctx context.Context) ([]*entity.Product, error) {
	var productModels []model.ProdutoModel
	if err := repo.db.WithContext(ctx).Order("id DESC").Find(&productModels).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list products")
	}

	return toProductDomains(productModels), nil
}

// ListBySeller returns the products owned by one seller.
func (repo *productRepository) ListBySeller(ctx context.Context, sellerID int64) ([]*entity.Product, error) {
	var productModels []model.ProdutoModel
	if err := repo.db.WithContext(ctx).
		Where("vendedor_id = ?", sellerID).
		Order("id DESC").
		Find(&productModels).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list seller products")
	}

	return toProductDomains(productModels), nil
}

// FindByID retrieves a single product.
func (repo *productRepository) FindByID(ctx context.Context, id int64) (*entity.Product, error) {
	var productM model.ProdutoModel
	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&productM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.WithStack(domainerrors.ErrProductNotFound)
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find product")
	}

	return toProductDomain(&productM), nil
}

// Create inserts the product and copies generated values back.
func (repo *productRepository) Create(ctx context.Context, product *entity.Product) error {
	productM := fromProductDomain(product)

	if err := repo.db.WithContext(ctx).Create(productM).Error; err != nil {
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required product information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create product")
	}

	product.ID = productM.ID
	product.CreatedAt = productM.CreatedAt
	product.UpdatedAt = productM.UpdatedAt

	return nil
}

// Update writes every mutable column, including zero values.
func (repo *productRepository) Update(ctx context.Context, product *entity.Product) error {
	now := time.Now().UTC()
	result := repo.db.WithContext(ctx).
		Model(&model.ProdutoModel{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"nome":         product.Name,
			"preco":        product.Price,
			"descricao":    product.Description,
			"categoria_id": product.CategoryID,
			"imagem":       product.Image,
			"updated_at":   now,
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update product")
	}

	if result.RowsAffected == 0 {
		return errors.WithStack(domainerrors.ErrProductNotFound)
	}
	product.UpdatedAt = now

	return nil
}

// Delete removes a product by id. Products on existing orders are kept.
func (repo *productRepository) Delete(ctx context.Context, id int64) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ProdutoModel{})
	if isForeignKeyViolation(result.Error) {
		return errors.WithStack(domainerrors.ErrProductInUse)
	}
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete product")
	}

	if result.RowsAffected == 0 {
		return errors.WithStack(domainerrors.ErrProductNotFound)
	}

	return nil
}

func toProductDomains(productModels []model.ProdutoModel) []*entity.Product {
	products := make([]*entity.Product, 0, len(productModels))
	for i := range productModels {
		products = append(products, toProductDomain(&productModels[i]))
	}

	return products
}

func toProductDomain(productM *model.ProdutoModel) *entity.Product {
	return &entity.Product{
		ID:          productM.ID,
		SellerID:    productM.VendedorID,
		Name:        productM.Nome,
		Price:       productM.Preco,
		Description: productM.Descricao,
		CategoryID:  productM.CategoriaID,
		Image:       productM.Imagem,
		CreatedAt:   productM.CreatedAt,
		UpdatedAt:   productM.UpdatedAt,
	}
}

func fromProductDomain(product *entity.Product) *model.ProdutoModel {
	return &model.ProdutoModel{
		ID:          product.ID,
		VendedorID:  product.SellerID,
		Nome:        product.Name,
		Preco:       product.Price,
		Descricao:   product.Description,
		CategoriaID: product.CategoryID,
		Imagem:      product.Image,
	}
}
