package impl

import (
	"context"
	"log/slog"

	deliverycontext "energyfit/internal/delivery/context"
	"energyfit/internal/domain/entity"
	domainerrors "energyfit/internal/domain/errors"
	"energyfit/internal/domain/repository"
	"energyfit/internal/errors"
	"energyfit/internal/usecase"

	"go.uber.org/fx"
)

// defaultProductImage is shown when a product is created without an image.
const defaultProductImage = "default.webp"

// productService implements the ProductUsecase interface.
type productService struct {
	txManager   repository.TransactionManager
	productRepo repository.ProductRepository
	logger      *slog.Logger
}

// ProductServiceParams holds dependencies for ProductService, injected by Fx.
type ProductServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	ProductRepo repository.ProductRepository
	Logger      *slog.Logger
}

// NewProductService is the constructor for productService.
func NewProductService(params ProductServiceParams) usecase.ProductUsecase {
	return &productService{
		txManager:   params.TxManager,
		productRepo: params.ProductRepo,
		logger:      params.Logger,
	}
}

func (srv *productService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *productService) List(ctx context.Context) ([]*entity.Product, error) {
	products, err := srv.productRepo.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}

	return products, nil
}

func (srv *productService) ListBySeller(ctx context.Context, sellerID int64) ([]*entity.Product, error) {
	products, err := srv.productRepo.ListBySeller(ctx, sellerID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list seller products")
	}

	return products, nil
}

func (srv *productService) Get(ctx context.Context, id int64) (*entity.Product, error) {
	return srv.productRepo.FindByID(ctx, id)
}

// Create requires a seller: products are always owned by one.
func (srv *productService) Create(ctx context.Context, actor entity.PrincipalView, input *usecase.CreateProductInput) (*entity.Product, error) {
	if actor.Kind != entity.PrincipalKindSeller {
		return nil, errors.WithStack(domainerrors.ErrForbidden.WithDetails("Apenas vendedores podem cadastrar produtos."))
	}
	if input.Name == "" || input.Price <= 0 {
		return nil, errors.WithStack(domainerrors.ErrValidationFailed.WithDetails("Nome e Preço são obrigatórios."))
	}

	product := &entity.Product{
		SellerID:    actor.ID,
		Name:        input.Name,
		Price:       input.Price,
		Description: input.Description,
		CategoryID:  input.CategoryID,
		Image:       input.Image,
	}
	if product.Image == "" {
		product.Image = defaultProductImage
	}

	if err := srv.productRepo.Create(ctx, product); err != nil {
		return nil, errors.Wrap(err, "failed to create product")
	}

	srv.log(ctx).Info("Product created", slog.Int64("productID", product.ID), slog.Int64("sellerID", actor.ID))

	return product, nil
}

// Update applies a partial change. An empty patch leaves the product as is.
// The ownership check and the write share one transaction.
func (srv *productService) Update(ctx context.Context, actor entity.PrincipalView, id int64, patch *entity.ProductPatch) (*entity.Product, error) {
	var product *entity.Product
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		productRepo := repoFactory.NewProductRepository()

		var err error
		product, err = srv.authorize(ctx, productRepo, actor, id)
		if err != nil {
			return err
		}
		if patch.Price < 0 {
			return errors.WithStack(domainerrors.ErrValidationFailed.WithDetails("Preço inválido."))
		}
		if patch.IsEmpty() {
			return nil
		}

		patch.Apply(product)

		return productRepo.Update(ctx, product)
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to update product")
	}

	srv.log(ctx).Info("Product updated", slog.Int64("productID", id), slog.Int64("actorID", actor.ID))

	return product, nil
}

// Delete removes a product under the same ownership rule as Update. Products
// referenced by orders are kept and reported as ErrProductInUse.
func (srv *productService) Delete(ctx context.Context, actor entity.PrincipalView, id int64) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		productRepo := repoFactory.NewProductRepository()
		if _, err := srv.authorize(ctx, productRepo, actor, id); err != nil {
			return err
		}

		return productRepo.Delete(ctx, id)
	})
	if err != nil {
		return errors.Wrap(err, "failed to delete product")
	}

	srv.log(ctx).Info("Product deleted", slog.Int64("productID", id), slog.Int64("actorID", actor.ID))

	return nil
}

// authorize loads the product and checks the actor may manage it.
func (srv *productService) authorize(ctx context.Context, productRepo repository.ProductRepository, actor entity.PrincipalView, id int64) (*entity.Product, error) {
	product, err := productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch actor.Kind {
	case entity.PrincipalKindAdmin:
		return product, nil
	case entity.PrincipalKindSeller:
		if product.SellerID == actor.ID {
			return product, nil
		}
	}

	srv.log(ctx).Warn("Product ownership violation", slog.Int64("productID", id), slog.Int64("actorID", actor.ID))

	return nil, errors.WithStack(domainerrors.ErrProductOwnershipViolation)
}
