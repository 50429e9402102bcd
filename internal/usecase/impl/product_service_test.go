package impl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energyfit/internal/domain/entity"
	domainerrors "energyfit/internal/domain/errors"
	"energyfit/internal/usecase"
)

func newTestProductService(store *memoryStore) *productService {
	return NewProductService(ProductServiceParams{
		TxManager:   &memoryTxManager{store: store},
		ProductRepo: &memoryProductRepo{store: store},
		Logger:      newDiscardLogger(),
	}).(*productService)
}

var (
	testSeller      = entity.PrincipalView{ID: 1, Name: "Seller", Kind: entity.PrincipalKindSeller}
	testOtherSeller = entity.PrincipalView{ID: 2, Name: "Other", Kind: entity.PrincipalKindSeller}
	testAdmin       = entity.PrincipalView{ID: 1, Name: "Admin", Kind: entity.PrincipalKindAdmin}
)

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("seller owns the new product and gets the default image", func(t *testing.T) {
		srv := newTestProductService(newMemoryStore())

		product, err := srv.Create(ctx, testSeller, &usecase.CreateProductInput{Name: "Whey", Price: 129.9, CategoryID: "suplementos"})
		require.NoError(t, err)
		assert.Equal(t, testSeller.ID, product.SellerID)
		assert.Equal(t, defaultProductImage, product.Image)
		assert.NotZero(t, product.ID)
	})

	t.Run("explicit image is kept", func(t *testing.T) {
		srv := newTestProductService(newMemoryStore())

		product, err := srv.Create(ctx, testSeller, &usecase.CreateProductInput{Name: "Whey", Price: 1, Image: "whey.png"})
		require.NoError(t, err)
		assert.Equal(t, "whey.png", product.Image)
	})

	t.Run("administrators cannot own products", func(t *testing.T) {
		srv := newTestProductService(newMemoryStore())

		_, err := srv.Create(ctx, testAdmin, &usecase.CreateProductInput{Name: "Whey", Price: 1})
		assert.ErrorIs(t, err, domainerrors.ErrForbidden)
	})

	t.Run("name and positive price are required", func(t *testing.T) {
		srv := newTestProductService(newMemoryStore())

		_, err := srv.Create(ctx, testSeller, &usecase.CreateProductInput{Price: 1})
		assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
		_, err = srv.Create(ctx, testSeller, &usecase.CreateProductInput{Name: "Whey"})
		assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	})
}

func TestProductService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*productService, *entity.Product) {
		t.Helper()
		srv := newTestProductService(newMemoryStore())
		product, err := srv.Create(ctx, testSeller, &usecase.CreateProductInput{Name: "Creatina", Price: 80, Description: "300g"})
		require.NoError(t, err)

		return srv, product
	}

	t.Run("owner updates only the provided fields", func(t *testing.T) {
		srv, product := setup(t)

		updated, err := srv.Update(ctx, testSeller, product.ID, &entity.ProductPatch{Price: 75})
		require.NoError(t, err)
		assert.Equal(t, 75.0, updated.Price)
		assert.Equal(t, "Creatina", updated.Name)
		assert.Equal(t, "300g", updated.Description)

		got, err := srv.Get(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, 75.0, got.Price)
	})

	t.Run("empty patch changes nothing", func(t *testing.T) {
		srv, product := setup(t)

		updated, err := srv.Update(ctx, testSeller, product.ID, &entity.ProductPatch{})
		require.NoError(t, err)
		assert.Equal(t, product.Name, updated.Name)
		assert.Equal(t, product.Price, updated.Price)
	})

	t.Run("negative price is rejected", func(t *testing.T) {
		srv, product := setup(t)

		_, err := srv.Update(ctx, testSeller, product.ID, &entity.ProductPatch{Price: -1})
		assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
	})

	t.Run("another seller is refused", func(t *testing.T) {
		srv, product := setup(t)

		_, err := srv.Update(ctx, testOtherSeller, product.ID, &entity.ProductPatch{Name: "Hijack"})
		assert.ErrorIs(t, err, domainerrors.ErrProductOwnershipViolation)

		err = srv.Delete(ctx, testOtherSeller, product.ID)
		assert.ErrorIs(t, err, domainerrors.ErrProductOwnershipViolation)

		got, err := srv.Get(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, "Creatina", got.Name)
	})

	t.Run("administrators may moderate any product", func(t *testing.T) {
		srv, product := setup(t)

		_, err := srv.Update(ctx, testAdmin, product.ID, &entity.ProductPatch{Name: "Creatina Pura"})
		require.NoError(t, err)
		require.NoError(t, srv.Delete(ctx, testAdmin, product.ID))

		_, err = srv.Get(ctx, product.ID)
		assert.ErrorIs(t, err, domainerrors.ErrProductNotFound)
	})

	t.Run("product on an order is kept", func(t *testing.T) {
		store := newMemoryStore()
		srv := newTestProductService(store)
		product, err := srv.Create(ctx, testSeller, &usecase.CreateProductInput{Name: "Creatina", Price: 80})
		require.NoError(t, err)
		store.ordered = map[int64]bool{product.ID: true}

		assert.ErrorIs(t, srv.Delete(ctx, testSeller, product.ID), domainerrors.ErrProductInUse)

		_, err = srv.Get(ctx, product.ID)
		assert.NoError(t, err)
	})

	t.Run("missing product", func(t *testing.T) {
		srv, _ := setup(t)

		_, err := srv.Update(ctx, testSeller, 999, &entity.ProductPatch{Name: "x"})
		assert.ErrorIs(t, err, domainerrors.ErrProductNotFound)
		assert.ErrorIs(t, srv.Delete(ctx, testSeller, 999), domainerrors.ErrProductNotFound)
	})
}

func TestProductService_List(t *testing.T) {
	ctx := context.Background()
	srv := newTestProductService(newMemoryStore())

	for _, actor := range []entity.PrincipalView{testSeller, testOtherSeller, testSeller} {
		_, err := srv.Create(ctx, actor, &usecase.CreateProductInput{Name: "Item", Price: 10})
		require.NoError(t, err)
	}

	all, err := srv.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := srv.ListBySeller(ctx, testSeller.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, p := range mine {
		assert.Equal(t, testSeller.ID, p.SellerID)
	}
}
