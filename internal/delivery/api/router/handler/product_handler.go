package handler

import (
	"net/http"
	"strconv"
	"time"

	"energyfit/internal/delivery/api/response"
	deliverycontext "energyfit/internal/delivery/context"
	"energyfit/internal/domain/entity"
	domainerrors "energyfit/internal/domain/errors"
	"energyfit/internal/errors"
	"energyfit/internal/usecase"

	"github.com/labstack/echo/v4"
)

type productRequest struct {
	Name        string  `json:"nome" form:"nome" validate:"max=255"`
	Price       float64 `json:"preco" form:"preco" validate:"gte=0"`
	Description string  `json:"descricao" form:"descricao"`
	CategoryID  string  `json:"categoria_id" form:"categoria_id" validate:"max=64"`
	Image       string  `json:"imagem" form:"imagem" validate:"max=255"`
}

// ProductResponse is the wire form of a catalog item.
type ProductResponse struct {
	ID          int64     `json:"id"`
	SellerID    int64     `json:"vendedor_id"`
	Name        string    `json:"nome"`
	Price       float64   `json:"preco"`
	Description string    `json:"descricao"`
	CategoryID  string    `json:"categoria_id"`
	Image       string    `json:"imagem"`
	CreatedAt   time.Time `json:"criado_em"`
}

func toProductResponse(p *entity.Product) *ProductResponse {
	return &ProductResponse{
		ID:          p.ID,
		SellerID:    p.SellerID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		CategoryID:  p.CategoryID,
		Image:       p.Image,
		CreatedAt:   p.CreatedAt,
	}
}

func toProductResponses(products []*entity.Product) []*ProductResponse {
	out := make([]*ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}

	return out
}

// ProductHandler holds dependencies for the catalog endpoints.
type ProductHandler struct {
	products usecase.ProductUsecase
}

// NewProductHandler is the constructor for ProductHandler, injected by Fx.
func NewProductHandler(products usecase.ProductUsecase) *ProductHandler {
	return &ProductHandler{products: products}
}

// List handles GET /produtos.
func (h *ProductHandler) List(c echo.Context) error {
	products, err := h.products.List(c.Request().Context())
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, "", toProductResponses(products))
}

// Get handles GET /produtos/:id.
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := productID(c)
	if err != nil {
		return err
	}

	product, err := h.products.Get(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, "", toProductResponse(product))
}

// Create handles POST /produtos.
func (h *ProductHandler) Create(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, domainerrors.ErrValidationFailed.Message())
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	product, err := h.products.Create(c.Request().Context(), actor(c), &usecase.CreateProductInput{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Image:       req.Image,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, "Produto criado com sucesso!", map[string]int64{"id": product.ID})
}

// Update handles PUT /produtos/:id. Only the fields present are changed.
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := productID(c)
	if err != nil {
		return err
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, domainerrors.ErrValidationFailed.Message())
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	product, err := h.products.Update(c.Request().Context(), actor(c), id, &entity.ProductPatch{
		Name:        req.Name,
		Price:       req.Price,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Image:       req.Image,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, "Produto atualizado com sucesso!", toProductResponse(product))
}

// Delete handles DELETE /produtos/:id.
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := productID(c)
	if err != nil {
		return err
	}

	if err := h.products.Delete(c.Request().Context(), actor(c), id); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, "Produto deletado com sucesso!", nil)
}

func productID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.WithStack(domainerrors.ErrProductNotFound)
	}

	return id, nil
}

// actor is the principal of a request that already passed the session guards.
func actor(c echo.Context) entity.PrincipalView {
	if session := deliverycontext.GetSession(c); session != nil {
		return session.Principal
	}

	return entity.PrincipalView{}
}
