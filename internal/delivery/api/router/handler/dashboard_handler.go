package handler

import (
	"net/http"
	"time"

	"energyfit/internal/delivery/api/response"
	"energyfit/internal/domain/entity"
	"energyfit/internal/errors"
	"energyfit/internal/usecase"

	"github.com/labstack/echo/v4"
)

// OrderResponse is the wire form of a seller's order.
type OrderResponse struct {
	ID          int64     `json:"id"`
	ClienteID   int64     `json:"cliente_id"`
	ClienteNome string    `json:"cliente_nome"`
	VendedorID  int64     `json:"vendedor_id"`
	Total       float64   `json:"total"`
	Status      string    `json:"status"`
	CriadoEm    time.Time `json:"criado_em"`
}

func toOrderResponses(orders []*entity.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, OrderResponse{
			ID:          o.ID,
			ClienteID:   o.CustomerID,
			ClienteNome: o.CustomerName,
			VendedorID:  o.SellerID,
			Total:       o.Total,
			Status:      o.Status,
			CriadoEm:    o.CreatedAt,
		})
	}

	return out
}

// DashboardHandler serves the data behind the seller and admin panels.
type DashboardHandler struct {
	products usecase.ProductUsecase
	orders   usecase.OrderUsecase
}

// NewDashboardHandler is the constructor for DashboardHandler, injected by Fx.
func NewDashboardHandler(products usecase.ProductUsecase, orders usecase.OrderUsecase) *DashboardHandler {
	return &DashboardHandler{products: products, orders: orders}
}

// Seller handles GET /vendedor.
func (h *DashboardHandler) Seller(c echo.Context) error {
	principal := actor(c)

	products, err := h.products.ListBySeller(c.Request().Context(), principal.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, "", map[string]any{
		"usuario":  principal,
		"produtos": toProductResponses(products),
	})
}

// Sales handles GET /visualizar-vendas.
func (h *DashboardHandler) Sales(c echo.Context) error {
	principal := actor(c)

	orders, err := h.orders.ListBySeller(c.Request().Context(), principal)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, "", map[string]any{
		"usuario": principal,
		"pedidos": toOrderResponses(orders),
	})
}

// Revenue handles GET /relatorio-faturamento.
func (h *DashboardHandler) Revenue(c echo.Context) error {
	principal := actor(c)

	total, err := h.orders.RevenueTotal(c.Request().Context(), principal)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, "", map[string]any{
		"usuario":        principal,
		"total_faturado": total,
	})
}

// Admin handles GET /adm.
func (h *DashboardHandler) Admin(c echo.Context) error {
	return response.Success(c, http.StatusOK, "", map[string]any{"usuario": actor(c)})
}
