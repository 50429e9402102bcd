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

// orderService implements the OrderUsecase interface.
type orderService struct {
	orderRepo repository.OrderRepository
	logger    *slog.Logger
}

// OrderServiceParams holds dependencies for OrderService, injected by Fx.
type OrderServiceParams struct {
	fx.In

	OrderRepo repository.OrderRepository
	Logger    *slog.Logger
}

// NewOrderService is the constructor for orderService.
func NewOrderService(params OrderServiceParams) usecase.OrderUsecase {
	return &orderService{
		orderRepo: params.OrderRepo,
		logger:    params.Logger,
	}
}

func (srv *orderService) ListBySeller(ctx context.Context, actor entity.PrincipalView) ([]*entity.Order, error) {
	if err := requireSeller(actor); err != nil {
		return nil, err
	}

	orders, err := srv.orderRepo.ListBySeller(ctx, actor.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list seller orders")
	}

	return orders, nil
}

func (srv *orderService) RevenueTotal(ctx context.Context, actor entity.PrincipalView) (float64, error) {
	if err := requireSeller(actor); err != nil {
		return 0, err
	}

	total, err := srv.orderRepo.SumCompletedTotal(ctx, actor.ID)
	if err != nil {
		return 0, errors.Wrap(err, "failed to compute seller revenue")
	}

	deliverycontext.GetLoggerOrDefault(ctx, srv.logger).Debug("Seller revenue computed",
		slog.Int64("sellerID", actor.ID),
		slog.Float64("total", total),
	)

	return total, nil
}

// requireSeller rejects actors that cannot own sales.
func requireSeller(actor entity.PrincipalView) error {
	if actor.Kind != entity.PrincipalKindSeller {
		return errors.WithStack(domainerrors.ErrForbidden.WithDetails("Apenas vendedores possuem vendas."))
	}

	return nil
}
