package database

import (
	"context"

	"energyfit/internal/domain/entity"
	domainerrors "energyfit/internal/domain/errors"
	"energyfit/internal/domain/repository"
	"energyfit/internal/infra/persistence/model"

	"gorm.io/gorm"
)

// orderRepository implements repository.OrderRepository over pedidos.
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository is the constructor for orderRepository.
func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

// ListBySeller returns the seller's orders, newest first.
func (repo *orderRepository) ListBySeller(ctx context.Context, sellerID int64) ([]*entity.Order, error) {
	var orderModels []model.PedidoModel
	if err := repo.db.WithContext(ctx).
		Where("vendedor_id = ?", sellerID).
		Order("criado_em DESC").
		Order("id DESC").
		Find(&orderModels).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list seller orders")
	}

	orders := make([]*entity.Order, 0, len(orderModels))
	for i := range orderModels {
		orders = append(orders, toOrderDomain(&orderModels[i]))
	}

	return orders, nil
}

// SumCompletedTotal adds up the totals of the seller's completed orders.
func (repo *orderRepository) SumCompletedTotal(ctx context.Context, sellerID int64) (float64, error) {
	var total float64
	err := repo.db.WithContext(ctx).
		Model(&model.PedidoModel{}).
		Select("COALESCE(SUM(total), 0)").
		Where("vendedor_id = ? AND status = ?", sellerID, entity.OrderStatusCompleted).
		Row().
		Scan(&total)
	if err != nil {
		return 0, domainerrors.NewDatabaseExecuteError(err, "failed to sum completed orders")
	}

	return total, nil
}

func toOrderDomain(orderM *model.PedidoModel) *entity.Order {
	return &entity.Order{
		ID:           orderM.ID,
		CustomerID:   orderM.ClienteID,
		CustomerName: orderM.ClienteNome,
		SellerID:     orderM.VendedorID,
		Total:        orderM.Total,
		Status:       orderM.Status,
		CreatedAt:    orderM.CriadoEm,
	}
}
