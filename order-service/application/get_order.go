package application

import (
	"context"
	"time"

	"github.com/draftea/order-system/order-service/domain"
	"github.com/draftea/order-system/shared/models"
	"github.com/pkg/errors"
)

// GetOrderQuery represents the query to retrieve an order
type GetOrderQuery struct {
	OrderID string `json:"order_id"`
}

// GetOrderResponse represents an order read model
type GetOrderResponse struct {
	OrderID   string             `json:"order_id"`
	UserID    string             `json:"user_id"`
	ProductID string             `json:"product_id"`
	Status    domain.OrderStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// GetOrder use case
type GetOrder struct {
	orders domain.OrderRepository
}

// NewGetOrder creates a new GetOrder use case
func NewGetOrder(orders domain.OrderRepository) *GetOrder {
	return &GetOrder{orders: orders}
}

// Execute executes the get order query
func (uc *GetOrder) Execute(ctx context.Context, query *GetOrderQuery) (*GetOrderResponse, error) {
	id, err := models.NewID(query.OrderID)
	if err != nil {
		return nil, errors.Wrap(ErrValidation, "invalid order ID")
	}

	order, err := uc.orders.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find order")
	}
	if order == nil {
		return nil, errors.New("order not found")
	}

	return &GetOrderResponse{
		OrderID:   order.ID.String(),
		UserID:    order.UserID,
		ProductID: order.ProductID,
		Status:    order.Status,
		CreatedAt: order.Timestamps.CreatedAt,
		UpdatedAt: order.Timestamps.UpdatedAt,
	}, nil
}
