package application

import (
	"context"

	"github.com/draftea/order-system/inventory-service/domain"
	"github.com/pkg/errors"
)

// GetStockQuery represents the query to read a product's stock level
type GetStockQuery struct {
	ProductID string `json:"product_id"`
}

// GetStockResponse represents a stock read model
type GetStockResponse struct {
	ProductID string `json:"product_id"`
	Available int    `json:"available"`
}

// GetStock use case
type GetStock struct {
	store domain.StockStore
}

// NewGetStock creates a new GetStock use case
func NewGetStock(store domain.StockStore) *GetStock {
	return &GetStock{store: store}
}

// Execute executes the get stock query
func (uc *GetStock) Execute(ctx context.Context, query *GetStockQuery) (*GetStockResponse, error) {
	if query.ProductID == "" {
		return nil, errors.New("product ID is required")
	}

	stock, err := uc.store.FindByProductID(ctx, query.ProductID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find stock")
	}
	if stock == nil {
		return nil, errors.New("product not found")
	}

	return &GetStockResponse{
		ProductID: stock.ProductID,
		Available: stock.Available,
	}, nil
}
