package domain

import (
	"context"

	"github.com/draftea/order-system/shared/models"
	"github.com/pkg/errors"
)

// ErrOutOfStock is returned when a reservation finds no available unit.
var ErrOutOfStock = errors.New("out of stock")

// Stock is the inventory record for one product
type Stock struct {
	ID         models.ID `json:"id"`
	ProductID  string    `json:"product_id"`
	Available  int       `json:"available"`
	Timestamps models.Timestamps
	Version    models.Version
}

// NewStock creates a stock record for a product
func NewStock(productID string, available int) (*Stock, error) {
	if productID == "" {
		return nil, errors.New("product ID is required")
	}
	if available < 0 {
		return nil, errors.New("available quantity cannot be negative")
	}

	return &Stock{
		ID:         models.GenerateUUID(),
		ProductID:  productID,
		Available:  available,
		Timestamps: models.NewTimestamps(),
		Version:    models.NewVersion(),
	}, nil
}

// StockStore reserves and releases stock. Reserve and Release are atomic
// with respect to concurrent calls for the same product; the store never
// lets the available count go negative.
type StockStore interface {
	// Reserve takes one unit and returns the record after the decrement.
	// ErrOutOfStock when the product has no available unit (or does not
	// exist).
	Reserve(ctx context.Context, productID string) (*Stock, error)
	// Release returns one unit to stock.
	Release(ctx context.Context, productID string) (*Stock, error)
	FindByProductID(ctx context.Context, productID string) (*Stock, error)
	Save(ctx context.Context, stock *Stock) error
}

// StockReservedData is the payload of stock.reserved events
type StockReservedData struct {
	ProductID string `json:"product_id"`
	Remaining int    `json:"remaining"`
}

// StockReleasedData is the payload of stock.released events
type StockReleasedData struct {
	ProductID string `json:"product_id"`
	Remaining int    `json:"remaining"`
}

// StockDepletedData is the payload of stock.depleted events
type StockDepletedData struct {
	ProductID string `json:"product_id"`
}
