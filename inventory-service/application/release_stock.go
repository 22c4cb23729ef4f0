package application

import (
	"context"
	"time"

	"github.com/draftea/order-system/inventory-service/domain"
	"github.com/draftea/order-system/shared/events"
	"github.com/draftea/order-system/shared/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ReleaseStockCommand represents the command to return one unit to stock
type ReleaseStockCommand struct {
	ProductID string `json:"productId"`
}

// ReleaseStockResponse represents the stock after a release
type ReleaseStockResponse struct {
	ProductID string `json:"product_id"`
	Remaining int    `json:"remaining"`
}

// ReleaseStock use case puts a reserved unit back. It backs the saga
// compensation path, so it stays deliberately forgiving: releasing is valid
// whenever the product exists.
type ReleaseStock struct {
	store          domain.StockStore
	eventPublisher events.Publisher
}

// NewReleaseStock creates a new ReleaseStock use case
func NewReleaseStock(store domain.StockStore, eventPublisher events.Publisher) *ReleaseStock {
	return &ReleaseStock{
		store:          store,
		eventPublisher: eventPublisher,
	}
}

// Execute returns one unit of the product to stock
func (uc *ReleaseStock) Execute(ctx context.Context, cmd *ReleaseStockCommand) (*ReleaseStockResponse, error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "release_stock",
		trace.WithAttributes(
			attribute.String("product_id", cmd.ProductID),
		),
	)
	defer span.End()

	status := "error"
	defer func() {
		telemetry.RecordCounter(ctx, "inventory_operations_total", "Total inventory operations", 1,
			attribute.String("operation", "release"),
			attribute.String("status", status),
		)
		telemetry.RecordHistogram(ctx, "inventory_operation_duration_seconds", "Inventory operation duration", time.Since(start).Seconds(),
			attribute.String("operation", "release"),
			attribute.String("status", status),
		)
	}()

	if cmd.ProductID == "" {
		err := errors.New("product ID is required")
		span.RecordError(err)
		return nil, err
	}

	stock, err := uc.store.Release(ctx, cmd.ProductID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	status = "success"
	if uc.eventPublisher != nil {
		_ = uc.eventPublisher.Publish(ctx, events.NewEvent(stock.ID, events.StockReleasedEvent, domain.StockReleasedData{
			ProductID: stock.ProductID,
			Remaining: stock.Available,
		}))
	}

	return &ReleaseStockResponse{
		ProductID: stock.ProductID,
		Remaining: stock.Available,
	}, nil
}
