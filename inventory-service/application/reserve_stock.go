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

// ReserveStockCommand represents the command to reserve one unit
type ReserveStockCommand struct {
	ProductID string `json:"productId"`
}

// ReserveStockResponse represents the stock after a reservation
type ReserveStockResponse struct {
	ProductID string `json:"product_id"`
	Remaining int    `json:"remaining"`
}

// ReserveStock use case takes one unit of a product off the shelf
type ReserveStock struct {
	store          domain.StockStore
	eventPublisher events.Publisher
}

// NewReserveStock creates a new ReserveStock use case
func NewReserveStock(store domain.StockStore, eventPublisher events.Publisher) *ReserveStock {
	return &ReserveStock{
		store:          store,
		eventPublisher: eventPublisher,
	}
}

// Execute reserves one unit of the product
func (uc *ReserveStock) Execute(ctx context.Context, cmd *ReserveStockCommand) (*ReserveStockResponse, error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "reserve_stock",
		trace.WithAttributes(
			attribute.String("product_id", cmd.ProductID),
		),
	)
	defer span.End()

	status := "error"
	defer func() {
		telemetry.RecordCounter(ctx, "inventory_operations_total", "Total inventory operations", 1,
			attribute.String("operation", "reserve"),
			attribute.String("status", status),
		)
		telemetry.RecordHistogram(ctx, "inventory_operation_duration_seconds", "Inventory operation duration", time.Since(start).Seconds(),
			attribute.String("operation", "reserve"),
			attribute.String("status", status),
		)
	}()

	if cmd.ProductID == "" {
		err := errors.New("product ID is required")
		span.RecordError(err)
		return nil, err
	}

	stock, err := uc.store.Reserve(ctx, cmd.ProductID)
	if err != nil {
		span.RecordError(err)
		if errors.Cause(err) == domain.ErrOutOfStock {
			status = "depleted"
			if stock, findErr := uc.store.FindByProductID(ctx, cmd.ProductID); findErr == nil && stock != nil {
				uc.publish(ctx, events.NewEvent(stock.ID, events.StockDepletedEvent, domain.StockDepletedData{
					ProductID: cmd.ProductID,
				}))
			}
		}
		return nil, err
	}

	status = "success"
	uc.publish(ctx, events.NewEvent(stock.ID, events.StockReservedEvent, domain.StockReservedData{
		ProductID: stock.ProductID,
		Remaining: stock.Available,
	}))

	return &ReserveStockResponse{
		ProductID: stock.ProductID,
		Remaining: stock.Available,
	}, nil
}

// publish is best-effort; event delivery never changes the reservation
// outcome.
func (uc *ReserveStock) publish(ctx context.Context, event *events.Event) {
	if uc.eventPublisher == nil {
		return
	}
	_ = uc.eventPublisher.Publish(ctx, event)
}
