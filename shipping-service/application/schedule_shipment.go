package application

import (
	"context"
	"time"

	"github.com/draftea/order-system/shared/events"
	"github.com/draftea/order-system/shared/telemetry"
	"github.com/draftea/order-system/shipping-service/domain"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ScheduleShipmentCommand represents the command to schedule a shipment
type ScheduleShipmentCommand struct {
	UserID    string `json:"userId"`
	ProductID string `json:"productId"`
}

// ScheduleShipmentResponse represents a scheduled shipment
type ScheduleShipmentResponse struct {
	ShipmentID string                `json:"shipment_id"`
	UserID     string                `json:"user_id"`
	ProductID  string                `json:"product_id"`
	Status     domain.ShipmentStatus `json:"status"`
}

// ScheduleShipment use case records a shipment and announces it
type ScheduleShipment struct {
	shipments      domain.ShipmentRepository
	eventPublisher events.Publisher
}

// NewScheduleShipment creates a new ScheduleShipment use case
func NewScheduleShipment(shipments domain.ShipmentRepository, eventPublisher events.Publisher) *ScheduleShipment {
	return &ScheduleShipment{
		shipments:      shipments,
		eventPublisher: eventPublisher,
	}
}

// Execute schedules a shipment
func (uc *ScheduleShipment) Execute(ctx context.Context, cmd *ScheduleShipmentCommand) (*ScheduleShipmentResponse, error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "schedule_shipment",
		trace.WithAttributes(
			attribute.String("user_id", cmd.UserID),
			attribute.String("product_id", cmd.ProductID),
		),
	)
	defer span.End()

	status := "error"
	defer func() {
		telemetry.RecordCounter(ctx, "shipping_operations_total", "Total shipping operations", 1,
			attribute.String("operation", "schedule"),
			attribute.String("status", status),
		)
		telemetry.RecordHistogram(ctx, "shipping_operation_duration_seconds", "Shipping operation duration", time.Since(start).Seconds(),
			attribute.String("operation", "schedule"),
			attribute.String("status", status),
		)
	}()

	shipment, err := domain.NewShipment(cmd.UserID, cmd.ProductID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := uc.shipments.Save(ctx, shipment); err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to save shipment")
	}

	status = "success"
	if uc.eventPublisher != nil {
		_ = uc.eventPublisher.Publish(ctx, events.NewEvent(shipment.ID, events.ShipmentScheduledEvent, domain.ShipmentScheduledData{
			ShipmentID: shipment.ID,
			UserID:     shipment.UserID,
			ProductID:  shipment.ProductID,
		}))
	}

	return &ScheduleShipmentResponse{
		ShipmentID: shipment.ID.String(),
		UserID:     shipment.UserID,
		ProductID:  shipment.ProductID,
		Status:     shipment.Status,
	}, nil
}
