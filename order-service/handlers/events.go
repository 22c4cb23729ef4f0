package handlers

import (
	"context"

	"github.com/draftea/order-system/order-service/application"
	"github.com/draftea/order-system/shared/events"
)

// OrderEventHandlers consumes the domain events the downstream services
// publish and appends them to the order audit trail.
type OrderEventHandlers struct {
	recordDownstreamEvents *application.RecordDownstreamEvents
}

// NewOrderEventHandlers creates new order event handlers
func NewOrderEventHandlers(recordDownstreamEvents *application.RecordDownstreamEvents) *OrderEventHandlers {
	return &OrderEventHandlers{
		recordDownstreamEvents: recordDownstreamEvents,
	}
}

// HandlerID returns the unique identifier for this event handler
func (h *OrderEventHandlers) HandlerID() string {
	return "order-service-event-handler"
}

// Handle implements the events.EventHandler interface
func (h *OrderEventHandlers) Handle(ctx context.Context, event *events.Event) error {
	return h.recordDownstreamEvents.Execute(ctx, event)
}
