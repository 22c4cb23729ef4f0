package domain

import (
	"context"
	"time"

	"github.com/draftea/order-system/shared/events"
	"github.com/draftea/order-system/shared/models"
	"github.com/pkg/errors"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusInitiated OrderStatus = "initiated"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
)

// IsTerminal reports whether the status is a final one
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusFailed
}

// Order aggregate root. An order is created as initiated before any remote
// step runs and transitions exactly once more, to completed or failed.
type Order struct {
	ID             models.ID
	UserID         string
	ProductID      string
	Status         OrderStatus
	IdempotencyKey string
	Timestamps     models.Timestamps
	Version        models.Version

	events []*events.Event
}

// CreateOrder factory method
func CreateOrder(userID, productID, idempotencyKey string) (*Order, error) {
	if userID == "" {
		return nil, errors.New("user ID is required")
	}
	if productID == "" {
		return nil, errors.New("product ID is required")
	}

	order := &Order{
		ID:             models.GenerateUUID(),
		UserID:         userID,
		ProductID:      productID,
		Status:         OrderStatusInitiated,
		IdempotencyKey: idempotencyKey,
		Timestamps:     models.NewTimestamps(),
		Version:        models.NewVersion(),
	}

	event := events.NewEvent(order.ID, events.OrderInitiatedEvent, OrderInitiatedData{
		OrderID:   order.ID,
		UserID:    order.UserID,
		ProductID: order.ProductID,
	})

	order.recordEvent(event)
	return order, nil
}

// Complete marks the order as completed
func (o *Order) Complete() error {
	if o.Status != OrderStatusInitiated {
		return errors.Errorf("order can only be completed from initiated status, is %s", o.Status)
	}

	o.Status = OrderStatusCompleted
	o.Timestamps = o.Timestamps.Update()
	o.Version = o.Version.Update()

	event := events.NewEvent(o.ID, events.OrderCompletedEvent, OrderCompletedData{
		OrderID:     o.ID,
		UserID:      o.UserID,
		ProductID:   o.ProductID,
		CompletedAt: time.Now(),
	})

	o.recordEvent(event)
	return nil
}

// Fail marks the order as failed
func (o *Order) Fail(reason string) error {
	if o.Status != OrderStatusInitiated {
		return errors.Errorf("order can only be failed from initiated status, is %s", o.Status)
	}

	o.Status = OrderStatusFailed
	o.Timestamps = o.Timestamps.Update()
	o.Version = o.Version.Update()

	event := events.NewEvent(o.ID, events.OrderFailedEvent, OrderFailedData{
		OrderID:   o.ID,
		UserID:    o.UserID,
		ProductID: o.ProductID,
		Reason:    reason,
		FailedAt:  time.Now(),
	})

	o.recordEvent(event)
	return nil
}

// RecordCompensation records a compensation attempt for a committed step.
// Compensation never changes the order status.
func (o *Order) RecordCompensation(step string, compensationErr error) {
	data := OrderCompensationAttemptedData{
		OrderID: o.ID,
		Step:    step,
		Success: compensationErr == nil,
	}
	if compensationErr != nil {
		data.Error = compensationErr.Error()
	}

	o.recordEvent(events.NewEvent(o.ID, events.OrderCompensationAttemptedEvent, data))
}

// Events returns domain events
func (o *Order) Events() []*events.Event {
	return o.events
}

// ClearEvents clears domain events
func (o *Order) ClearEvents() {
	o.events = make([]*events.Event, 0)
}

func (o *Order) recordEvent(event *events.Event) {
	o.events = append(o.events, event)
}

// Event Data Structures
type OrderInitiatedData struct {
	OrderID   models.ID `json:"order_id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
}

type OrderCompletedData struct {
	OrderID     models.ID `json:"order_id"`
	UserID      string    `json:"user_id"`
	ProductID   string    `json:"product_id"`
	CompletedAt time.Time `json:"completed_at"`
}

type OrderFailedData struct {
	OrderID   models.ID `json:"order_id"`
	UserID    string    `json:"user_id"`
	ProductID string    `json:"product_id"`
	Reason    string    `json:"reason"`
	FailedAt  time.Time `json:"failed_at"`
}

type OrderCompensationAttemptedData struct {
	OrderID models.ID `json:"order_id"`
	Step    string    `json:"step"`
	Success bool      `json:"success"`
	Error   string    `json:"error,omitempty"`
}

// OrderRepository is the order ledger port. Save persists the initiated
// order and must complete before any remote step is issued. UpdateStatus
// writes the terminal status and is idempotent at the storage level.
type OrderRepository interface {
	Save(ctx context.Context, order *Order) error
	UpdateStatus(ctx context.Context, id models.ID, status OrderStatus) error
	FindByID(ctx context.Context, id models.ID) (*Order, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*Order, error)
}
