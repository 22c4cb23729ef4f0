package application

import (
	"context"

	"github.com/draftea/order-system/order-service/domain"
	"github.com/draftea/order-system/shared/events"
	"github.com/draftea/order-system/shared/saga"
	"github.com/pkg/errors"
)

// ErrValidation is the cause of every command rejection that happens before
// the ledger write or any remote call.
var ErrValidation = errors.New("validation error")

// PlaceOrderCommand represents the command to place an order
type PlaceOrderCommand struct {
	UserID         string `json:"userId"`
	ProductID      string `json:"productId"`
	IdempotencyKey string `json:"-"`
}

// PlaceOrderResponse represents the outcome of an order placement
type PlaceOrderResponse struct {
	OrderID  string             `json:"order_id"`
	Status   domain.OrderStatus `json:"status"`
	Replayed bool               `json:"replayed,omitempty"`
}

// Completed reports whether the whole saga committed
func (r *PlaceOrderResponse) Completed() bool {
	return r.Status == domain.OrderStatusCompleted
}

// PlaceOrder orchestrates one order saga: ledger write-ahead, the ordered
// remote steps, compensation on failure and the terminal status write.
type PlaceOrder struct {
	orders     domain.OrderRepository
	inventory  domain.InventoryClient
	payments   domain.PaymentClient
	shipping   domain.ShippingClient
	eventStore events.EventStore
	publisher  events.Publisher
	executor   *saga.Executor
}

// NewPlaceOrder creates a new PlaceOrder use case
func NewPlaceOrder(
	orders domain.OrderRepository,
	inventory domain.InventoryClient,
	payments domain.PaymentClient,
	shipping domain.ShippingClient,
	eventStore events.EventStore,
	publisher events.Publisher,
	executor *saga.Executor,
) *PlaceOrder {
	return &PlaceOrder{
		orders:     orders,
		inventory:  inventory,
		payments:   payments,
		shipping:   shipping,
		eventStore: eventStore,
		publisher:  publisher,
		executor:   executor,
	}
}

// Execute executes the place order use case
func (uc *PlaceOrder) Execute(ctx context.Context, cmd *PlaceOrderCommand) (*PlaceOrderResponse, error) {
	if err := uc.validateCommand(cmd); err != nil {
		return nil, err
	}

	// A replayed request must not create a second ledger row or duplicate
	// downstream effects.
	if cmd.IdempotencyKey != "" {
		existing, err := uc.orders.FindByIdempotencyKey(ctx, cmd.IdempotencyKey)
		if err != nil {
			return nil, errors.Wrap(err, "failed to look up idempotency key")
		}
		if existing != nil {
			return &PlaceOrderResponse{
				OrderID:  existing.ID.String(),
				Status:   existing.Status,
				Replayed: true,
			}, nil
		}
	}

	order, err := domain.CreateOrder(cmd.UserID, cmd.ProductID, cmd.IdempotencyKey)
	if err != nil {
		return nil, errors.Wrap(ErrValidation, err.Error())
	}

	// Write-ahead: the initiated row must be durable before the first
	// remote call. If this write fails the saga aborts with no side
	// effects to undo.
	if err := uc.orders.Save(ctx, order); err != nil {
		return nil, errors.Wrap(err, "failed to create order")
	}
	uc.appendAndPublish(ctx, order, 0)

	run, err := uc.executor.Execute(ctx, uc.sagaSteps(order))
	if err != nil {
		return nil, errors.Wrap(err, "invalid order saga")
	}

	if run.Completed() {
		if err := order.Complete(); err != nil {
			return nil, errors.Wrap(err, "failed to complete order")
		}
	} else {
		reason := "step failed"
		if stepErr := run.StepErr(); stepErr != nil {
			reason = stepErr.Error()
		}
		if err := order.Fail(reason); err != nil {
			return nil, errors.Wrap(err, "failed to fail order")
		}
	}

	// The remote side effects are already committed downstream; a failed
	// terminal write is reported as infrastructure failure and does not
	// undo them.
	if err := uc.orders.UpdateStatus(ctx, order.ID, order.Status); err != nil {
		return nil, errors.Wrap(err, "failed to write terminal order status")
	}
	uc.appendAndPublish(ctx, order, 1)

	return &PlaceOrderResponse{
		OrderID: order.ID.String(),
		Status:  order.Status,
	}, nil
}

// sagaSteps is the compensation table for order placement: reserve, charge,
// ship, with release and refund as the undo actions and shipping
// irreversible. Compensation attempts are recorded on the order so the
// audit trail shows what was undone.
func (uc *PlaceOrder) sagaSteps(order *domain.Order) []saga.Step {
	return []saga.Step{
		{
			Name: domain.StepReserveInventory,
			Action: func(ctx context.Context) error {
				return uc.inventory.Reserve(ctx, order.ProductID)
			},
			Compensation: func(ctx context.Context) error {
				err := uc.inventory.Release(ctx, order.ProductID)
				order.RecordCompensation(domain.StepReserveInventory, err)
				return err
			},
		},
		{
			Name: domain.StepChargePayment,
			Action: func(ctx context.Context) error {
				return uc.payments.Charge(ctx, order.UserID)
			},
			Compensation: func(ctx context.Context) error {
				err := uc.payments.Refund(ctx, order.UserID)
				order.RecordCompensation(domain.StepChargePayment, err)
				return err
			},
		},
		{
			Name: domain.StepScheduleShipping,
			Action: func(ctx context.Context) error {
				return uc.shipping.Ship(ctx, order.UserID, order.ProductID)
			},
		},
	}
}

// appendAndPublish records the order's pending events in the event store
// and publishes them. The audit trail is best-effort: the ledger row is
// authoritative, so a failed append never changes the saga outcome.
func (uc *PlaceOrder) appendAndPublish(ctx context.Context, order *domain.Order, expectedVersion int) {
	evts := order.Events()
	if len(evts) == 0 {
		return
	}
	order.ClearEvents()

	if uc.eventStore != nil {
		_ = uc.eventStore.SaveEvents(ctx, order.ID, evts, expectedVersion)
	}
	if uc.publisher != nil {
		_ = uc.publisher.Publish(ctx, evts...)
	}
}

func (uc *PlaceOrder) validateCommand(cmd *PlaceOrderCommand) error {
	if cmd.UserID == "" {
		return errors.Wrap(ErrValidation, "user ID is required")
	}
	if cmd.ProductID == "" {
		return errors.Wrap(ErrValidation, "product ID is required")
	}
	return nil
}
