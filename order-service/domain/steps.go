package domain

import (
	"context"

	"github.com/pkg/errors"
)

// Downstream business-rule rejections. The saga treats them like any other
// step failure; they exist so callers and the audit trail can name the cause.
var (
	ErrOutOfStock        = errors.New("out of stock")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Saga step names, in execution order.
const (
	StepReserveInventory = "reserve_inventory"
	StepChargePayment    = "charge_payment"
	StepScheduleShipping = "schedule_shipping"
)

// InventoryClient reserves and releases stock for a product. Implementations
// normalize every fault, remote rejection, network error or timeout, into an
// error return; they never panic past the saga executor.
type InventoryClient interface {
	Reserve(ctx context.Context, productID string) error
	Release(ctx context.Context, productID string) error
}

// PaymentClient charges and refunds a user account.
type PaymentClient interface {
	Charge(ctx context.Context, userID string) error
	Refund(ctx context.Context, userID string) error
}

// ShippingClient schedules a shipment. Scheduling is the final, irreversible
// step; it has no compensation.
type ShippingClient interface {
	Ship(ctx context.Context, userID, productID string) error
}
