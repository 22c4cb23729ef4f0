package application

import (
	"context"
	"time"

	"github.com/draftea/order-system/payment-service/domain"
	"github.com/draftea/order-system/shared/events"
	"github.com/draftea/order-system/shared/models"
	"github.com/draftea/order-system/shared/telemetry"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ChargeAccountCommand represents the command to debit a user's account
type ChargeAccountCommand struct {
	UserID string `json:"userId"`
}

// ChargeAccountResponse represents the account after a charge
type ChargeAccountResponse struct {
	UserID  string       `json:"user_id"`
	Amount  models.Money `json:"amount"`
	Balance models.Money `json:"balance"`
}

// ChargeAccount use case debits the order price from a user's account
type ChargeAccount struct {
	store          domain.AccountStore
	eventPublisher events.Publisher
	price          models.Money
}

// NewChargeAccount creates a new ChargeAccount use case charging the given
// fixed price per order
func NewChargeAccount(store domain.AccountStore, eventPublisher events.Publisher, price models.Money) *ChargeAccount {
	return &ChargeAccount{
		store:          store,
		eventPublisher: eventPublisher,
		price:          price,
	}
}

// Execute debits the order price from the user's account
func (uc *ChargeAccount) Execute(ctx context.Context, cmd *ChargeAccountCommand) (*ChargeAccountResponse, error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "charge_account",
		trace.WithAttributes(
			attribute.String("user_id", cmd.UserID),
			attribute.Int64("amount", uc.price.Amount),
		),
	)
	defer span.End()

	status := "error"
	defer func() {
		telemetry.RecordCounter(ctx, "payment_operations_total", "Total payment operations", 1,
			attribute.String("operation", "charge"),
			attribute.String("status", status),
		)
		telemetry.RecordHistogram(ctx, "payment_operation_duration_seconds", "Payment operation duration", time.Since(start).Seconds(),
			attribute.String("operation", "charge"),
			attribute.String("status", status),
		)
	}()

	if cmd.UserID == "" {
		err := errors.New("user ID is required")
		span.RecordError(err)
		return nil, err
	}

	account, err := uc.store.Charge(ctx, cmd.UserID, uc.price)
	if err != nil {
		span.RecordError(err)
		if errors.Cause(err) == domain.ErrInsufficientFunds {
			status = "rejected"
			if acc, findErr := uc.store.FindByUserID(ctx, cmd.UserID); findErr == nil && acc != nil {
				uc.publish(ctx, events.NewEvent(acc.ID, events.InsufficientFundsEvent, domain.InsufficientFundsData{
					UserID:          cmd.UserID,
					RequestedAmount: uc.price,
				}))
			}
		}
		return nil, err
	}

	status = "success"
	uc.publish(ctx, events.NewEvent(account.ID, events.AccountChargedEvent, domain.AccountChargedData{
		UserID:  account.UserID,
		Amount:  uc.price,
		Balance: account.Balance,
	}))

	return &ChargeAccountResponse{
		UserID:  account.UserID,
		Amount:  uc.price,
		Balance: account.Balance,
	}, nil
}

func (uc *ChargeAccount) publish(ctx context.Context, event *events.Event) {
	if uc.eventPublisher == nil {
		return
	}
	_ = uc.eventPublisher.Publish(ctx, event)
}
