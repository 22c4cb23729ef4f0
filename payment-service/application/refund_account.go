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

// RefundAccountCommand represents the command to credit a charge back
type RefundAccountCommand struct {
	UserID string `json:"userId"`
}

// RefundAccountResponse represents the account after a refund
type RefundAccountResponse struct {
	UserID  string       `json:"user_id"`
	Amount  models.Money `json:"amount"`
	Balance models.Money `json:"balance"`
}

// RefundAccount use case credits the order price back. It backs the saga
// compensation path, so it stays deliberately forgiving: refunding is valid
// whenever the account exists.
type RefundAccount struct {
	store          domain.AccountStore
	eventPublisher events.Publisher
	price          models.Money
}

// NewRefundAccount creates a new RefundAccount use case
func NewRefundAccount(store domain.AccountStore, eventPublisher events.Publisher, price models.Money) *RefundAccount {
	return &RefundAccount{
		store:          store,
		eventPublisher: eventPublisher,
		price:          price,
	}
}

// Execute credits the order price back to the user's account
func (uc *RefundAccount) Execute(ctx context.Context, cmd *RefundAccountCommand) (*RefundAccountResponse, error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "refund_account",
		trace.WithAttributes(
			attribute.String("user_id", cmd.UserID),
			attribute.Int64("amount", uc.price.Amount),
		),
	)
	defer span.End()

	status := "error"
	defer func() {
		telemetry.RecordCounter(ctx, "payment_operations_total", "Total payment operations", 1,
			attribute.String("operation", "refund"),
			attribute.String("status", status),
		)
		telemetry.RecordHistogram(ctx, "payment_operation_duration_seconds", "Payment operation duration", time.Since(start).Seconds(),
			attribute.String("operation", "refund"),
			attribute.String("status", status),
		)
	}()

	if cmd.UserID == "" {
		err := errors.New("user ID is required")
		span.RecordError(err)
		return nil, err
	}

	account, err := uc.store.Refund(ctx, cmd.UserID, uc.price)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	status = "success"
	if uc.eventPublisher != nil {
		_ = uc.eventPublisher.Publish(ctx, events.NewEvent(account.ID, events.AccountRefundedEvent, domain.AccountRefundedData{
			UserID:  account.UserID,
			Amount:  uc.price,
			Balance: account.Balance,
		}))
	}

	return &RefundAccountResponse{
		UserID:  account.UserID,
		Amount:  uc.price,
		Balance: account.Balance,
	}, nil
}
