package domain

import (
	"context"

	"github.com/draftea/order-system/shared/models"
	"github.com/pkg/errors"
)

// ErrInsufficientFunds is returned when a charge finds too little balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Account holds a user's balance
type Account struct {
	ID         models.ID    `json:"id"`
	UserID     string       `json:"user_id"`
	Balance    models.Money `json:"balance"`
	Timestamps models.Timestamps
	Version    models.Version
}

// NewAccount creates an account for a user
func NewAccount(userID string, balance models.Money) (*Account, error) {
	if userID == "" {
		return nil, errors.New("user ID is required")
	}
	if balance.Amount < 0 {
		return nil, errors.New("balance cannot be negative")
	}

	return &Account{
		ID:         models.GenerateUUID(),
		UserID:     userID,
		Balance:    balance,
		Timestamps: models.NewTimestamps(),
		Version:    models.NewVersion(),
	}, nil
}

// AccountStore debits and credits accounts. Charge is atomic with respect
// to concurrent calls for the same user; the balance never goes negative.
type AccountStore interface {
	// Charge debits the amount and returns the account after the debit.
	// ErrInsufficientFunds when the balance does not cover it (or the
	// account does not exist).
	Charge(ctx context.Context, userID string, amount models.Money) (*Account, error)
	// Refund credits the amount back.
	Refund(ctx context.Context, userID string, amount models.Money) (*Account, error)
	FindByUserID(ctx context.Context, userID string) (*Account, error)
	Save(ctx context.Context, account *Account) error
}

// AccountChargedData is the payload of account.charged events
type AccountChargedData struct {
	UserID  string       `json:"user_id"`
	Amount  models.Money `json:"amount"`
	Balance models.Money `json:"balance"`
}

// AccountRefundedData is the payload of account.refunded events
type AccountRefundedData struct {
	UserID  string       `json:"user_id"`
	Amount  models.Money `json:"amount"`
	Balance models.Money `json:"balance"`
}

// InsufficientFundsData is the payload of account.insufficient.funds events
type InsufficientFundsData struct {
	UserID          string       `json:"user_id"`
	RequestedAmount models.Money `json:"requested_amount"`
}
