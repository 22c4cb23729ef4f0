package application

import (
	"context"

	"github.com/draftea/order-system/payment-service/domain"
	"github.com/draftea/order-system/shared/models"
	"github.com/pkg/errors"
)

// GetAccountQuery represents the query to read a user's balance
type GetAccountQuery struct {
	UserID string `json:"user_id"`
}

// GetAccountResponse represents an account read model
type GetAccountResponse struct {
	UserID  string       `json:"user_id"`
	Balance models.Money `json:"balance"`
}

// GetAccount use case
type GetAccount struct {
	store domain.AccountStore
}

// NewGetAccount creates a new GetAccount use case
func NewGetAccount(store domain.AccountStore) *GetAccount {
	return &GetAccount{store: store}
}

// Execute executes the get account query
func (uc *GetAccount) Execute(ctx context.Context, query *GetAccountQuery) (*GetAccountResponse, error) {
	if query.UserID == "" {
		return nil, errors.New("user ID is required")
	}

	account, err := uc.store.FindByUserID(ctx, query.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find account")
	}
	if account == nil {
		return nil, errors.New("account not found")
	}

	return &GetAccountResponse{
		UserID:  account.UserID,
		Balance: account.Balance,
	}, nil
}
