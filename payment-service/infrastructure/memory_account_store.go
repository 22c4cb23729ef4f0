package infrastructure

import (
	"context"
	"sync"

	"github.com/draftea/order-system/payment-service/domain"
	"github.com/draftea/order-system/shared/models"
	"github.com/pkg/errors"
)

var _ domain.AccountStore = (*MemoryAccountStore)(nil)

// MemoryAccountStore is an in-memory account store for local mode and tests
type MemoryAccountStore struct {
	mu       sync.Mutex
	accounts map[string]*domain.Account
}

// NewMemoryAccountStore creates an empty in-memory account store
func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{
		accounts: make(map[string]*domain.Account),
	}
}

// Charge debits the amount when the balance covers it
func (s *MemoryAccountStore) Charge(_ context.Context, userID string, amount models.Money) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[userID]
	if !ok || account.Balance.Currency != amount.Currency || account.Balance.Amount < amount.Amount {
		return nil, domain.ErrInsufficientFunds
	}

	balance, err := account.Balance.Subtract(amount)
	if err != nil {
		return nil, err
	}
	account.Balance = balance
	account.Timestamps = account.Timestamps.Update()
	account.Version = account.Version.Update()
	return s.snapshot(account), nil
}

// Refund credits the amount back
func (s *MemoryAccountStore) Refund(_ context.Context, userID string, amount models.Money) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[userID]
	if !ok {
		return nil, errors.Errorf("account for user %s not found", userID)
	}

	balance, err := account.Balance.Add(amount)
	if err != nil {
		return nil, err
	}
	account.Balance = balance
	account.Timestamps = account.Timestamps.Update()
	account.Version = account.Version.Update()
	return s.snapshot(account), nil
}

// FindByUserID finds an account by user ID
func (s *MemoryAccountStore) FindByUserID(_ context.Context, userID string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[userID]
	if !ok {
		return nil, nil
	}
	return s.snapshot(account), nil
}

// Save upserts an account
func (s *MemoryAccountStore) Save(_ context.Context, account *domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[account.UserID] = s.snapshot(account)
	return nil
}

func (s *MemoryAccountStore) snapshot(account *domain.Account) *domain.Account {
	copied := *account
	return &copied
}
