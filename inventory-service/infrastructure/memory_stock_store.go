package infrastructure

import (
	"context"
	"sync"

	"github.com/draftea/order-system/inventory-service/domain"
	"github.com/pkg/errors"
)

var _ domain.StockStore = (*MemoryStockStore)(nil)

// MemoryStockStore is an in-memory stock store for local mode and tests.
// A single mutex serializes reservations, which keeps the count from going
// negative under concurrent sagas.
type MemoryStockStore struct {
	mu    sync.Mutex
	stock map[string]*domain.Stock
}

// NewMemoryStockStore creates an empty in-memory stock store
func NewMemoryStockStore() *MemoryStockStore {
	return &MemoryStockStore{
		stock: make(map[string]*domain.Stock),
	}
}

// Reserve takes one unit off the shelf
func (s *MemoryStockStore) Reserve(_ context.Context, productID string) (*domain.Stock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stock, ok := s.stock[productID]
	if !ok || stock.Available <= 0 {
		return nil, domain.ErrOutOfStock
	}

	stock.Available--
	stock.Timestamps = stock.Timestamps.Update()
	stock.Version = stock.Version.Update()
	return s.snapshot(stock), nil
}

// Release puts one unit back
func (s *MemoryStockStore) Release(_ context.Context, productID string) (*domain.Stock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stock, ok := s.stock[productID]
	if !ok {
		return nil, errors.Errorf("product %s not found", productID)
	}

	stock.Available++
	stock.Timestamps = stock.Timestamps.Update()
	stock.Version = stock.Version.Update()
	return s.snapshot(stock), nil
}

// FindByProductID finds a stock record by product ID
func (s *MemoryStockStore) FindByProductID(_ context.Context, productID string) (*domain.Stock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stock, ok := s.stock[productID]
	if !ok {
		return nil, nil
	}
	return s.snapshot(stock), nil
}

// Save upserts a stock record
func (s *MemoryStockStore) Save(_ context.Context, stock *domain.Stock) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stock[stock.ProductID] = s.snapshot(stock)
	return nil
}

func (s *MemoryStockStore) snapshot(stock *domain.Stock) *domain.Stock {
	copied := *stock
	return &copied
}
