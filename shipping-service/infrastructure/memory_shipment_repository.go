package infrastructure

import (
	"context"
	"sync"

	"github.com/draftea/order-system/shared/models"
	"github.com/draftea/order-system/shipping-service/domain"
)

var _ domain.ShipmentRepository = (*MemoryShipmentRepository)(nil)

// MemoryShipmentRepository is an in-memory shipment repository for local
// mode and tests
type MemoryShipmentRepository struct {
	mu        sync.Mutex
	shipments map[string]*domain.Shipment
}

// NewMemoryShipmentRepository creates an empty in-memory shipment repository
func NewMemoryShipmentRepository() *MemoryShipmentRepository {
	return &MemoryShipmentRepository{
		shipments: make(map[string]*domain.Shipment),
	}
}

// Save stores a shipment
func (r *MemoryShipmentRepository) Save(_ context.Context, shipment *domain.Shipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *shipment
	r.shipments[shipment.ID.String()] = &copied
	return nil
}

// FindByID finds a shipment by ID
func (r *MemoryShipmentRepository) FindByID(_ context.Context, id models.ID) (*domain.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	shipment, ok := r.shipments[id.String()]
	if !ok {
		return nil, nil
	}
	copied := *shipment
	return &copied, nil
}
