package application

import (
	"context"

	"github.com/draftea/order-system/shared/models"
	"github.com/draftea/order-system/shipping-service/domain"
	"github.com/pkg/errors"
)

// GetShipmentQuery represents the query to retrieve a shipment
type GetShipmentQuery struct {
	ShipmentID string `json:"shipment_id"`
}

// GetShipmentResponse represents a shipment read model
type GetShipmentResponse struct {
	ShipmentID string                `json:"shipment_id"`
	UserID     string                `json:"user_id"`
	ProductID  string                `json:"product_id"`
	Status     domain.ShipmentStatus `json:"status"`
}

// GetShipment use case
type GetShipment struct {
	shipments domain.ShipmentRepository
}

// NewGetShipment creates a new GetShipment use case
func NewGetShipment(shipments domain.ShipmentRepository) *GetShipment {
	return &GetShipment{shipments: shipments}
}

// Execute executes the get shipment query
func (uc *GetShipment) Execute(ctx context.Context, query *GetShipmentQuery) (*GetShipmentResponse, error) {
	id, err := models.NewID(query.ShipmentID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid shipment ID")
	}

	shipment, err := uc.shipments.FindByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find shipment")
	}
	if shipment == nil {
		return nil, errors.New("shipment not found")
	}

	return &GetShipmentResponse{
		ShipmentID: shipment.ID.String(),
		UserID:     shipment.UserID,
		ProductID:  shipment.ProductID,
		Status:     shipment.Status,
	}, nil
}
