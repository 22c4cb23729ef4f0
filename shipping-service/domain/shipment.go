package domain

import (
	"context"

	"github.com/draftea/order-system/shared/models"
	"github.com/pkg/errors"
)

// ShipmentStatus represents the status of a shipment
type ShipmentStatus string

const (
	ShipmentStatusScheduled ShipmentStatus = "scheduled"
)

// Shipment records a scheduled delivery. Scheduling is irreversible: there
// is no cancel operation.
type Shipment struct {
	ID         models.ID      `json:"id"`
	UserID     string         `json:"user_id"`
	ProductID  string         `json:"product_id"`
	Status     ShipmentStatus `json:"status"`
	Timestamps models.Timestamps
	Version    models.Version
}

// NewShipment schedules a shipment of a product to a user
func NewShipment(userID, productID string) (*Shipment, error) {
	if userID == "" {
		return nil, errors.New("user ID is required")
	}
	if productID == "" {
		return nil, errors.New("product ID is required")
	}

	return &Shipment{
		ID:         models.GenerateUUID(),
		UserID:     userID,
		ProductID:  productID,
		Status:     ShipmentStatusScheduled,
		Timestamps: models.NewTimestamps(),
		Version:    models.NewVersion(),
	}, nil
}

// ShipmentRepository stores shipments
type ShipmentRepository interface {
	Save(ctx context.Context, shipment *Shipment) error
	FindByID(ctx context.Context, id models.ID) (*Shipment, error)
}

// ShipmentScheduledData is the payload of shipment.scheduled events
type ShipmentScheduledData struct {
	ShipmentID models.ID `json:"shipment_id"`
	UserID     string    `json:"user_id"`
	ProductID  string    `json:"product_id"`
}
