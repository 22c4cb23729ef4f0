package infrastructure

import (
	"context"
	"database/sql"
	"time"

	"github.com/draftea/order-system/shared/models"
	"github.com/draftea/order-system/shipping-service/domain"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var _ domain.ShipmentRepository = (*PostgresShipmentRepository)(nil)

// PostgresShipmentRepository implements the shipment repository using PostgreSQL
type PostgresShipmentRepository struct {
	db *sqlx.DB
}

// NewPostgresShipmentRepository creates a new PostgresShipmentRepository
func NewPostgresShipmentRepository(db *sqlx.DB) *PostgresShipmentRepository {
	return &PostgresShipmentRepository{db: db}
}

// postgresShipment represents a shipment row
type postgresShipment struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	ProductID string    `db:"product_id"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	Version   int       `db:"version"`
}

// Save inserts a shipment
func (r *PostgresShipmentRepository) Save(ctx context.Context, shipment *domain.Shipment) error {
	query := `
		INSERT INTO shipments (id, user_id, product_id, status, created_at, updated_at, version)
		VALUES (:id, :user_id, :product_id, :status, :created_at, :updated_at, :version)`

	_, err := r.db.NamedExecContext(ctx, query, &postgresShipment{
		ID:        shipment.ID.String(),
		UserID:    shipment.UserID,
		ProductID: shipment.ProductID,
		Status:    string(shipment.Status),
		CreatedAt: shipment.Timestamps.CreatedAt,
		UpdatedAt: shipment.Timestamps.UpdatedAt,
		Version:   shipment.Version.Value,
	})
	if err != nil {
		return errors.Wrap(err, "failed to insert shipment")
	}

	return nil
}

// FindByID finds a shipment by ID
func (r *PostgresShipmentRepository) FindByID(ctx context.Context, id models.ID) (*domain.Shipment, error) {
	query := `
		SELECT id, user_id, product_id, status, created_at, updated_at, version
		FROM shipments
		WHERE id = $1`

	var pgShipment postgresShipment
	err := r.db.GetContext(ctx, &pgShipment, query, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to find shipment")
	}

	shipmentID, err := models.NewID(pgShipment.ID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid shipment ID")
	}

	return &domain.Shipment{
		ID:        shipmentID,
		UserID:    pgShipment.UserID,
		ProductID: pgShipment.ProductID,
		Status:    domain.ShipmentStatus(pgShipment.Status),
		Timestamps: models.Timestamps{
			CreatedAt: pgShipment.CreatedAt,
			UpdatedAt: pgShipment.UpdatedAt,
		},
		Version: models.Version{Value: pgShipment.Version},
	}, nil
}
