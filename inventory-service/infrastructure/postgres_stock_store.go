package infrastructure

import (
	"context"
	"database/sql"
	"time"

	"github.com/draftea/order-system/inventory-service/domain"
	"github.com/draftea/order-system/shared/models"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var _ domain.StockStore = (*PostgresStockStore)(nil)

// PostgresStockStore implements the stock store using PostgreSQL. Reserve
// and Release are single conditional UPDATEs, so concurrent sagas contend
// on the row instead of a process-wide lock and the count never goes below
// zero.
type PostgresStockStore struct {
	db *sqlx.DB
}

// NewPostgresStockStore creates a new PostgresStockStore
func NewPostgresStockStore(db *sqlx.DB) *PostgresStockStore {
	return &PostgresStockStore{db: db}
}

// postgresStock represents a stock row
type postgresStock struct {
	ID        string    `db:"id"`
	ProductID string    `db:"product_id"`
	Available int       `db:"available"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	Version   int       `db:"version"`
}

// Reserve takes one unit off the shelf
func (s *PostgresStockStore) Reserve(ctx context.Context, productID string) (*domain.Stock, error) {
	query := `
		UPDATE stock
		SET available = available - 1, updated_at = $2, version = version + 1
		WHERE product_id = $1 AND available > 0
		RETURNING id, product_id, available, created_at, updated_at, version`

	var pgStock postgresStock
	err := s.db.GetContext(ctx, &pgStock, query, productID, time.Now())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrOutOfStock
		}
		return nil, errors.Wrap(err, "failed to reserve stock")
	}

	return s.toDomain(&pgStock)
}

// Release puts one unit back
func (s *PostgresStockStore) Release(ctx context.Context, productID string) (*domain.Stock, error) {
	query := `
		UPDATE stock
		SET available = available + 1, updated_at = $2, version = version + 1
		WHERE product_id = $1
		RETURNING id, product_id, available, created_at, updated_at, version`

	var pgStock postgresStock
	err := s.db.GetContext(ctx, &pgStock, query, productID, time.Now())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.Errorf("product %s not found", productID)
		}
		return nil, errors.Wrap(err, "failed to release stock")
	}

	return s.toDomain(&pgStock)
}

// FindByProductID finds a stock record by product ID
func (s *PostgresStockStore) FindByProductID(ctx context.Context, productID string) (*domain.Stock, error) {
	query := `
		SELECT id, product_id, available, created_at, updated_at, version
		FROM stock
		WHERE product_id = $1`

	var pgStock postgresStock
	err := s.db.GetContext(ctx, &pgStock, query, productID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to find stock")
	}

	return s.toDomain(&pgStock)
}

// Save upserts a stock record. Used for seeding and restocking.
func (s *PostgresStockStore) Save(ctx context.Context, stock *domain.Stock) error {
	query := `
		INSERT INTO stock (id, product_id, available, created_at, updated_at, version)
		VALUES (:id, :product_id, :available, :created_at, :updated_at, :version)
		ON CONFLICT (product_id) DO UPDATE
		SET available = EXCLUDED.available,
			updated_at = EXCLUDED.updated_at,
			version = stock.version + 1`

	_, err := s.db.NamedExecContext(ctx, query, &postgresStock{
		ID:        stock.ID.String(),
		ProductID: stock.ProductID,
		Available: stock.Available,
		CreatedAt: stock.Timestamps.CreatedAt,
		UpdatedAt: stock.Timestamps.UpdatedAt,
		Version:   stock.Version.Value,
	})
	if err != nil {
		return errors.Wrap(err, "failed to save stock")
	}

	return nil
}

func (s *PostgresStockStore) toDomain(pgStock *postgresStock) (*domain.Stock, error) {
	id, err := models.NewID(pgStock.ID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid stock ID")
	}

	return &domain.Stock{
		ID:        id,
		ProductID: pgStock.ProductID,
		Available: pgStock.Available,
		Timestamps: models.Timestamps{
			CreatedAt: pgStock.CreatedAt,
			UpdatedAt: pgStock.UpdatedAt,
		},
		Version: models.Version{Value: pgStock.Version},
	}, nil
}
