package infrastructure

import (
	"context"
	"database/sql"
	"time"

	"github.com/draftea/order-system/order-service/domain"
	"github.com/draftea/order-system/shared/models"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var _ domain.OrderRepository = (*PostgresOrderRepository)(nil)

// PostgresOrderRepository implements the order ledger using PostgreSQL.
// Each saga attempt owns its own row; concurrent sagas never contend on
// the same record.
type PostgresOrderRepository struct {
	db *sqlx.DB
}

// NewPostgresOrderRepository creates a new PostgresOrderRepository
func NewPostgresOrderRepository(db *sqlx.DB) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db}
}

// postgresOrder represents an order row
type postgresOrder struct {
	ID             string    `db:"id"`
	UserID         string    `db:"user_id"`
	ProductID      string    `db:"product_id"`
	Status         string    `db:"status"`
	IdempotencyKey *string   `db:"idempotency_key"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
	Version        int       `db:"version"`
}

// Save inserts the initiated order row. It must succeed before the saga
// issues any remote call.
func (r *PostgresOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (
			id, user_id, product_id, status, idempotency_key,
			created_at, updated_at, version
		) VALUES (
			:id, :user_id, :product_id, :status, :idempotency_key,
			:created_at, :updated_at, :version
		)`

	_, err := r.db.NamedExecContext(ctx, query, r.toPostgres(order))
	if err != nil {
		return errors.Wrap(err, "failed to insert order")
	}

	return nil
}

// UpdateStatus writes the terminal status. The write is idempotent and
// monotonic: repeating the same status changes nothing, and a row already
// holding a different terminal status is never overwritten.
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, id models.ID, status domain.OrderStatus) error {
	query := `
		UPDATE orders
		SET status = $2, updated_at = $3, version = version + 1
		WHERE id = $1 AND (status = 'initiated' OR status = $2)`

	res, err := r.db.ExecContext(ctx, query, id.String(), string(status), time.Now())
	if err != nil {
		return errors.Wrap(err, "failed to update order status")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return errors.Errorf("order %s not found or already in a different terminal status", id)
	}

	return nil
}

// FindByID finds an order by ID
func (r *PostgresOrderRepository) FindByID(ctx context.Context, id models.ID) (*domain.Order, error) {
	query := `
		SELECT id, user_id, product_id, status, idempotency_key,
			   created_at, updated_at, version
		FROM orders
		WHERE id = $1`

	var pgOrder postgresOrder
	err := r.db.GetContext(ctx, &pgOrder, query, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to find order")
	}

	return r.toDomain(&pgOrder)
}

// FindByIdempotencyKey finds an order by its idempotency key
func (r *PostgresOrderRepository) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	query := `
		SELECT id, user_id, product_id, status, idempotency_key,
			   created_at, updated_at, version
		FROM orders
		WHERE idempotency_key = $1`

	var pgOrder postgresOrder
	err := r.db.GetContext(ctx, &pgOrder, query, key)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to find order by idempotency key")
	}

	return r.toDomain(&pgOrder)
}

func (r *PostgresOrderRepository) toPostgres(order *domain.Order) *postgresOrder {
	var key *string
	if order.IdempotencyKey != "" {
		key = &order.IdempotencyKey
	}

	return &postgresOrder{
		ID:             order.ID.String(),
		UserID:         order.UserID,
		ProductID:      order.ProductID,
		Status:         string(order.Status),
		IdempotencyKey: key,
		CreatedAt:      order.Timestamps.CreatedAt,
		UpdatedAt:      order.Timestamps.UpdatedAt,
		Version:        order.Version.Value,
	}
}

func (r *PostgresOrderRepository) toDomain(pgOrder *postgresOrder) (*domain.Order, error) {
	id, err := models.NewID(pgOrder.ID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid order ID")
	}

	order := &domain.Order{
		ID:        id,
		UserID:    pgOrder.UserID,
		ProductID: pgOrder.ProductID,
		Status:    domain.OrderStatus(pgOrder.Status),
		Timestamps: models.Timestamps{
			CreatedAt: pgOrder.CreatedAt,
			UpdatedAt: pgOrder.UpdatedAt,
		},
		Version: models.Version{Value: pgOrder.Version},
	}

	if pgOrder.IdempotencyKey != nil {
		order.IdempotencyKey = *pgOrder.IdempotencyKey
	}

	return order, nil
}
