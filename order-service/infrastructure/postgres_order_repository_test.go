package infrastructure

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/draftea/order-system/order-service/domain"
	"github.com/draftea/order-system/shared/models"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func newMockRepository(t *testing.T) (*PostgresOrderRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet expectations: %v", err)
		}
	})

	return NewPostgresOrderRepository(sqlx.NewDb(db, "sqlmock")), mock
}

func TestPostgresOrderRepository_Save(t *testing.T) {
	repo, mock := newMockRepository(t)

	order, err := domain.CreateOrder("user123", "item123", "")
	assert.NoError(t, err)

	mock.ExpectExec("INSERT INTO orders").
		WithArgs(order.ID.String(), "user123", "item123", "initiated", nil,
			sqlmock.AnyArg(), sqlmock.AnyArg(), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Save(context.Background(), order))
}

func TestPostgresOrderRepository_Save_Error(t *testing.T) {
	repo, mock := newMockRepository(t)

	order, _ := domain.CreateOrder("user123", "item123", "retry-abc")

	mock.ExpectExec("INSERT INTO orders").
		WillReturnError(errors.New("connection refused"))

	err := repo.Save(context.Background(), order)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert order")
}

func TestPostgresOrderRepository_UpdateStatus(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := models.GenerateUUID()

	mock.ExpectExec("UPDATE orders").
		WithArgs(id.String(), "completed", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.UpdateStatus(context.Background(), id, domain.OrderStatusCompleted))
}

func TestPostgresOrderRepository_UpdateStatus_Idempotent(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := models.GenerateUUID()

	// The guard clause matches rows already holding the same status, so a
	// repeated terminal write still affects the row and stays an error-free
	// no-op.
	mock.ExpectExec("UPDATE orders").
		WithArgs(id.String(), "failed", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE orders").
		WithArgs(id.String(), "failed", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.UpdateStatus(context.Background(), id, domain.OrderStatusFailed))
	assert.NoError(t, repo.UpdateStatus(context.Background(), id, domain.OrderStatusFailed))
}

func TestPostgresOrderRepository_UpdateStatus_ConflictingTerminal(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := models.GenerateUUID()

	mock.ExpectExec("UPDATE orders").
		WithArgs(id.String(), "completed", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), id, domain.OrderStatusCompleted)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "different terminal status")
}

func TestPostgresOrderRepository_FindByID(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := models.GenerateUUID()
	now := time.Now()

	mock.ExpectQuery("SELECT id, user_id, product_id, status").
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "product_id", "status", "idempotency_key",
			"created_at", "updated_at", "version",
		}).AddRow(id.String(), "user123", "item123", "completed", nil, now, now, 2))

	order, err := repo.FindByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, id, order.ID)
	assert.Equal(t, domain.OrderStatusCompleted, order.Status)
	assert.Empty(t, order.IdempotencyKey)
}

func TestPostgresOrderRepository_FindByID_NotFound(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := models.GenerateUUID()

	mock.ExpectQuery("SELECT id, user_id, product_id, status").
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "product_id", "status", "idempotency_key",
			"created_at", "updated_at", "version",
		}))

	order, err := repo.FindByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Nil(t, order)
}

func TestPostgresOrderRepository_FindByIdempotencyKey(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := models.GenerateUUID()
	key := "retry-abc"
	now := time.Now()

	mock.ExpectQuery("SELECT id, user_id, product_id, status").
		WithArgs(key).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "product_id", "status", "idempotency_key",
			"created_at", "updated_at", "version",
		}).AddRow(id.String(), "user123", "item123", "failed", &key, now, now, 2))

	order, err := repo.FindByIdempotencyKey(context.Background(), key)
	assert.NoError(t, err)
	assert.Equal(t, key, order.IdempotencyKey)
	assert.Equal(t, domain.OrderStatusFailed, order.Status)
}
