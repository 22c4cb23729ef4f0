package infrastructure

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/draftea/order-system/payment-service/domain"
	"github.com/draftea/order-system/shared/models"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
)

func newMockAccountStore(t *testing.T) (*PostgresAccountStore, sqlmock.Sqlmock) {
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

	return NewPostgresAccountStore(sqlx.NewDb(db, "sqlmock")), mock
}

func accountColumns() []string {
	return []string{"id", "user_id", "balance", "currency", "created_at", "updated_at", "version"}
}

func TestPostgresAccountStore_Charge(t *testing.T) {
	store, mock := newMockAccountStore(t)
	id := models.GenerateUUID()
	now := time.Now()

	mock.ExpectQuery("UPDATE accounts").
		WithArgs("user123", int64(100), sqlmock.AnyArg(), "USD").
		WillReturnRows(sqlmock.NewRows(accountColumns()).
			AddRow(id.String(), "user123", int64(0), "USD", now, now, 2))

	account, err := store.Charge(context.Background(), "user123", models.NewMoney(100, "USD"))
	assert.NoError(t, err)
	assert.Equal(t, int64(0), account.Balance.Amount)
	assert.Equal(t, "USD", account.Balance.Currency)
}

func TestPostgresAccountStore_Charge_InsufficientFunds(t *testing.T) {
	store, mock := newMockAccountStore(t)

	// The conditional UPDATE matches no row when the balance is short.
	mock.ExpectQuery("UPDATE accounts").
		WithArgs("user123", int64(100), sqlmock.AnyArg(), "USD").
		WillReturnRows(sqlmock.NewRows(accountColumns()))

	_, err := store.Charge(context.Background(), "user123", models.NewMoney(100, "USD"))
	assert.Equal(t, domain.ErrInsufficientFunds, err)
}

func TestPostgresAccountStore_Refund(t *testing.T) {
	store, mock := newMockAccountStore(t)
	id := models.GenerateUUID()
	now := time.Now()

	mock.ExpectQuery("UPDATE accounts").
		WithArgs("user123", int64(100), sqlmock.AnyArg(), "USD").
		WillReturnRows(sqlmock.NewRows(accountColumns()).
			AddRow(id.String(), "user123", int64(100), "USD", now, now, 3))

	account, err := store.Refund(context.Background(), "user123", models.NewMoney(100, "USD"))
	assert.NoError(t, err)
	assert.Equal(t, int64(100), account.Balance.Amount)
}

func TestPostgresAccountStore_FindByUserID_NotFound(t *testing.T) {
	store, mock := newMockAccountStore(t)

	mock.ExpectQuery("SELECT id, user_id, balance").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(accountColumns()))

	account, err := store.FindByUserID(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, account)
}
