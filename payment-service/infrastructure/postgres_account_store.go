package infrastructure

import (
	"context"
	"database/sql"
	"time"

	"github.com/draftea/order-system/payment-service/domain"
	"github.com/draftea/order-system/shared/models"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var _ domain.AccountStore = (*PostgresAccountStore)(nil)

// PostgresAccountStore implements the account store using PostgreSQL.
// Charge is a single conditional UPDATE, so concurrent sagas contend on the
// row and the balance never goes negative.
type PostgresAccountStore struct {
	db *sqlx.DB
}

// NewPostgresAccountStore creates a new PostgresAccountStore
func NewPostgresAccountStore(db *sqlx.DB) *PostgresAccountStore {
	return &PostgresAccountStore{db: db}
}

// postgresAccount represents an account row
type postgresAccount struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Balance   int64     `db:"balance"`
	Currency  string    `db:"currency"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	Version   int       `db:"version"`
}

// Charge debits the amount when the balance covers it
func (s *PostgresAccountStore) Charge(ctx context.Context, userID string, amount models.Money) (*domain.Account, error) {
	query := `
		UPDATE accounts
		SET balance = balance - $2, updated_at = $3, version = version + 1
		WHERE user_id = $1 AND balance >= $2 AND currency = $4
		RETURNING id, user_id, balance, currency, created_at, updated_at, version`

	var pgAccount postgresAccount
	err := s.db.GetContext(ctx, &pgAccount, query, userID, amount.Amount, time.Now(), amount.Currency)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrInsufficientFunds
		}
		return nil, errors.Wrap(err, "failed to charge account")
	}

	return s.toDomain(&pgAccount)
}

// Refund credits the amount back
func (s *PostgresAccountStore) Refund(ctx context.Context, userID string, amount models.Money) (*domain.Account, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $2, updated_at = $3, version = version + 1
		WHERE user_id = $1 AND currency = $4
		RETURNING id, user_id, balance, currency, created_at, updated_at, version`

	var pgAccount postgresAccount
	err := s.db.GetContext(ctx, &pgAccount, query, userID, amount.Amount, time.Now(), amount.Currency)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.Errorf("account for user %s not found", userID)
		}
		return nil, errors.Wrap(err, "failed to refund account")
	}

	return s.toDomain(&pgAccount)
}

// FindByUserID finds an account by user ID
func (s *PostgresAccountStore) FindByUserID(ctx context.Context, userID string) (*domain.Account, error) {
	query := `
		SELECT id, user_id, balance, currency, created_at, updated_at, version
		FROM accounts
		WHERE user_id = $1`

	var pgAccount postgresAccount
	err := s.db.GetContext(ctx, &pgAccount, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to find account")
	}

	return s.toDomain(&pgAccount)
}

// Save upserts an account. Used for seeding.
func (s *PostgresAccountStore) Save(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (id, user_id, balance, currency, created_at, updated_at, version)
		VALUES (:id, :user_id, :balance, :currency, :created_at, :updated_at, :version)
		ON CONFLICT (user_id) DO UPDATE
		SET balance = EXCLUDED.balance,
			currency = EXCLUDED.currency,
			updated_at = EXCLUDED.updated_at,
			version = accounts.version + 1`

	_, err := s.db.NamedExecContext(ctx, query, &postgresAccount{
		ID:        account.ID.String(),
		UserID:    account.UserID,
		Balance:   account.Balance.Amount,
		Currency:  account.Balance.Currency,
		CreatedAt: account.Timestamps.CreatedAt,
		UpdatedAt: account.Timestamps.UpdatedAt,
		Version:   account.Version.Value,
	})
	if err != nil {
		return errors.Wrap(err, "failed to save account")
	}

	return nil
}

func (s *PostgresAccountStore) toDomain(pgAccount *postgresAccount) (*domain.Account, error) {
	id, err := models.NewID(pgAccount.ID)
	if err != nil {
		return nil, errors.Wrap(err, "invalid account ID")
	}

	return &domain.Account{
		ID:      id,
		UserID:  pgAccount.UserID,
		Balance: models.NewMoney(pgAccount.Balance, pgAccount.Currency),
		Timestamps: models.Timestamps{
			CreatedAt: pgAccount.CreatedAt,
			UpdatedAt: pgAccount.UpdatedAt,
		},
		Version: models.Version{Value: pgAccount.Version},
	}, nil
}
