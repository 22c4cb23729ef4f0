package config

import (
	"context"
	"fmt"
	"log"

	"github.com/draftea/order-system/payment-service/application"
	"github.com/draftea/order-system/payment-service/domain"
	"github.com/draftea/order-system/payment-service/handlers"
	"github.com/draftea/order-system/payment-service/infrastructure"
	sharedinfra "github.com/draftea/order-system/shared/infrastructure"
	"github.com/draftea/order-system/shared/models"
	"github.com/draftea/order-system/shared/telemetry"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Dependencies struct {
	// Database
	DB *sqlx.DB

	// Stores
	AccountStore *infrastructure.PostgresAccountStore

	// Use Cases
	ChargeAccount *application.ChargeAccount
	RefundAccount *application.RefundAccount
	GetAccount    *application.GetAccount

	// HTTP Handlers
	PaymentHandlers *handlers.PaymentHandlers

	// Infrastructure
	EventPublisher *sharedinfra.SNSPublisherAdapter

	// Telemetry
	Telemetry         *telemetry.Telemetry
	TelemetryShutdown func()
}

func BuildDependencies(ctx context.Context, config *Config) (*Dependencies, error) {
	deps := &Dependencies{}

	// Initialize telemetry first
	if config.Telemetry.Enabled {
		telConfig := telemetry.PaymentServiceConfig.WithOTLPEndpoint(config.Telemetry.OTLPEndpoint)
		tel, telemetryShutdown, err := telemetry.InitTelemetry(ctx, telConfig)
		if err != nil {
			log.Printf("Failed to initialize telemetry: %v", err)
		} else {
			deps.Telemetry = tel
			deps.TelemetryShutdown = telemetryShutdown
		}
	}

	// Initialize database
	db, err := sqlx.Connect("postgres", config.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	deps.DB = db

	// Initialize AWS infrastructure
	eventPublisher, err := sharedinfra.NewSNSPublisherAdapter(config.AWS.SNSTopicArn)
	if err != nil {
		return nil, fmt.Errorf("failed to create SNS publisher: %w", err)
	}
	deps.EventPublisher = eventPublisher

	// Initialize stores
	deps.AccountStore = infrastructure.NewPostgresAccountStore(db)

	price := models.NewMoney(config.Pricing.Amount, config.Pricing.Currency)

	if err := seedAccount(ctx, deps.AccountStore, config.Seed, price.Currency); err != nil {
		return nil, fmt.Errorf("failed to seed account: %w", err)
	}

	// Initialize use cases
	deps.ChargeAccount = application.NewChargeAccount(deps.AccountStore, eventPublisher, price)
	deps.RefundAccount = application.NewRefundAccount(deps.AccountStore, eventPublisher, price)
	deps.GetAccount = application.NewGetAccount(deps.AccountStore)

	// Initialize handlers
	deps.PaymentHandlers = handlers.NewPaymentHandlers(deps.ChargeAccount, deps.RefundAccount, deps.GetAccount)

	return deps, nil
}

// seedAccount creates the configured account when it does not exist yet.
// Restarting never resets a live balance.
func seedAccount(ctx context.Context, store domain.AccountStore, seed Seed, currency string) error {
	if seed.UserID == "" {
		return nil
	}

	existing, err := store.FindByUserID(ctx, seed.UserID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	account, err := domain.NewAccount(seed.UserID, models.NewMoney(seed.Balance, currency))
	if err != nil {
		return err
	}
	return store.Save(ctx, account)
}

// Close closes all dependencies
func (d *Dependencies) Close() error {
	var errs []error

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if d.EventPublisher != nil {
		if err := d.EventPublisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close event publisher: %w", err))
		}
	}

	if d.TelemetryShutdown != nil {
		d.TelemetryShutdown()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing dependencies: %v", errs)
	}

	return nil
}
