package config

import (
	"context"
	"fmt"
	"log"

	"github.com/draftea/order-system/inventory-service/application"
	"github.com/draftea/order-system/inventory-service/domain"
	"github.com/draftea/order-system/inventory-service/handlers"
	"github.com/draftea/order-system/inventory-service/infrastructure"
	sharedinfra "github.com/draftea/order-system/shared/infrastructure"
	"github.com/draftea/order-system/shared/telemetry"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type Dependencies struct {
	// Database
	DB *sqlx.DB

	// Stores
	StockStore *infrastructure.PostgresStockStore

	// Use Cases
	ReserveStock *application.ReserveStock
	ReleaseStock *application.ReleaseStock
	GetStock     *application.GetStock

	// HTTP Handlers
	InventoryHandlers *handlers.InventoryHandlers

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
		telConfig := telemetry.InventoryServiceConfig.WithOTLPEndpoint(config.Telemetry.OTLPEndpoint)
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
	deps.StockStore = infrastructure.NewPostgresStockStore(db)

	if err := seedStock(ctx, deps.StockStore, config.Seed); err != nil {
		return nil, fmt.Errorf("failed to seed stock: %w", err)
	}

	// Initialize use cases
	deps.ReserveStock = application.NewReserveStock(deps.StockStore, eventPublisher)
	deps.ReleaseStock = application.NewReleaseStock(deps.StockStore, eventPublisher)
	deps.GetStock = application.NewGetStock(deps.StockStore)

	// Initialize handlers
	deps.InventoryHandlers = handlers.NewInventoryHandlers(deps.ReserveStock, deps.ReleaseStock, deps.GetStock)

	return deps, nil
}

// seedStock creates the configured product when it does not exist yet.
// Restarting never resets a live count.
func seedStock(ctx context.Context, store domain.StockStore, seed Seed) error {
	if seed.ProductID == "" {
		return nil
	}

	existing, err := store.FindByProductID(ctx, seed.ProductID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	stock, err := domain.NewStock(seed.ProductID, seed.Quantity)
	if err != nil {
		return err
	}
	return store.Save(ctx, stock)
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
