package container

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/niiboye001/genesis-invoice/internal/application/port"
	"github.com/niiboye001/genesis-invoice/internal/application/service"
	"github.com/niiboye001/genesis-invoice/internal/domain/invoice"
	"github.com/niiboye001/genesis-invoice/internal/infrastructure/export"
	"github.com/niiboye001/genesis-invoice/internal/infrastructure/persistence/filestore"
	"github.com/niiboye001/genesis-invoice/internal/infrastructure/persistence/gormstore"
	"github.com/niiboye001/genesis-invoice/internal/infrastructure/persistence/memory"
	"github.com/niiboye001/genesis-invoice/internal/infrastructure/persistence/objectstore"
	"github.com/niiboye001/genesis-invoice/internal/infrastructure/persistence/redisstore"
	"github.com/niiboye001/genesis-invoice/internal/infrastructure/persistence/sqlite"
	"github.com/niiboye001/genesis-invoice/internal/infrastructure/printing"
	"github.com/niiboye001/genesis-invoice/internal/infrastructure/storage"
	"github.com/niiboye001/genesis-invoice/pkg/database"
)

// StoreBundle holds the invoice store and the resources behind it.
type StoreBundle struct {
	Store port.InvoiceStore

	// Closer releases connections; nil for in-process stores
	Closer func() error
}

// ProvideStore opens the store selected by cfg.Driver.
func ProvideStore(ctx context.Context, cfg *Config, logger *zap.Logger) (*StoreBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	logger = logger.With(zap.String("driver", cfg.Store.Driver))

	switch cfg.Store.Driver {
	case DriverMemory:
		return &StoreBundle{Store: memory.NewStore()}, nil

	case DriverFile:
		files := storage.NewLocalFileStorage(cfg.Store.Dir, logger)
		return &StoreBundle{Store: filestore.NewStore(files, logger)}, nil

	case DriverSQLite:
		return provideSQLiteStore(ctx, &cfg.Database, logger)

	case DriverPostgres:
		db, err := gormstore.OpenPostgres(gormstore.PostgresConfig{
			DSN:             cfg.Postgres.DSN,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
			LogLevel:        cfg.Postgres.LogLevel,
		})
		if err != nil {
			return nil, err
		}
		store := gormstore.NewStore(db, logger)
		if err := gormstore.AutoMigrate(db); err != nil {
			_ = store.Close()
			return nil, err
		}
		return &StoreBundle{Store: store, Closer: store.Close}, nil

	case DriverGormSQLite:
		db, err := gormstore.OpenSQLite(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		store := gormstore.NewStore(db, logger)
		if err := gormstore.AutoMigrate(db); err != nil {
			_ = store.Close()
			return nil, err
		}
		return &StoreBundle{Store: store, Closer: store.Close}, nil

	case DriverRedis:
		store, err := redisstore.NewStore(redisstore.Config{
			Host:      cfg.Redis.Host,
			Port:      cfg.Redis.Port,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
		}, logger)
		if err != nil {
			return nil, err
		}
		return &StoreBundle{Store: store, Closer: store.Close}, nil

	case DriverS3:
		store, err := objectstore.NewStore(ctx, objectstore.Config{
			Endpoint:     cfg.S3.Endpoint,
			Region:       cfg.S3.Region,
			Bucket:       cfg.S3.Bucket,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
			UseSSL:       cfg.S3.UseSSL,
			UsePathStyle: cfg.S3.UsePathStyle,
			KeyPrefix:    cfg.S3.KeyPrefix,
		}, logger)
		if err != nil {
			return nil, err
		}
		return &StoreBundle{Store: store}, nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// provideSQLiteStore opens the database, applies the embedded schema and wraps it in
// a collection store.
func provideSQLiteStore(ctx context.Context, cfg *DatabaseConfig, logger *zap.Logger) (*StoreBundle, error) {
	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, err
	}

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(ctx, database.Schema, database.SchemaDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	store := sqlite.NewCollectionStore(sqlite.NewDB(db.DB, logger), logger)
	return &StoreBundle{Store: store, Closer: db.Close}, nil
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Invoices  service.InvoiceService
	Documents service.DocumentService
}

// ProvideServices creates the invoice and document services on top of store.
func ProvideServices(store port.InvoiceStore, cfg *InvoiceConfig, company *CompanyConfig, logger *zap.Logger) (*ServiceBundle, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg == nil || company == nil {
		return nil, fmt.Errorf("invoice config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	serviceLogger := &zapLoggerAdapter{logger: logger}

	clock := service.SystemClock{Location: cfg.Location}
	numbers := invoice.NewNumberGenerator(cfg.NumberPrefix, clock.Now, nil)
	invoices := service.NewInvoiceService(store, clock, numbers, serviceLogger)

	renderer, err := printing.NewHTMLRenderer(invoice.NewCurrencyFormatter(cfg.CurrencySymbol), printing.Company{
		Name:        company.Name,
		AddressLine: company.AddressLine,
		CityLine:    company.CityLine,
	})
	if err != nil {
		return nil, err
	}

	documents := service.NewDocumentService(invoices, renderer, export.NewWorkbookExporter(logger), serviceLogger)

	return &ServiceBundle{
		Invoices:  invoices,
		Documents: documents,
	}, nil
}

// pingTimeout bounds a single store health check.
const pingTimeout = 3 * time.Second
