// Package gormstore persists invoices as rows of a relational table through GORM, on
// PostgreSQL in production and SQLite for local runs.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/niiboye001/genesis-invoice/internal/application/port"
	"github.com/niiboye001/genesis-invoice/internal/domain/entity"
)

const insertBatchSize = 100

// PostgresConfig holds the connection settings for PostgreSQL
type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        string
}

// OpenPostgres connects to PostgreSQL
func OpenPostgres(cfg PostgresConfig) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, errors.New("postgres dsn is required")
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN,
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(parseLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

// OpenSQLite opens a SQLite database file through GORM
func OpenSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	return db, nil
}

func parseLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// AutoMigrate creates or updates the invoices table
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&InvoiceModel{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Store implements port.InvoiceStore over the invoices table
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewStore creates a new Store
func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Load returns every invoice ordered by position
func (s *Store) Load(ctx context.Context) ([]*entity.Invoice, error) {
	var models []InvoiceModel
	if err := s.db.WithContext(ctx).Order("position ASC").Find(&models).Error; err != nil {
		s.logger.Error("Failed to load invoices", zap.Error(err))
		return nil, fmt.Errorf("failed to load invoices: %w", err)
	}

	invoices := make([]*entity.Invoice, 0, len(models))
	for i := range models {
		inv, err := models[i].ToEntity()
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

// Save replaces the table contents with invoices in one transaction
func (s *Store) Save(ctx context.Context, invoices []*entity.Invoice) error {
	models := make([]*InvoiceModel, 0, len(invoices))
	for i, inv := range invoices {
		if inv == nil {
			continue
		}
		model, err := InvoiceModelFromEntity(inv, i)
		if err != nil {
			return err
		}
		models = append(models, model)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&InvoiceModel{}).Error; err != nil {
			return fmt.Errorf("failed to clear invoices: %w", err)
		}
		if len(models) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(models, insertBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert invoices: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to save invoices",
			zap.Int("count", len(models)),
			zap.Error(err))
		return err
	}
	return nil
}

// Ping checks the database connection
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

var (
	_ port.InvoiceStore  = (*Store)(nil)
	_ port.HealthChecker = (*Store)(nil)
)
