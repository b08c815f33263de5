// Package container provides dependency injection and lifecycle management
// for the invoice service.
package container

import (
	"errors"
	"fmt"
	"time"
)

// Store drivers
const (
	DriverMemory     = "memory"
	DriverFile       = "file"
	DriverSQLite     = "sqlite"
	DriverPostgres   = "postgres"
	DriverGormSQLite = "gorm-sqlite"
	DriverRedis      = "redis"
	DriverS3         = "s3"
)

// Config holds all configuration for the Container.
type Config struct {
	// Store selects the backend holding the invoice collection
	Store StoreConfig

	// Database configures the sqlite and gorm-sqlite drivers
	Database DatabaseConfig

	// Postgres configures the postgres driver
	Postgres PostgresConfig

	// Redis configures the redis driver
	Redis RedisConfig

	// S3 configures the s3 driver
	S3 S3Config

	// Invoice holds numbering and presentation settings
	Invoice InvoiceConfig

	// Company is printed on invoices
	Company CompanyConfig

	// Server configuration
	Server ServerConfig
}

// StoreConfig selects the invoice store.
type StoreConfig struct {
	Driver string

	// Dir is the base directory of the file driver
	Dir string
}

// DatabaseConfig holds SQLite connection settings.
type DatabaseConfig struct {
	// Path to SQLite database file
	Path string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// LogLevel is the gorm log level: silent, error, warn or info
	LogLevel string
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

// S3Config holds object storage settings.
type S3Config struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	UsePathStyle bool
	KeyPrefix    string
}

// InvoiceConfig holds invoice settings.
type InvoiceConfig struct {
	CurrencySymbol string
	NumberPrefix   string

	// Location decides the reference day for overdue checks; nil means time.Local
	Location *time.Location
}

// CompanyConfig is printed in the "Bill From" block.
type CompanyConfig struct {
	Name        string
	AddressLine string
	CityLine    string
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string
	Port            int
	Mode            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config backed by the file driver.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Driver: DriverFile,
			Dir:    "data",
		},
		Database: DatabaseConfig{
			Path:         "data/genesis-invoice.db",
			MaxOpenConns: 1,
			MaxIdleConns: 1,
		},
		Postgres: PostgresConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			LogLevel:        "warn",
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: 6379,
		},
		S3: S3Config{
			Region:       "us-east-1",
			UsePathStyle: true,
		},
		Invoice: InvoiceConfig{
			CurrencySymbol: "GH₵",
			NumberPrefix:   "INV",
		},
		Company: CompanyConfig{
			Name:        "Your Company Name",
			AddressLine: "Your Address",
			CityLine:    "Your City, Country",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Mode:            "release",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
	}
}

// Validate checks that the selected store driver has what it needs.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverFile:
		if c.Store.Dir == "" {
			return errors.New("store.dir is required")
		}
	case DriverSQLite, DriverGormSQLite:
		if c.Database.Path == "" {
			return errors.New("database.path is required")
		}
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("postgres dsn is required")
		}
	case DriverRedis:
		if c.Redis.Host == "" {
			return errors.New("redis.host is required")
		}
	case DriverS3:
		if c.S3.Bucket == "" {
			return errors.New("s3.bucket is required")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	return nil
}
