package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"

	"github.com/niiboye001/genesis-invoice/internal/container"
)

// Store drivers
const (
	DriverMemory     = container.DriverMemory
	DriverFile       = container.DriverFile
	DriverSQLite     = container.DriverSQLite
	DriverPostgres   = container.DriverPostgres
	DriverGormSQLite = container.DriverGormSQLite
	DriverRedis      = container.DriverRedis
	DriverS3         = container.DriverS3
)

// EnvPrefix prefixes every environment override, e.g. GENESIS_SERVER_PORT.
const EnvPrefix = "GENESIS"

// DefaultConfigPath is read when no path is given.
const DefaultConfigPath = "configs/config.yaml"

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"database"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
	S3       S3Config       `mapstructure:"s3"`
	Invoice  InvoiceConfig  `mapstructure:"invoice"`
	Company  CompanyConfig  `mapstructure:"company"`
	Logger   LoggerConfig   `mapstructure:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// StoreConfig selects the invoice store backend
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	// Dir is the base directory of the file driver
	Dir string `mapstructure:"dir"`
}

// DatabaseConfig holds SQLite configuration, used by the sqlite and gorm-sqlite drivers
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// PostgresConfig holds PostgreSQL configuration
type PostgresConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"`
}

// DSN returns the PostgreSQL connection string
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// S3Config holds S3-compatible object storage configuration
type S3Config struct {
	Endpoint     string `mapstructure:"endpoint"`
	Region       string `mapstructure:"region"`
	Bucket       string `mapstructure:"bucket"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	UseSSL       bool   `mapstructure:"use_ssl"`
	UsePathStyle bool   `mapstructure:"use_path_style"`
	KeyPrefix    string `mapstructure:"key_prefix"`
}

// InvoiceConfig holds invoice presentation settings
type InvoiceConfig struct {
	CurrencySymbol string `mapstructure:"currency_symbol"`
	NumberPrefix   string `mapstructure:"number_prefix"`
	// Timezone decides which calendar day counts as today for overdue checks
	Timezone string `mapstructure:"timezone"`
}

// Location resolves Timezone; empty means the local zone
func (c InvoiceConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// CompanyConfig is printed on invoices
type CompanyConfig struct {
	Name        string `mapstructure:"name"`
	AddressLine string `mapstructure:"address_line"`
	CityLine    string `mapstructure:"city_line"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load reads configuration from configPath, then .env and the environment. An empty
// configPath reads DefaultConfigPath if it exists and falls back to defaults otherwise.
func Load(configPath string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	switch {
	case configPath != "":
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	case fileExists(DefaultConfigPath):
		v.SetConfigFile(DefaultConfigPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv exports the variables of path when the file exists. Variables already
// set in the environment win.
func loadDotEnv(path string) error {
	if !fileExists(path) {
		return nil
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	// Store defaults
	v.SetDefault("store.driver", DriverFile)
	v.SetDefault("store.dir", "data")

	// SQLite defaults
	v.SetDefault("database.path", "data/genesis-invoice.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", 0)

	// PostgreSQL defaults
	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "postgres")
	v.SetDefault("postgres.dbname", "genesis_invoice")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 25)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("postgres.log_level", "warn")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.use_path_style", true)

	// Invoice defaults
	v.SetDefault("invoice.currency_symbol", "GH₵")
	v.SetDefault("invoice.number_prefix", "INV")
	v.SetDefault("invoice.timezone", "")

	// Company defaults
	v.SetDefault("company.name", "Your Company Name")
	v.SetDefault("company.address_line", "Your Address")
	v.SetDefault("company.city_line", "Your City, Country")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stdout")
	v.SetDefault("logger.format", "json")
}

// bindEnvVars binds the conventional names of credentials alongside the prefixed ones
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("postgres.password", "GENESIS_POSTGRES_PASSWORD", "POSTGRES_PASSWORD")
	_ = v.BindEnv("redis.password", "GENESIS_REDIS_PASSWORD", "REDIS_PASSWORD")
	_ = v.BindEnv("s3.access_key", "GENESIS_S3_ACCESS_KEY", "AWS_ACCESS_KEY_ID")
	_ = v.BindEnv("s3.secret_key", "GENESIS_S3_SECRET_KEY", "AWS_SECRET_ACCESS_KEY")
	_ = v.BindEnv("server.port", "GENESIS_SERVER_PORT", "PORT")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverFile:
		if c.Store.Dir == "" {
			return errors.New("store.dir is required for the file driver")
		}
	case DriverSQLite, DriverGormSQLite:
		if c.Database.Path == "" {
			return errors.New("database.path is required for the sqlite drivers")
		}
	case DriverPostgres:
		if c.Postgres.Host == "" || c.Postgres.DBName == "" {
			return errors.New("postgres.host and postgres.dbname are required for the postgres driver")
		}
	case DriverRedis:
		if c.Redis.Host == "" || c.Redis.Port <= 0 {
			return errors.New("redis.host and redis.port are required for the redis driver")
		}
	case DriverS3:
		if c.S3.Bucket == "" {
			return errors.New("s3.bucket is required for the s3 driver")
		}
		if c.S3.AccessKey == "" || c.S3.SecretKey == "" {
			return errors.New("s3.access_key and s3.secret_key are required for the s3 driver")
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}

	if _, err := c.Invoice.Location(); err != nil {
		return fmt.Errorf("invalid invoice.timezone: %w", err)
	}

	return nil
}
