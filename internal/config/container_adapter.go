package config

import (
	"github.com/niiboye001/genesis-invoice/internal/container"
)

// ToContainerConfig converts the application Config to a container.Config.
// Validate must have passed, so the timezone is known to load.
func (c *Config) ToContainerConfig() *container.Config {
	loc, err := c.Invoice.Location()
	if err != nil {
		loc = nil
	}

	return &container.Config{
		Store: container.StoreConfig{
			Driver: c.Store.Driver,
			Dir:    c.Store.Dir,
		},
		Database: container.DatabaseConfig{
			Path:            c.Database.Path,
			MaxOpenConns:    c.Database.MaxOpenConns,
			MaxIdleConns:    c.Database.MaxIdleConns,
			ConnMaxLifetime: c.Database.ConnMaxLifetime,
		},
		Postgres: container.PostgresConfig{
			DSN:             c.Postgres.DSN(),
			MaxOpenConns:    c.Postgres.MaxOpenConns,
			MaxIdleConns:    c.Postgres.MaxIdleConns,
			ConnMaxLifetime: c.Postgres.ConnMaxLifetime,
			LogLevel:        c.Postgres.LogLevel,
		},
		Redis: container.RedisConfig{
			Host:      c.Redis.Host,
			Port:      c.Redis.Port,
			Password:  c.Redis.Password,
			DB:        c.Redis.DB,
			KeyPrefix: c.Redis.KeyPrefix,
		},
		S3: container.S3Config{
			Endpoint:     c.S3.Endpoint,
			Region:       c.S3.Region,
			Bucket:       c.S3.Bucket,
			AccessKey:    c.S3.AccessKey,
			SecretKey:    c.S3.SecretKey,
			UseSSL:       c.S3.UseSSL,
			UsePathStyle: c.S3.UsePathStyle,
			KeyPrefix:    c.S3.KeyPrefix,
		},
		Invoice: container.InvoiceConfig{
			CurrencySymbol: c.Invoice.CurrencySymbol,
			NumberPrefix:   c.Invoice.NumberPrefix,
			Location:       loc,
		},
		Company: container.CompanyConfig{
			Name:        c.Company.Name,
			AddressLine: c.Company.AddressLine,
			CityLine:    c.Company.CityLine,
		},
		Server: container.ServerConfig{
			Host:            c.Server.Host,
			Port:            c.Server.Port,
			Mode:            c.Server.Mode,
			ReadTimeout:     c.Server.ReadTimeout,
			WriteTimeout:    c.Server.WriteTimeout,
			ShutdownTimeout: c.Server.ShutdownTimeout,
		},
	}
}
