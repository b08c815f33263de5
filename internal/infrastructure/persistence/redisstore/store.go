// Package redisstore keeps the invoice collection as one JSON value in Redis.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/niiboye001/genesis-invoice/internal/application/port"
	"github.com/niiboye001/genesis-invoice/internal/domain/entity"
	"github.com/niiboye001/genesis-invoice/internal/infrastructure/persistence"
)

// Config holds Redis connection configuration
type Config struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

// commander is the subset of the Redis client the store uses
type commander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// Store implements port.InvoiceStore on a single Redis key
type Store struct {
	client commander
	key    string
	logger *zap.Logger
}

// NewStore connects to Redis and verifies the connection
func NewStore(cfg Config, logger *zap.Logger) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewStoreWithClient(client, cfg.KeyPrefix, logger), nil
}

// NewStoreWithClient creates a store with an existing client. The collection lives
// under keyPrefix + port.CollectionName.
func NewStoreWithClient(client commander, keyPrefix string, logger *zap.Logger) *Store {
	return &Store{
		client: client,
		key:    keyPrefix + port.CollectionName,
		logger: logger,
	}
}

// Key returns the Redis key holding the collection
func (s *Store) Key() string {
	return s.key
}

// Load reads the collection; a missing key is an empty collection
func (s *Store) Load(ctx context.Context) ([]*entity.Invoice, error) {
	payload, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []*entity.Invoice{}, nil
	}
	if err != nil {
		s.logger.Error("Failed to load invoice collection",
			zap.String("key", s.key),
			zap.Error(err))
		return nil, fmt.Errorf("failed to load collection: %w", err)
	}
	return persistence.DecodeCollection(payload)
}

// Save overwrites the collection without expiry
func (s *Store) Save(ctx context.Context, invoices []*entity.Invoice) error {
	payload, err := persistence.EncodeCollection(invoices)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, payload, 0).Err(); err != nil {
		s.logger.Error("Failed to save invoice collection",
			zap.String("key", s.key),
			zap.Int("count", len(invoices)),
			zap.Error(err))
		return fmt.Errorf("failed to save collection: %w", err)
	}
	return nil
}

// Ping checks the Redis connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis client
func (s *Store) Close() error {
	return s.client.Close()
}

var (
	_ port.InvoiceStore  = (*Store)(nil)
	_ port.HealthChecker = (*Store)(nil)
)
