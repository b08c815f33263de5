package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/niiboye001/genesis-invoice/internal/application/port"
	"github.com/niiboye001/genesis-invoice/internal/domain/entity"
	"github.com/niiboye001/genesis-invoice/internal/infrastructure/persistence"
)

// CollectionStore keeps the invoice collection as one row of the collections table
type CollectionStore struct {
	db     *DB
	name   string
	logger *zap.Logger
}

// NewCollectionStore creates a store for the collection named port.CollectionName
func NewCollectionStore(db *DB, logger *zap.Logger) *CollectionStore {
	return &CollectionStore{
		db:     db,
		name:   port.CollectionName,
		logger: logger,
	}
}

// Load reads the collection; a missing row is an empty collection
func (s *CollectionStore) Load(ctx context.Context) ([]*entity.Invoice, error) {
	query := `SELECT payload FROM collections WHERE name = ?`

	var payload string
	err := s.db.conn(ctx).QueryRowContext(ctx, query, s.name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return []*entity.Invoice{}, nil
	}
	if err != nil {
		s.logger.Error("Failed to load invoice collection",
			zap.String("collection", s.name),
			zap.Error(err))
		return nil, fmt.Errorf("failed to load collection %s: %w", s.name, err)
	}

	return persistence.DecodeCollection([]byte(payload))
}

// Save replaces the stored collection
func (s *CollectionStore) Save(ctx context.Context, invoices []*entity.Invoice) error {
	payload, err := persistence.EncodeCollection(invoices)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO collections (name, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`

	return s.db.inTx(ctx, func(txCtx context.Context) error {
		_, err := s.db.conn(txCtx).ExecContext(txCtx, query, s.name, string(payload), time.Now().UTC())
		if err != nil {
			s.logger.Error("Failed to save invoice collection",
				zap.String("collection", s.name),
				zap.Int("count", len(invoices)),
				zap.Error(err))
			return fmt.Errorf("failed to save collection %s: %w", s.name, err)
		}
		return nil
	})
}

// WithTransaction runs fn in one transaction; Load and Save called with the context
// passed to fn use it.
func (s *CollectionStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.db.inTx(ctx, fn)
}

// Ping checks the database connection
func (s *CollectionStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var (
	_ port.InvoiceStore       = (*CollectionStore)(nil)
	_ port.HealthChecker      = (*CollectionStore)(nil)
	_ port.TransactionManager = (*CollectionStore)(nil)
)
