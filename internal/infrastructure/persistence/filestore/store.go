// Package filestore persists the invoice collection as a JSON document on a
// port.FileStorage.
package filestore

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/niiboye001/genesis-invoice/internal/application/port"
	"github.com/niiboye001/genesis-invoice/internal/domain/entity"
	"github.com/niiboye001/genesis-invoice/internal/infrastructure/persistence"
)

// FileName is the document the collection is written to, relative to the storage root.
const FileName = port.CollectionName + ".json"

// Store implements port.InvoiceStore on top of a file storage
type Store struct {
	files  port.FileStorage
	name   string
	logger *zap.Logger
}

// NewStore creates a store writing to FileName inside files
func NewStore(files port.FileStorage, logger *zap.Logger) *Store {
	return &Store{
		files:  files,
		name:   FileName,
		logger: logger,
	}
}

// Load reads the collection; a missing document is an empty collection
func (s *Store) Load(ctx context.Context) ([]*entity.Invoice, error) {
	if !s.files.Exists(ctx, s.name) {
		return []*entity.Invoice{}, nil
	}

	data, err := s.files.Read(ctx, s.name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.name, err)
	}

	invoices, err := persistence.DecodeCollection(data)
	if err != nil {
		s.logger.Error("Stored invoice collection is corrupt",
			zap.String("path", s.files.GetFullPath(s.name)),
			zap.Error(err))
		return nil, err
	}
	return invoices, nil
}

// Save writes the whole collection
func (s *Store) Save(ctx context.Context, invoices []*entity.Invoice) error {
	data, err := persistence.EncodeCollection(invoices)
	if err != nil {
		return err
	}
	if err := s.files.Save(ctx, s.name, data); err != nil {
		return fmt.Errorf("write %s: %w", s.name, err)
	}

	s.logger.Debug("Invoice collection saved",
		zap.String("path", s.files.GetFullPath(s.name)),
		zap.Int("count", len(invoices)))
	return nil
}

// Ping checks that the storage root is usable
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.Load(ctx); err != nil {
		return err
	}
	return nil
}

var (
	_ port.InvoiceStore  = (*Store)(nil)
	_ port.HealthChecker = (*Store)(nil)
)
