// Package memory keeps the invoice collection in process memory.
package memory

import (
	"context"
	"sync"

	"github.com/niiboye001/genesis-invoice/internal/application/port"
	"github.com/niiboye001/genesis-invoice/internal/domain/entity"
	"github.com/niiboye001/genesis-invoice/internal/infrastructure/persistence"
)

// Store is an in-memory port.InvoiceStore. Callers never share invoices with it.
type Store struct {
	mu       sync.RWMutex
	invoices []*entity.Invoice
}

// NewStore creates a store seeded with a copy of initial.
func NewStore(initial ...*entity.Invoice) *Store {
	return &Store{invoices: persistence.CloneCollection(initial)}
}

// Load returns a copy of the stored collection
func (s *Store) Load(ctx context.Context) ([]*entity.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return persistence.CloneCollection(s.invoices), nil
}

// Save replaces the stored collection with a copy of invoices
func (s *Store) Save(ctx context.Context, invoices []*entity.Invoice) error {
	next := persistence.CloneCollection(invoices)
	s.mu.Lock()
	s.invoices = next
	s.mu.Unlock()
	return nil
}

var _ port.InvoiceStore = (*Store)(nil)
