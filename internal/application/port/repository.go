package port

import (
	"context"
	"time"

	"github.com/niiboye001/genesis-invoice/internal/domain/entity"
)

// CollectionName is the key the invoice collection is persisted under.
const CollectionName = "genesis-invoices"

// InvoiceStore persists the whole invoice collection at once. Load returns an empty
// slice when nothing has been saved yet; Save replaces the stored collection, keeping
// the given order.
type InvoiceStore interface {
	Load(ctx context.Context) ([]*entity.Invoice, error)
	Save(ctx context.Context, invoices []*entity.Invoice) error
}

// HealthChecker is implemented by stores backed by an external service.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Clock supplies the current time so status derivation and numbering stay deterministic in tests.
type Clock interface {
	Now() time.Time
}

// TransactionManager is implemented by stores that can run a Load and the following
// Save as one transaction. fn receives a context carrying the transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
