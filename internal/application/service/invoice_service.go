package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/niiboye001/genesis-invoice/internal/application/port"
	"github.com/niiboye001/genesis-invoice/internal/domain/entity"
	"github.com/niiboye001/genesis-invoice/internal/domain/invoice"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// ErrNilInvoice is returned when a nil invoice is passed to a write operation.
var ErrNilInvoice = errors.New("invoice is required")

// InvoiceService manages the invoice collection
type InvoiceService interface {
	// ListAll returns every stored invoice in stored order
	ListAll(ctx context.Context) ([]*entity.Invoice, error)

	// List returns views matching the query, with derived status and totals
	List(ctx context.Context, query invoice.ListQuery) ([]entity.InvoiceView, error)

	// GetByID returns invoice.ErrInvoiceNotFound when no invoice has the id
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)

	// GetView returns one invoice with its derived status and totals
	GetView(ctx context.Context, id string) (*entity.InvoiceView, error)

	// Create stores a new invoice, filling in the id, number, status and dates
	Create(ctx context.Context, inv *entity.Invoice) (*entity.Invoice, error)

	// Update replaces an existing invoice
	Update(ctx context.Context, id string, inv *entity.Invoice) (*entity.Invoice, error)

	// Upsert replaces the invoice with the same id in place, or appends it
	Upsert(ctx context.Context, inv *entity.Invoice) (*entity.Invoice, error)

	// DeleteByID removes an invoice; unknown ids are ignored
	DeleteByID(ctx context.Context, id string) error

	// TogglePaid flips the stored status between Paid and Pending
	TogglePaid(ctx context.Context, id string) (*entity.Invoice, error)

	// NextInvoiceNumber returns a fresh display number
	NextInvoiceNumber() string

	// Today returns the clock's current time, used as the status reference day
	Today() time.Time
}

type invoiceServiceImpl struct {
	store   port.InvoiceStore
	clock   port.Clock
	numbers *invoice.NumberGenerator
	newID   func() string
	logger  Logger

	// mu serialises read-modify-write cycles against the store; see mutate.
	mu sync.Mutex
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	store port.InvoiceStore,
	clock port.Clock,
	numbers *invoice.NumberGenerator,
	logger Logger,
) InvoiceService {
	if clock == nil {
		clock = SystemClock{}
	}
	if numbers == nil {
		numbers = invoice.NewNumberGenerator("", clock.Now, nil)
	}
	return &invoiceServiceImpl{
		store:   store,
		clock:   clock,
		numbers: numbers,
		newID:   uuid.NewString,
		logger:  logger,
	}
}

func (s *invoiceServiceImpl) load(ctx context.Context) ([]*entity.Invoice, error) {
	invoices, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Error("Failed to load invoices", "error", err)
		return nil, fmt.Errorf("load invoices: %w", err)
	}
	if invoices == nil {
		invoices = []*entity.Invoice{}
	}
	return invoices, nil
}

func (s *invoiceServiceImpl) save(ctx context.Context, invoices []*entity.Invoice) error {
	if err := s.store.Save(ctx, invoices); err != nil {
		s.logger.Error("Failed to save invoices",
			"error", err,
			"count", len(invoices))
		return fmt.Errorf("save invoices: %w", err)
	}
	return nil
}

// ListAll returns every stored invoice
func (s *invoiceServiceImpl) ListAll(ctx context.Context) ([]*entity.Invoice, error) {
	return s.load(ctx)
}

// List returns the views matching query
func (s *invoiceServiceImpl) List(ctx context.Context, query invoice.ListQuery) ([]entity.InvoiceView, error) {
	invoices, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return query.Apply(invoice.BuildViews(invoices, s.clock.Now())), nil
}

// GetByID performs a linear lookup by id
func (s *invoiceServiceImpl) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	invoices, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if idx := indexOf(invoices, id); idx >= 0 {
		return invoices[idx], nil
	}
	return nil, fmt.Errorf("%w: %s", invoice.ErrInvoiceNotFound, id)
}

// GetView returns the invoice with its derived fields
func (s *invoiceServiceImpl) GetView(ctx context.Context, id string) (*entity.InvoiceView, error) {
	inv, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := invoice.BuildView(inv, s.clock.Now())
	return &view, nil
}

// Create stores a new invoice. Any id on the input is ignored.
func (s *invoiceServiceImpl) Create(ctx context.Context, inv *entity.Invoice) (*entity.Invoice, error) {
	if inv == nil {
		return nil, ErrNilInvoice
	}
	draft := inv.Clone()
	draft.ID = ""
	draft.CreatedAt = time.Time{}
	if draft.InvoiceNumber == "" {
		draft.InvoiceNumber = s.numbers.Next()
	}
	if draft.Status == "" {
		draft.Status = entity.StatusDraft
	}
	normalizeDates(draft)

	saved, err := s.Upsert(ctx, draft)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invoice created",
		"invoice_id", saved.ID,
		"invoice_number", saved.InvoiceNumber)
	return saved, nil
}

// Update replaces the invoice stored under id
func (s *invoiceServiceImpl) Update(ctx context.Context, id string, inv *entity.Invoice) (*entity.Invoice, error) {
	if inv == nil {
		return nil, ErrNilInvoice
	}

	var saved *entity.Invoice
	err := s.mutate(ctx, func(ctx context.Context) error {
		invoices, err := s.load(ctx)
		if err != nil {
			return err
		}
		if indexOf(invoices, id) < 0 {
			return fmt.Errorf("%w: %s", invoice.ErrInvoiceNotFound, id)
		}

		next := inv.Clone()
		next.ID = id
		normalizeDates(next)

		saved, err = s.upsertLocked(ctx, invoices, next)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invoice updated",
		"invoice_id", saved.ID,
		"invoice_number", saved.InvoiceNumber)
	return saved, nil
}

// Upsert replaces the invoice with a matching id in place, or appends it. A missing
// id is minted. CreatedAt is set once and kept across later saves; UpdatedAt is set
// on every save.
func (s *invoiceServiceImpl) Upsert(ctx context.Context, inv *entity.Invoice) (*entity.Invoice, error) {
	if inv == nil {
		return nil, ErrNilInvoice
	}

	var saved *entity.Invoice
	err := s.mutate(ctx, func(ctx context.Context) error {
		invoices, err := s.load(ctx)
		if err != nil {
			return err
		}
		saved, err = s.upsertLocked(ctx, invoices, inv)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// upsertLocked merges inv into invoices and saves the result. Callers hold s.mu.
func (s *invoiceServiceImpl) upsertLocked(ctx context.Context, invoices []*entity.Invoice, inv *entity.Invoice) (*entity.Invoice, error) {
	if inv.Status != "" && !inv.Status.IsStored() {
		return nil, fmt.Errorf("%w: %q", invoice.ErrInvalidStatus, inv.Status)
	}

	saved := inv.Clone()
	if saved.ID == "" {
		saved.ID = s.newID()
	}
	if saved.Status == "" {
		saved.Status = entity.StatusDraft
	}
	if saved.LineItems == nil {
		saved.LineItems = []entity.LineItem{}
	}

	now := s.clock.Now().UTC()
	saved.UpdatedAt = now

	if idx := indexOf(invoices, saved.ID); idx >= 0 {
		if !invoices[idx].CreatedAt.IsZero() {
			saved.CreatedAt = invoices[idx].CreatedAt
		} else if saved.CreatedAt.IsZero() {
			saved.CreatedAt = now
		}
		invoices[idx] = saved
	} else {
		if saved.CreatedAt.IsZero() {
			saved.CreatedAt = now
		}
		invoices = append(invoices, saved)
	}

	if err := s.save(ctx, invoices); err != nil {
		return nil, err
	}
	return saved.Clone(), nil
}

// DeleteByID removes the invoice with id and persists the rest
func (s *invoiceServiceImpl) DeleteByID(ctx context.Context, id string) error {
	deleted := false
	err := s.mutate(ctx, func(ctx context.Context) error {
		invoices, err := s.load(ctx)
		if err != nil {
			return err
		}

		remaining := make([]*entity.Invoice, 0, len(invoices))
		for _, inv := range invoices {
			if inv.ID != id {
				remaining = append(remaining, inv)
			}
		}
		if len(remaining) == len(invoices) {
			return nil
		}

		if err := s.save(ctx, remaining); err != nil {
			return err
		}
		deleted = true
		return nil
	})
	if err != nil {
		return err
	}

	if deleted {
		s.logger.Info("Invoice deleted", "invoice_id", id)
	}
	return nil
}

// TogglePaid marks an unpaid invoice as Paid and a paid one as Pending
func (s *invoiceServiceImpl) TogglePaid(ctx context.Context, id string) (*entity.Invoice, error) {
	var saved *entity.Invoice
	err := s.mutate(ctx, func(ctx context.Context) error {
		invoices, err := s.load(ctx)
		if err != nil {
			return err
		}
		idx := indexOf(invoices, id)
		if idx < 0 {
			return fmt.Errorf("%w: %s", invoice.ErrInvoiceNotFound, id)
		}

		next := invoices[idx].Clone()
		if next.Status == entity.StatusPaid {
			next.Status = entity.StatusPending
		} else {
			next.Status = entity.StatusPaid
		}

		saved, err = s.upsertLocked(ctx, invoices, next)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Invoice payment status toggled",
		"invoice_id", saved.ID,
		"status", string(saved.Status))
	return saved, nil
}

// mutate runs one read-modify-write cycle under s.mu, inside a store transaction
// when the store offers one.
func (s *invoiceServiceImpl) mutate(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tm, ok := s.store.(port.TransactionManager); ok {
		return tm.WithTransaction(ctx, fn)
	}
	return fn(ctx)
}

// NextInvoiceNumber returns a fresh display number
func (s *invoiceServiceImpl) NextInvoiceNumber() string {
	return s.numbers.Next()
}

// Today returns the clock's current time
func (s *invoiceServiceImpl) Today() time.Time {
	return s.clock.Now()
}

func indexOf(invoices []*entity.Invoice, id string) int {
	for i, inv := range invoices {
		if inv != nil && inv.ID == id {
			return i
		}
	}
	return -1
}

func normalizeDates(inv *entity.Invoice) {
	inv.IssueDate = invoice.NormalizeDate(inv.IssueDate)
	inv.DueDate = invoice.NormalizeDate(inv.DueDate)
}
