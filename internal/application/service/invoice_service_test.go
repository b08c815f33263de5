package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niiboye001/genesis-invoice/internal/domain/entity"
	"github.com/niiboye001/genesis-invoice/internal/domain/invoice"
)

// mockStore keeps the collection in memory and counts writes
type mockStore struct {
	mu        sync.Mutex
	invoices  []*entity.Invoice
	saves     int
	loadErr   error
	saveErr   error
	loadCalls int
}

func (m *mockStore) Load(ctx context.Context) ([]*entity.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadCalls++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make([]*entity.Invoice, 0, len(m.invoices))
	for _, inv := range m.invoices {
		out = append(out, inv.Clone())
	}
	return out, nil
}

func (m *mockStore) Save(ctx context.Context, invoices []*entity.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.invoices = make([]*entity.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		m.invoices = append(m.invoices, inv.Clone())
	}
	return nil
}

// hookedStore runs afterLoad once, after the first Load it serves
type hookedStore struct {
	*mockStore
	once      sync.Once
	afterLoad func()
}

func (h *hookedStore) Load(ctx context.Context) ([]*entity.Invoice, error) {
	invoices, err := h.mockStore.Load(ctx)
	h.once.Do(h.afterLoad)
	return invoices, err
}

type txCtxKey struct{}

// txStore records transactions and checks that Load and Save run inside one
type txStore struct {
	*mockStore
	txs       int
	outsideTx int
}

func (s *txStore) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txs++
	return fn(context.WithValue(ctx, txCtxKey{}, s.txs))
}

func (s *txStore) Load(ctx context.Context) ([]*entity.Invoice, error) {
	if ctx.Value(txCtxKey{}) == nil {
		s.outsideTx++
	}
	return s.mockStore.Load(ctx)
}

func (s *txStore) Save(ctx context.Context, invoices []*entity.Invoice) error {
	if ctx.Value(txCtxKey{}) == nil {
		s.outsideTx++
	}
	return s.mockStore.Save(ctx, invoices)
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

type mockLogger struct{}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {}

func newTestService(store *mockStore, clock *fixedClock) InvoiceService {
	numbers := invoice.NewNumberGenerator("", clock.Now, nil)
	return NewInvoiceService(store, clock, numbers, &mockLogger{})
}

func TestInvoiceService_Upsert(t *testing.T) {
	ctx := context.Background()

	t.Run("appends a new invoice to a fresh store", func(t *testing.T) {
		store := &mockStore{}
		clock := &fixedClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
		svc := newTestService(store, clock)

		saved, err := svc.Upsert(ctx, &entity.Invoice{ID: "inv-1", ClientName: "Ama", Status: entity.StatusPending})

		require.NoError(t, err)
		require.Len(t, store.invoices, 1)
		assert.Equal(t, "inv-1", saved.ID)
		assert.Equal(t, clock.now, saved.CreatedAt)
		assert.Equal(t, clock.now, saved.UpdatedAt)
		assert.NotNil(t, store.invoices[0].LineItems)
	})

	t.Run("replaces in place on the same id", func(t *testing.T) {
		store := &mockStore{invoices: []*entity.Invoice{
			{ID: "a", ClientName: "First"},
			{ID: "b", ClientName: "Second", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
			{ID: "c", ClientName: "Third"},
		}}
		clock := &fixedClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
		svc := newTestService(store, clock)

		saved, err := svc.Upsert(ctx, &entity.Invoice{ID: "b", ClientName: "Second (edited)", Status: entity.StatusPending})

		require.NoError(t, err)
		require.Len(t, store.invoices, 3)
		assert.Equal(t, "b", store.invoices[1].ID)
		assert.Equal(t, "Second (edited)", store.invoices[1].ClientName)
		assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), saved.CreatedAt)
		assert.Equal(t, clock.now, saved.UpdatedAt)
		assert.Equal(t, []string{"a", "b", "c"}, storedIDs(store))
	})

	t.Run("second upsert keeps one record", func(t *testing.T) {
		store := &mockStore{}
		clock := &fixedClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
		svc := newTestService(store, clock)

		first, err := svc.Upsert(ctx, &entity.Invoice{ClientName: "Ama"})
		require.NoError(t, err)
		require.NotEmpty(t, first.ID)

		clock.now = clock.now.Add(time.Hour)
		first.ClientName = "Ama Mensah"
		second, err := svc.Upsert(ctx, first)

		require.NoError(t, err)
		require.Len(t, store.invoices, 1)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, "Ama Mensah", store.invoices[0].ClientName)
		assert.True(t, second.UpdatedAt.After(second.CreatedAt))
	})

	t.Run("defaults empty status to draft", func(t *testing.T) {
		store := &mockStore{}
		svc := newTestService(store, &fixedClock{now: time.Now()})

		saved, err := svc.Upsert(ctx, &entity.Invoice{ID: "x"})

		require.NoError(t, err)
		assert.Equal(t, entity.StatusDraft, saved.Status)
	})

	t.Run("rejects derived status", func(t *testing.T) {
		store := &mockStore{}
		svc := newTestService(store, &fixedClock{now: time.Now()})

		_, err := svc.Upsert(ctx, &entity.Invoice{ID: "x", Status: entity.StatusOverdue})

		assert.True(t, errors.Is(err, invoice.ErrInvalidStatus))
		assert.Equal(t, 0, store.saves)
	})

	t.Run("rejects nil", func(t *testing.T) {
		svc := newTestService(&mockStore{}, &fixedClock{now: time.Now()})
		_, err := svc.Upsert(ctx, nil)
		assert.ErrorIs(t, err, ErrNilInvoice)
	})

	t.Run("propagates store errors", func(t *testing.T) {
		store := &mockStore{saveErr: errors.New("disk full")}
		svc := newTestService(store, &fixedClock{now: time.Now()})

		_, err := svc.Upsert(ctx, &entity.Invoice{ID: "x"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
	})
}

func TestInvoiceService_DeleteByID(t *testing.T) {
	ctx := context.Background()

	t.Run("empty store is left unchanged", func(t *testing.T) {
		store := &mockStore{}
		svc := newTestService(store, &fixedClock{now: time.Now()})

		require.NoError(t, svc.DeleteByID(ctx, "missing"))
		assert.Empty(t, store.invoices)
		assert.Equal(t, 0, store.saves)
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		store := &mockStore{invoices: []*entity.Invoice{{ID: "a"}, {ID: "b"}}}
		svc := newTestService(store, &fixedClock{now: time.Now()})

		require.NoError(t, svc.DeleteByID(ctx, "zzz"))
		assert.Equal(t, []string{"a", "b"}, storedIDs(store))
	})

	t.Run("removes the match and keeps order", func(t *testing.T) {
		store := &mockStore{invoices: []*entity.Invoice{{ID: "a"}, {ID: "b"}, {ID: "c"}}}
		svc := newTestService(store, &fixedClock{now: time.Now()})

		require.NoError(t, svc.DeleteByID(ctx, "b"))
		assert.Equal(t, []string{"a", "c"}, storedIDs(store))
	})
}

func TestInvoiceService_GetByID(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{invoices: []*entity.Invoice{{ID: "a", ClientName: "Ama"}}}
	svc := newTestService(store, &fixedClock{now: time.Now()})

	inv, err := svc.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Ama", inv.ClientName)

	_, err = svc.GetByID(ctx, "b")
	assert.ErrorIs(t, err, invoice.ErrInvoiceNotFound)
}

func TestInvoiceService_Create(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	clock := &fixedClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	svc := newTestService(store, clock)

	saved, err := svc.Create(ctx, &entity.Invoice{
		ID:         "client-supplied",
		ClientName: "Ama",
		IssueDate:  "2024-03-01",
		DueDate:    "15/03/2024",
		LineItems:  []entity.LineItem{{Description: "Work", Quantity: "1", Price: "10"}},
	})

	require.NoError(t, err)
	assert.NotEqual(t, "client-supplied", saved.ID)
	assert.NotEmpty(t, saved.ID)
	assert.Regexp(t, `^INV-1709287200000-\d+$`, saved.InvoiceNumber)
	assert.Equal(t, entity.StatusDraft, saved.Status)
	assert.Equal(t, "01/03/2024", saved.IssueDate)
	assert.Equal(t, "15/03/2024", saved.DueDate)
	require.Len(t, store.invoices, 1)
}

func TestInvoiceService_Update(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := &mockStore{invoices: []*entity.Invoice{{ID: "a", ClientName: "Ama", CreatedAt: created}}}
	clock := &fixedClock{now: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)}
	svc := newTestService(store, clock)

	saved, err := svc.Update(ctx, "a", &entity.Invoice{ClientName: "Kofi", DueDate: "2024-04-30", Status: entity.StatusPending})
	require.NoError(t, err)
	assert.Equal(t, "a", saved.ID)
	assert.Equal(t, "30/04/2024", saved.DueDate)
	assert.Equal(t, created, saved.CreatedAt)

	_, err = svc.Update(ctx, "missing", &entity.Invoice{})
	assert.ErrorIs(t, err, invoice.ErrInvoiceNotFound)
	assert.Len(t, store.invoices, 1)
}

func TestInvoiceService_TogglePaid(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{invoices: []*entity.Invoice{
		{ID: "p", Status: entity.StatusPending},
		{ID: "d", Status: entity.StatusDraft},
	}}
	svc := newTestService(store, &fixedClock{now: time.Now()})

	inv, err := svc.TogglePaid(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPaid, inv.Status)

	inv, err = svc.TogglePaid(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, inv.Status)

	inv, err = svc.TogglePaid(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPaid, inv.Status)

	_, err = svc.TogglePaid(ctx, "missing")
	assert.ErrorIs(t, err, invoice.ErrInvoiceNotFound)
}

func TestInvoiceService_DeleteDuringToggleStaysDeleted(t *testing.T) {
	ctx := context.Background()
	base := &mockStore{invoices: []*entity.Invoice{{ID: "a", Status: entity.StatusPending}}}
	store := &hookedStore{mockStore: base}
	svc := NewInvoiceService(store, &fixedClock{now: time.Now()}, nil, &mockLogger{})

	deleted := make(chan error, 1)
	store.afterLoad = func() {
		go func() { deleted <- svc.DeleteByID(ctx, "a") }()
		// Give the delete a chance to run before the toggle writes.
		select {
		case err := <-deleted:
			deleted <- err
		case <-time.After(50 * time.Millisecond):
		}
	}

	_, err := svc.TogglePaid(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, <-deleted)

	assert.Empty(t, base.invoices)
}

func TestInvoiceService_DeleteDuringUpdateStaysDeleted(t *testing.T) {
	ctx := context.Background()
	base := &mockStore{invoices: []*entity.Invoice{{ID: "a", ClientName: "Ama"}}}
	store := &hookedStore{mockStore: base}
	svc := NewInvoiceService(store, &fixedClock{now: time.Now()}, nil, &mockLogger{})

	deleted := make(chan error, 1)
	store.afterLoad = func() {
		go func() { deleted <- svc.DeleteByID(ctx, "a") }()
		select {
		case err := <-deleted:
			deleted <- err
		case <-time.After(50 * time.Millisecond):
		}
	}

	_, err := svc.Update(ctx, "a", &entity.Invoice{ClientName: "Kofi"})
	require.NoError(t, err)
	require.NoError(t, <-deleted)

	assert.Empty(t, base.invoices)
}

func TestInvoiceService_ConcurrentTogglesAreNotLost(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{invoices: []*entity.Invoice{{ID: "a", Status: entity.StatusPending}}}
	svc := newTestService(store, &fixedClock{now: time.Now()})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.TogglePaid(ctx, "a")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Len(t, store.invoices, 1)
	assert.Equal(t, entity.StatusPending, store.invoices[0].Status)
	assert.Equal(t, 10, store.saves)
}

func TestInvoiceService_WritesRunInStoreTransaction(t *testing.T) {
	ctx := context.Background()
	store := &txStore{mockStore: &mockStore{invoices: []*entity.Invoice{{ID: "a", Status: entity.StatusPending}}}}
	svc := NewInvoiceService(store, &fixedClock{now: time.Now()}, nil, &mockLogger{})

	_, err := svc.TogglePaid(ctx, "a")
	require.NoError(t, err)
	_, err = svc.Update(ctx, "a", &entity.Invoice{ClientName: "Kofi"})
	require.NoError(t, err)
	_, err = svc.Upsert(ctx, &entity.Invoice{ID: "b"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteByID(ctx, "b"))

	assert.Equal(t, 4, store.txs)
	assert.Equal(t, 0, store.outsideTx)

	_, err = svc.List(ctx, invoice.DefaultListQuery())
	require.NoError(t, err)
	assert.Equal(t, 4, store.txs)
}

func TestInvoiceService_List(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{invoices: []*entity.Invoice{
		{ID: "late", Status: entity.StatusPending, DueDate: "01/03/2024"},
		{ID: "ok", Status: entity.StatusPending, DueDate: "30/03/2024"},
		{ID: "paid", Status: entity.StatusPaid, DueDate: "01/01/2024"},
	}}
	svc := newTestService(store, &fixedClock{now: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)})

	views, err := svc.List(ctx, invoice.ListQuery{Status: entity.StatusOverdue})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "late", views[0].ID)
	assert.Equal(t, entity.StatusOverdue, views[0].DerivedStatus)

	store.loadErr = errors.New("unavailable")
	_, err = svc.List(ctx, invoice.DefaultListQuery())
	assert.Error(t, err)
}

func TestInvoiceService_ConcurrentUpserts(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{}
	svc := newTestService(store, &fixedClock{now: time.Now()})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Upsert(ctx, &entity.Invoice{ClientName: "concurrent"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, store.invoices, 20)
}

type fakeRenderer struct{ rendered []string }

func (f *fakeRenderer) RenderInvoice(w io.Writer, view entity.InvoiceView) error {
	f.rendered = append(f.rendered, view.ID)
	_, err := io.WriteString(w, "<html>"+view.InvoiceNumber+"</html>")
	return err
}

type fakeExporter struct {
	count  int
	detail bool
}

func (f *fakeExporter) ExportInvoices(w io.Writer, views []entity.InvoiceView, detail bool) error {
	f.count = len(views)
	f.detail = detail
	_, err := w.Write([]byte("xlsx"))
	return err
}

func TestDocumentService(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{invoices: []*entity.Invoice{
		{ID: "a", InvoiceNumber: "INV-1-1", Status: entity.StatusPaid},
		{ID: "b", InvoiceNumber: "INV-2-2", Status: entity.StatusDraft},
	}}
	invoices := newTestService(store, &fixedClock{now: time.Now()})
	renderer := &fakeRenderer{}
	exporter := &fakeExporter{}
	docs := NewDocumentService(invoices, renderer, exporter, &mockLogger{})

	var buf bytes.Buffer
	require.NoError(t, docs.PrintInvoice(ctx, "a", &buf))
	assert.Equal(t, "<html>INV-1-1</html>", buf.String())

	buf.Reset()
	require.NoError(t, docs.ExportInvoice(ctx, "b", &buf))
	assert.Equal(t, 1, exporter.count)
	assert.True(t, exporter.detail)

	buf.Reset()
	require.NoError(t, docs.ExportInvoices(ctx, invoice.DefaultListQuery(), &buf))
	assert.Equal(t, 2, exporter.count)
	assert.False(t, exporter.detail)

	err := docs.PrintInvoice(ctx, "missing", &buf)
	assert.ErrorIs(t, err, invoice.ErrInvoiceNotFound)
}

func storedIDs(store *mockStore) []string {
	ids := make([]string, 0, len(store.invoices))
	for _, inv := range store.invoices {
		ids = append(ids, inv.ID)
	}
	return ids
}
