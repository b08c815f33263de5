package http

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/niiboye001/genesis-invoice/internal/application/service"
	"github.com/niiboye001/genesis-invoice/internal/domain/entity"
	"github.com/niiboye001/genesis-invoice/internal/domain/invoice"
	"github.com/niiboye001/genesis-invoice/internal/infrastructure/export"
	"github.com/niiboye001/genesis-invoice/internal/infrastructure/persistence/memory"
	"github.com/niiboye001/genesis-invoice/internal/infrastructure/printing"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type viewBody struct {
	ID               string            `json:"id"`
	InvoiceNumber    string            `json:"invoiceNumber"`
	ClientName       string            `json:"clientName"`
	DueDate          string            `json:"dueDate"`
	Status           string            `json:"status"`
	CalculatedStatus string            `json:"calculatedStatus"`
	LineItems        []entity.LineItem `json:"lineItems"`
	TaxPercent       string            `json:"taxPercent"`
	Totals           entity.Totals     `json:"totals"`
}

func newTestServer(t *testing.T, health HealthFunc) *Server {
	t.Helper()

	clock := fixedClock{now: time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)}
	numbers := invoice.NewNumberGenerator("INV", clock.Now, rand.New(rand.NewPCG(1, 2)))
	invoices := service.NewInvoiceService(memory.NewStore(), clock, numbers, nopLogger{})

	renderer, err := printing.NewHTMLRenderer(invoice.NewCurrencyFormatter(""), printing.DefaultCompany())
	require.NoError(t, err)
	documents := service.NewDocumentService(invoices, renderer, export.NewWorkbookExporter(zap.NewNop()), nopLogger{})

	return NewServer(ServerConfig{Mode: gin.TestMode}, invoices, documents, health, nopLogger{})
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func decodeView(t *testing.T, w *httptest.ResponseRecorder) viewBody {
	t.Helper()
	env := decode(t, w)
	require.True(t, env.Success, env.Error)
	var v viewBody
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

const overdueBody = `{
	"clientName": "Ama Mensah",
	"clientEmail": "ama@example.com",
	"issueDate": "2024-03-01",
	"dueDate": "2024-03-10",
	"lineItems": [{"description": "Design", "quantity": 2, "price": "150"}],
	"taxPercent": 10,
	"discountPercent": "",
	"status": "pending"
}`

func createInvoice(t *testing.T, s *Server, body string) viewBody {
	t.Helper()
	w := do(t, s, http.MethodPost, "/api/invoices", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeView(t, w)
}

func TestCreateAndGetInvoice(t *testing.T) {
	s := newTestServer(t, nil)

	created := createInvoice(t, s, overdueBody)

	assert.NotEmpty(t, created.ID)
	assert.True(t, strings.HasPrefix(created.InvoiceNumber, "INV-1710493200000-"), created.InvoiceNumber)
	assert.Equal(t, "10/03/2024", created.DueDate)
	assert.Equal(t, "Pending", created.Status)
	assert.Equal(t, "Overdue", created.CalculatedStatus)
	assert.Equal(t, "2", created.LineItems[0].Quantity)
	assert.Equal(t, "10", created.TaxPercent)
	assert.Equal(t, "330.00", created.Totals.Total)

	w := do(t, s, http.MethodGet, "/api/invoices/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created.ID, decodeView(t, w).ID)
}

func TestCreateInvoice_Defaults(t *testing.T) {
	s := newTestServer(t, nil)

	created := createInvoice(t, s, `{"clientName": "Kofi", "invoiceNumber": "INV-7"}`)

	assert.Equal(t, "INV-7", created.InvoiceNumber)
	assert.Equal(t, "Draft", created.Status)
	assert.Equal(t, "Draft", created.CalculatedStatus)
	assert.Empty(t, created.LineItems)
	assert.Equal(t, "0.00", created.Totals.Total)
}

func TestCreateInvoice_BadRequests(t *testing.T) {
	s := newTestServer(t, nil)

	w := do(t, s, http.MethodPost, "/api/invoices", `{"clientName": `)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, decode(t, w).Success)

	w = do(t, s, http.MethodPost, "/api/invoices", `{"clientName": "A", "status": "Overdue"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Error, "invalid invoice status")

	w = do(t, s, http.MethodPost, "/api/invoices", `{"lineItems": [{"quantity": true}]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetInvoice_NotFound(t *testing.T) {
	s := newTestServer(t, nil)

	w := do(t, s, http.MethodGet, "/api/invoices/missing", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "invoice not found", env.Error)
}

func TestListInvoices(t *testing.T) {
	s := newTestServer(t, nil)
	overdue := createInvoice(t, s, overdueBody)
	createInvoice(t, s, `{"clientName": "Kofi Boateng", "dueDate": "20/03/2024", "status": "Pending",
		"lineItems": [{"quantity": "1", "price": "999"}]}`)

	w := do(t, s, http.MethodGet, "/api/invoices", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-Total-Count"))

	var views []viewBody
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &views))
	require.Len(t, views, 2)
	assert.Equal(t, "Kofi Boateng", views[0].ClientName, "default sort is due date descending")

	w = do(t, s, http.MethodGet, "/api/invoices?status=overdue", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &views))
	require.Len(t, views, 1)
	assert.Equal(t, overdue.ID, views[0].ID)

	w = do(t, s, http.MethodGet, "/api/invoices?search=KOFI&sort=amount&order=asc", "")
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &views))
	require.Len(t, views, 1)

	w = do(t, s, http.MethodGet, "/api/invoices?sort=client", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateInvoice(t *testing.T) {
	s := newTestServer(t, nil)
	created := createInvoice(t, s, overdueBody)

	w := do(t, s, http.MethodPut, "/api/invoices/"+created.ID,
		`{"invoiceNumber": "INV-9", "clientName": "Ama M.", "dueDate": "2024-04-01", "status": "Pending"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	updated := decodeView(t, w)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Ama M.", updated.ClientName)
	assert.Equal(t, "01/04/2024", updated.DueDate)
	assert.Equal(t, "Pending", updated.CalculatedStatus)

	w = do(t, s, http.MethodPut, "/api/invoices/nope", `{"clientName": "X"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTogglePaid(t *testing.T) {
	s := newTestServer(t, nil)
	created := createInvoice(t, s, overdueBody)

	w := do(t, s, http.MethodPost, "/api/invoices/"+created.ID+"/toggle-paid", "")
	require.Equal(t, http.StatusOK, w.Code)
	paid := decodeView(t, w)
	assert.Equal(t, "Paid", paid.Status)
	assert.Equal(t, "Paid", paid.CalculatedStatus)

	w = do(t, s, http.MethodPost, "/api/invoices/"+created.ID+"/toggle-paid", "")
	assert.Equal(t, "Pending", decodeView(t, w).Status)

	w = do(t, s, http.MethodPost, "/api/invoices/nope/toggle-paid", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteInvoice(t *testing.T) {
	s := newTestServer(t, nil)
	created := createInvoice(t, s, overdueBody)

	w := do(t, s, http.MethodDelete, "/api/invoices/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode(t, w).Success)

	w = do(t, s, http.MethodGet, "/api/invoices/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, s, http.MethodDelete, "/api/invoices/"+created.ID, "")
	assert.Equal(t, http.StatusOK, w.Code, "deleting an unknown id succeeds")
}

func TestPrintInvoice(t *testing.T) {
	s := newTestServer(t, nil)
	created := createInvoice(t, s, overdueBody)

	w := do(t, s, http.MethodGet, "/api/invoices/"+created.ID+"/print", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	body := w.Body.String()
	assert.Contains(t, body, created.InvoiceNumber)
	assert.Contains(t, body, "Ama Mensah")
	assert.Contains(t, body, "GH₵330.00")

	w = do(t, s, http.MethodGet, "/api/invoices/nope/print", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportInvoice(t *testing.T) {
	s := newTestServer(t, nil)
	created := createInvoice(t, s, `{"invoiceNumber": "INV/42", "clientName": "Efua",
		"lineItems": [{"description": "Audit", "quantity": "1", "price": "50"}]}`)

	w := do(t, s, http.MethodGet, "/api/invoices/"+created.ID+"/export", "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="INV_42.xlsx"`, w.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), export.SummarySheet)
	assert.Len(t, f.GetSheetList(), 2)
}

func TestExportInvoices(t *testing.T) {
	s := newTestServer(t, nil)
	createInvoice(t, s, overdueBody)
	createInvoice(t, s, `{"clientName": "Kofi"}`)

	w := do(t, s, http.MethodGet, "/api/invoices/export?status=overdue", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="invoices.xlsx"`, w.Header().Get("Content-Disposition"))

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SummarySheet)
	require.NoError(t, err)
	assert.Len(t, rows, 2, "header plus the single overdue invoice")

	w = do(t, s, http.MethodGet, "/api/invoices/export?order=up", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNextInvoiceNumber(t *testing.T) {
	s := newTestServer(t, nil)

	w := do(t, s, http.MethodGet, "/api/invoice-number", "")

	require.Equal(t, http.StatusOK, w.Code)
	var data struct {
		InvoiceNumber string `json:"invoiceNumber"`
	}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &data))
	assert.Regexp(t, `^INV-1710493200000-\d{1,3}$`, data.InvoiceNumber)
}

func TestPreviewTotals(t *testing.T) {
	s := newTestServer(t, nil)

	w := do(t, s, http.MethodPost, "/api/totals",
		`{"lineItems": [{"quantity": "2", "price": 10}], "taxPercent": "10", "discountPercent": 5}`)

	require.Equal(t, http.StatusOK, w.Code)
	var totals entity.Totals
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &totals))
	assert.Equal(t, entity.Totals{Subtotal: "20.00", DiscountAmount: "1.00", AfterDiscount: "19.00", TaxAmount: "1.90", Total: "20.90"}, totals)

	w = do(t, s, http.MethodPost, "/api/totals", `[`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthCheck(t *testing.T) {
	t.Run("no reporter", func(t *testing.T) {
		w := do(t, newTestServer(t, nil), http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decode(t, w).Success)
	})

	t.Run("unhealthy store", func(t *testing.T) {
		health := func(ctx context.Context) (bool, interface{}) {
			return false, map[string]string{"store": "ping failed"}
		}
		w := do(t, newTestServer(t, health), http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "ping failed")
		assert.Contains(t, w.Body.String(), `"unhealthy"`)
	})
}

func TestCORSPreflight(t *testing.T) {
	w := do(t, newTestServer(t, nil), http.MethodOptions, "/api/invoices", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestFlexString(t *testing.T) {
	tests := []struct {
		in   string
		want FlexString
	}{
		{in: `"12.50"`, want: "12.50"},
		{in: `12.50`, want: "12.50"},
		{in: `3`, want: "3"},
		{in: `null`, want: ""},
		{in: `""`, want: ""},
	}
	for _, tt := range tests {
		var f FlexString
		require.NoError(t, json.Unmarshal([]byte(tt.in), &f), tt.in)
		assert.Equal(t, tt.want, f, tt.in)
	}

	var f FlexString
	assert.Error(t, json.Unmarshal([]byte(`true`), &f))
	assert.Error(t, json.Unmarshal([]byte(`{}`), &f))
}

func TestExportFileName(t *testing.T) {
	assert.Equal(t, "invoice.xlsx", exportFileName(""))
	assert.Equal(t, "INV-1-2.xlsx", exportFileName("INV-1-2"))
	assert.Equal(t, "a_b_c.xlsx", exportFileName("a b/c"))
}
