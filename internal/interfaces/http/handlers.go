package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/niiboye001/genesis-invoice/internal/application/service"
	"github.com/niiboye001/genesis-invoice/internal/domain/invoice"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HealthFunc reports whether the backing components are reachable, with details
type HealthFunc func(ctx context.Context) (bool, interface{})

// Handlers contains all HTTP request handlers
type Handlers struct {
	invoices  service.InvoiceService
	documents service.DocumentService
	health    HealthFunc
	logger    Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	invoices service.InvoiceService,
	documents service.DocumentService,
	health HealthFunc,
	logger Logger,
) *Handlers {
	return &Handlers{
		invoices:  invoices,
		documents: documents,
		health:    health,
		logger:    logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string      `json:"status"`
	Timestamp  string      `json:"timestamp"`
	Version    string      `json:"version"`
	Components interface{} `json:"components,omitempty"`
}

// Version is reported by the health check
const Version = "1.0.0"

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   Version,
	}

	status := http.StatusOK
	if h.health != nil {
		healthy, details := h.health(c.Request.Context())
		response.Components = details
		if !healthy {
			response.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		}
	}

	c.JSON(status, Response{
		Success: status == http.StatusOK,
		Data:    response,
	})
}

// ListInvoices handles GET /api/invoices
func (h *Handlers) ListInvoices(c *gin.Context) {
	query, err := invoice.ParseListQuery(c.Query("status"), c.Query("search"), c.Query("sort"), c.Query("order"))
	if err != nil {
		h.fail(c, err, "invalid query parameters")
		return
	}

	views, err := h.invoices.List(c.Request.Context(), query)
	if err != nil {
		h.fail(c, err, "failed to retrieve invoices")
		return
	}

	c.Header("X-Total-Count", strconv.Itoa(len(views)))
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    views,
	})
}

// GetInvoice handles GET /api/invoices/:id
func (h *Handlers) GetInvoice(c *gin.Context) {
	view, err := h.invoices.GetView(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to retrieve invoice")
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    view,
	})
}

// CreateInvoice handles POST /api/invoices
func (h *Handlers) CreateInvoice(c *gin.Context) {
	var req InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid invoice body", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	created, err := h.invoices.Create(c.Request.Context(), req.ToEntity())
	if err != nil {
		h.fail(c, err, "failed to create invoice")
		return
	}

	h.respondView(c, http.StatusCreated, created.ID)
}

// UpdateInvoice handles PUT /api/invoices/:id
func (h *Handlers) UpdateInvoice(c *gin.Context) {
	var req InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid invoice body", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	updated, err := h.invoices.Update(c.Request.Context(), c.Param("id"), req.ToEntity())
	if err != nil {
		h.fail(c, err, "failed to update invoice")
		return
	}

	h.respondView(c, http.StatusOK, updated.ID)
}

// DeleteInvoice handles DELETE /api/invoices/:id. Unknown ids succeed.
func (h *Handlers) DeleteInvoice(c *gin.Context) {
	if err := h.invoices.DeleteByID(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, "failed to delete invoice")
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// TogglePaid handles POST /api/invoices/:id/toggle-paid
func (h *Handlers) TogglePaid(c *gin.Context) {
	toggled, err := h.invoices.TogglePaid(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to update invoice status")
		return
	}

	h.respondView(c, http.StatusOK, toggled.ID)
}

// PrintInvoice handles GET /api/invoices/:id/print
func (h *Handlers) PrintInvoice(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.documents.PrintInvoice(c.Request.Context(), c.Param("id"), &buf); err != nil {
		h.fail(c, err, "failed to render invoice")
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// ExportInvoice handles GET /api/invoices/:id/export
func (h *Handlers) ExportInvoice(c *gin.Context) {
	id := c.Param("id")

	view, err := h.invoices.GetView(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to export invoice")
		return
	}

	var buf bytes.Buffer
	if err := h.documents.ExportInvoice(c.Request.Context(), id, &buf); err != nil {
		h.fail(c, err, "failed to export invoice")
		return
	}

	h.attachment(c, exportFileName(view.InvoiceNumber), buf.Bytes())
}

// ExportInvoices handles GET /api/invoices/export, honouring the list filters
func (h *Handlers) ExportInvoices(c *gin.Context) {
	query, err := invoice.ParseListQuery(c.Query("status"), c.Query("search"), c.Query("sort"), c.Query("order"))
	if err != nil {
		h.fail(c, err, "invalid query parameters")
		return
	}

	var buf bytes.Buffer
	if err := h.documents.ExportInvoices(c.Request.Context(), query, &buf); err != nil {
		h.fail(c, err, "failed to export invoices")
		return
	}

	h.attachment(c, "invoices.xlsx", buf.Bytes())
}

// NextInvoiceNumber handles GET /api/invoice-number
func (h *Handlers) NextInvoiceNumber(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    gin.H{"invoiceNumber": h.invoices.NextInvoiceNumber()},
	})
}

// PreviewTotals handles POST /api/totals
func (h *Handlers) PreviewTotals(c *gin.Context) {
	var req TotalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid totals body", "error", err)
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "invalid request body",
		})
		return
	}

	totals := invoice.ComputeTotals(toLineItems(req.LineItems), string(req.TaxPercent), string(req.DiscountPercent))
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    totals,
	})
}

func (h *Handlers) respondView(c *gin.Context, status int, id string) {
	view, err := h.invoices.GetView(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, "failed to retrieve invoice")
		return
	}
	c.JSON(status, Response{
		Success: true,
		Data:    view,
	})
}

func (h *Handlers) attachment(c *gin.Context, name string, content []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Data(http.StatusOK, xlsxContentType, content)
}

// fail maps service errors to status codes. Not-found and input errors carry their
// message; anything else is logged and reported with the generic message.
func (h *Handlers) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, invoice.ErrInvoiceNotFound):
		c.JSON(http.StatusNotFound, Response{
			Success: false,
			Error:   "invoice not found",
		})
	case errors.Is(err, invoice.ErrInvalidQuery),
		errors.Is(err, invoice.ErrInvalidStatus),
		errors.Is(err, service.ErrNilInvoice):
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   err.Error(),
		})
	default:
		h.logger.Error(message, "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   message,
		})
	}
}

func exportFileName(number string) string {
	if number == "" {
		return "invoice.xlsx"
	}
	safe := make([]rune, 0, len(number))
	for _, r := range number {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			safe = append(safe, r)
		default:
			safe = append(safe, '_')
		}
	}
	return string(safe) + ".xlsx"
}
