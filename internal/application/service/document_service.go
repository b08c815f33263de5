package service

import (
	"context"
	"fmt"
	"io"

	"github.com/niiboye001/genesis-invoice/internal/application/port"
	"github.com/niiboye001/genesis-invoice/internal/domain/entity"
	"github.com/niiboye001/genesis-invoice/internal/domain/invoice"
)

// DocumentService produces printable and exportable documents for invoices
type DocumentService interface {
	// PrintInvoice renders the print view of one invoice
	PrintInvoice(ctx context.Context, id string, w io.Writer) error

	// ExportInvoice writes a workbook with the invoice summary and its line items
	ExportInvoice(ctx context.Context, id string, w io.Writer) error

	// ExportInvoices writes a summary workbook for every invoice matching query
	ExportInvoices(ctx context.Context, query invoice.ListQuery, w io.Writer) error
}

type documentServiceImpl struct {
	invoices InvoiceService
	renderer port.InvoiceRenderer
	exporter port.WorkbookExporter
	logger   Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	invoices InvoiceService,
	renderer port.InvoiceRenderer,
	exporter port.WorkbookExporter,
	logger Logger,
) DocumentService {
	return &documentServiceImpl{
		invoices: invoices,
		renderer: renderer,
		exporter: exporter,
		logger:   logger,
	}
}

// PrintInvoice renders the print view of one invoice
func (s *documentServiceImpl) PrintInvoice(ctx context.Context, id string, w io.Writer) error {
	view, err := s.invoices.GetView(ctx, id)
	if err != nil {
		return err
	}
	if err := s.renderer.RenderInvoice(w, *view); err != nil {
		s.logger.Error("Failed to render invoice", "invoice_id", id, "error", err)
		return fmt.Errorf("render invoice: %w", err)
	}
	return nil
}

// ExportInvoice writes a detailed workbook for one invoice
func (s *documentServiceImpl) ExportInvoice(ctx context.Context, id string, w io.Writer) error {
	view, err := s.invoices.GetView(ctx, id)
	if err != nil {
		return err
	}
	if err := s.exporter.ExportInvoices(w, []entity.InvoiceView{*view}, true); err != nil {
		s.logger.Error("Failed to export invoice", "invoice_id", id, "error", err)
		return fmt.Errorf("export invoice: %w", err)
	}
	s.logger.Info("Invoice exported", "invoice_id", id)
	return nil
}

// ExportInvoices writes a summary workbook
func (s *documentServiceImpl) ExportInvoices(ctx context.Context, query invoice.ListQuery, w io.Writer) error {
	views, err := s.invoices.List(ctx, query)
	if err != nil {
		return err
	}
	if err := s.exporter.ExportInvoices(w, views, false); err != nil {
		s.logger.Error("Failed to export invoices", "count", len(views), "error", err)
		return fmt.Errorf("export invoices: %w", err)
	}
	s.logger.Info("Invoices exported", "count", len(views))
	return nil
}
