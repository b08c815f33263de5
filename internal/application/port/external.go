package port

import (
	"io"

	"github.com/niiboye001/genesis-invoice/internal/domain/entity"
)

// InvoiceRenderer renders a printable document for one invoice.
type InvoiceRenderer interface {
	RenderInvoice(w io.Writer, view entity.InvoiceView) error
}

// WorkbookExporter writes invoices as a spreadsheet. When detail is true each invoice
// also gets its own line item sheet.
type WorkbookExporter interface {
	ExportInvoices(w io.Writer, views []entity.InvoiceView, detail bool) error
}
