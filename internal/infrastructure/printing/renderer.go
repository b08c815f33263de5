// Package printing renders invoices as standalone HTML documents for the browser's
// print dialog.
package printing

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/niiboye001/genesis-invoice/internal/application/port"
	"github.com/niiboye001/genesis-invoice/internal/domain/entity"
	"github.com/niiboye001/genesis-invoice/internal/domain/invoice"
)

//go:embed templates/*.html
var templateFS embed.FS

const invoiceTemplate = "invoice.html"

// Company is printed in the "Bill From" block.
type Company struct {
	Name        string
	AddressLine string
	CityLine    string
}

// DefaultCompany is used when no company details are configured.
func DefaultCompany() Company {
	return Company{
		Name:        "Your Company Name",
		AddressLine: "Your Address",
		CityLine:    "Your City, Country",
	}
}

// HTMLRenderer implements port.InvoiceRenderer with html/template.
type HTMLRenderer struct {
	tmpl    *template.Template
	company Company
}

// NewHTMLRenderer parses the embedded templates. Amounts are formatted by currency.
func NewHTMLRenderer(currency invoice.CurrencyFormatter, company Company) (*HTMLRenderer, error) {
	funcMap := template.FuncMap{
		"money":        currency.Format,
		"lineAmount":   func(item entity.LineItem) string { return currency.Format(invoice.LineAmount(item)) },
		"displayDate":  invoice.ToDisplayDate,
		"positive":     func(s string) bool { return invoice.ParseNumber(s) > 0 },
		"statusClass":  func(s entity.Status) string { return "status-" + strings.ToLower(string(s)) },
		"orDefault":    orDefault,
		"companyTitle": func() string { return titleCase(company.Name) },
	}

	tmpl, err := template.New(invoiceTemplate).Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse print templates: %w", err)
	}

	return &HTMLRenderer{tmpl: tmpl, company: company}, nil
}

type printData struct {
	entity.InvoiceView
	Company Company
}

// RenderInvoice writes the print document for view to w.
func (r *HTMLRenderer) RenderInvoice(w io.Writer, view entity.InvoiceView) error {
	if view.Invoice == nil {
		return fmt.Errorf("render invoice: %w", invoice.ErrInvoiceNotFound)
	}
	if err := r.tmpl.ExecuteTemplate(w, invoiceTemplate, printData{InvoiceView: view, Company: r.company}); err != nil {
		return fmt.Errorf("failed to execute print template: %w", err)
	}
	return nil
}

// titleCase builds a caser per call; a cases.Caser is not safe for concurrent use.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

func orDefault(fallback, s string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

var _ port.InvoiceRenderer = (*HTMLRenderer)(nil)
