// Package export writes invoices to XLSX workbooks.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/niiboye001/genesis-invoice/internal/application/port"
	"github.com/niiboye001/genesis-invoice/internal/domain/entity"
	"github.com/niiboye001/genesis-invoice/internal/domain/invoice"
)

const (
	// SummarySheet lists one row per invoice.
	SummarySheet = "Invoices"

	defaultSheet   = "Sheet1"
	maxSheetName   = 31
	numFmtThousand = 4 // #,##0.00
)

var summaryHeader = []interface{}{
	"Invoice Number", "Client", "Email", "Issue Date", "Due Date", "Status",
	"Subtotal", "Discount", "Tax", "Total",
}

var lineItemHeader = []interface{}{"Description", "Quantity", "Price", "Amount"}

// WorkbookExporter implements port.WorkbookExporter with excelize
type WorkbookExporter struct {
	logger *zap.Logger
}

// NewWorkbookExporter creates a new WorkbookExporter
func NewWorkbookExporter(logger *zap.Logger) *WorkbookExporter {
	return &WorkbookExporter{logger: logger}
}

// styles holds the style ids registered on one workbook
type styles struct {
	header int
	money  int
	label  int
}

// ExportInvoices writes the summary sheet and, when detail is set, one line item
// sheet per invoice.
func (e *WorkbookExporter) ExportInvoices(w io.Writer, views []entity.InvoiceView, detail bool) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			e.logger.Warn("Failed to close workbook", zap.Error(err))
		}
	}()

	if err := f.SetSheetName(defaultSheet, SummarySheet); err != nil {
		return fmt.Errorf("failed to name summary sheet: %w", err)
	}

	st, err := registerStyles(f)
	if err != nil {
		return err
	}

	if err := e.fillSummary(f, st, views); err != nil {
		return fmt.Errorf("failed to fill summary: %w", err)
	}

	if detail {
		used := map[string]bool{strings.ToLower(SummarySheet): true}
		for _, view := range views {
			name := uniqueSheetName(view.InvoiceNumber, used)
			if err := e.fillDetail(f, st, name, view); err != nil {
				return fmt.Errorf("failed to fill sheet %s: %w", name, err)
			}
		}
	}

	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Debug("Workbook exported",
		zap.Int("invoice_count", len(views)),
		zap.Bool("detail", detail))
	return nil
}

func registerStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error

	st.header, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F3F4F6"}},
		Border: []excelize.Border{{Type: "bottom", Color: "E5E7EB", Style: 2}},
	})
	if err != nil {
		return st, fmt.Errorf("failed to create header style: %w", err)
	}

	st.money, err = f.NewStyle(&excelize.Style{NumFmt: numFmtThousand})
	if err != nil {
		return st, fmt.Errorf("failed to create money style: %w", err)
	}

	st.label, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return st, fmt.Errorf("failed to create label style: %w", err)
	}

	return st, nil
}

// fillSummary writes the header in row 1 and one invoice per following row
func (e *WorkbookExporter) fillSummary(f *excelize.File, st styles, views []entity.InvoiceView) error {
	if err := f.SetSheetRow(SummarySheet, "A1", &summaryHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "J1", st.header); err != nil {
		return err
	}

	for i, view := range views {
		row := i + 2
		inv := view.Invoice
		values := []interface{}{
			inv.InvoiceNumber,
			inv.ClientName,
			inv.ClientEmail,
			invoice.ToDisplayDate(inv.IssueDate),
			invoice.ToDisplayDate(inv.DueDate),
			string(view.DerivedStatus),
			invoice.ParseNumber(view.Totals.Subtotal),
			invoice.ParseNumber(view.Totals.DiscountAmount),
			invoice.ParseNumber(view.Totals.TaxAmount),
			invoice.ParseNumber(view.Totals.Total),
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &values); err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
	}

	if len(views) > 0 {
		last := len(views) + 1
		if err := f.SetCellStyle(SummarySheet, "G2", fmt.Sprintf("J%d", last), st.money); err != nil {
			return err
		}
	}

	e.setColWidth(f, SummarySheet, "A", "C", 24)
	e.setColWidth(f, SummarySheet, "D", "J", 14)
	return nil
}

// fillDetail writes one invoice's header block, line items and totals
func (e *WorkbookExporter) fillDetail(f *excelize.File, st styles, sheet string, view entity.InvoiceView) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	inv := view.Invoice

	info := [][]interface{}{
		{"Invoice", inv.InvoiceNumber},
		{"Client", inv.ClientName},
		{"Email", inv.ClientEmail},
		{"Issue Date", invoice.ToDisplayDate(inv.IssueDate)},
		{"Due Date", invoice.ToDisplayDate(inv.DueDate)},
		{"Status", string(view.DerivedStatus)},
	}
	for i, values := range info {
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &values); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, "A1", fmt.Sprintf("A%d", len(info)), st.label); err != nil {
		return err
	}

	headerRow := len(info) + 2
	if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", headerRow), &lineItemHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, fmt.Sprintf("A%d", headerRow), fmt.Sprintf("D%d", headerRow), st.header); err != nil {
		return err
	}

	row := headerRow + 1
	for _, item := range inv.LineItems {
		values := []interface{}{
			item.Description,
			invoice.ParseNumber(item.Quantity),
			invoice.ParseNumber(item.Price),
			invoice.ParseNumber(invoice.LineAmount(item)),
		}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &values); err != nil {
			return fmt.Errorf("line item row %d: %w", row, err)
		}
		row++
	}

	row++
	totalsStart := row
	totals := [][]interface{}{
		{"Subtotal", invoice.ParseNumber(view.Totals.Subtotal)},
		{fmt.Sprintf("Discount (%s%%)", percentLabel(inv.DiscountPercent)), invoice.ParseNumber(view.Totals.DiscountAmount)},
		{fmt.Sprintf("Tax (%s%%)", percentLabel(inv.TaxPercent)), invoice.ParseNumber(view.Totals.TaxAmount)},
		{"Total", invoice.ParseNumber(view.Totals.Total)},
	}
	for _, values := range totals {
		if err := f.SetSheetRow(sheet, fmt.Sprintf("C%d", row), &values); err != nil {
			return err
		}
		row++
	}

	if err := f.SetCellStyle(sheet, fmt.Sprintf("C%d", headerRow+1), fmt.Sprintf("D%d", row-1), st.money); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, fmt.Sprintf("C%d", totalsStart), fmt.Sprintf("C%d", row-1), st.label); err != nil {
		return err
	}

	if strings.TrimSpace(inv.Notes) != "" {
		row++
		e.setCell(f, sheet, fmt.Sprintf("A%d", row), "Notes")
		e.setCell(f, sheet, fmt.Sprintf("B%d", row), inv.Notes)
	}

	e.setColWidth(f, sheet, "A", "A", 32)
	e.setColWidth(f, sheet, "B", "D", 16)
	return nil
}

// setCell sets a cell value, logging rather than failing on error
func (e *WorkbookExporter) setCell(f *excelize.File, sheet, cell string, value interface{}) {
	if err := f.SetCellValue(sheet, cell, value); err != nil {
		e.logger.Warn("Failed to set cell value",
			zap.String("sheet", sheet),
			zap.String("cell", cell),
			zap.Error(err))
	}
}

func (e *WorkbookExporter) setColWidth(f *excelize.File, sheet, from, to string, width float64) {
	if err := f.SetColWidth(sheet, from, to, width); err != nil {
		e.logger.Warn("Failed to set column width",
			zap.String("sheet", sheet),
			zap.Error(err))
	}
}

func percentLabel(s string) string {
	if strings.TrimSpace(s) == "" {
		return "0"
	}
	return strings.TrimSpace(s)
}

// uniqueSheetName turns an invoice number into a valid sheet name not yet in used.
// Sheet names compare case-insensitively, so used is keyed by lower case.
func uniqueSheetName(number string, used map[string]bool) string {
	base := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, strings.TrimSpace(number))
	base = strings.Trim(base, "'")
	if base == "" {
		base = "Invoice"
	}
	base = truncateRunes(base, maxSheetName)

	name := base
	for i := 2; used[strings.ToLower(name)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		name = truncateRunes(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

var _ port.WorkbookExporter = (*WorkbookExporter)(nil)
