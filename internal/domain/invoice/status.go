// Package invoice holds the pure invoice rules: status derivation, totals, date
// conversion, currency formatting, number generation and list queries.
package invoice

import (
	"time"

	"github.com/niiboye001/genesis-invoice/internal/domain/entity"
)

// DeriveStatus returns the status an invoice should be shown with on the calendar day
// of today. Paid and Draft are returned as stored. Any other stored value is treated as
// Pending and becomes Overdue once the due date is strictly before today; an
// unparseable due date stays Pending.
func DeriveStatus(inv *entity.Invoice, today time.Time) entity.Status {
	if inv == nil {
		return entity.StatusPending
	}
	return deriveStatus(inv.Status, inv.DueDate, today)
}

func deriveStatus(stored entity.Status, dueDate string, today time.Time) entity.Status {
	switch stored {
	case entity.StatusPaid:
		return entity.StatusPaid
	case entity.StatusDraft:
		return entity.StatusDraft
	}

	due, ok := ParseDate(dueDate)
	if !ok {
		return entity.StatusPending
	}
	if due.Before(DateOf(today)) {
		return entity.StatusOverdue
	}
	return entity.StatusPending
}

// BuildView pairs an invoice with its derived status and totals.
func BuildView(inv *entity.Invoice, today time.Time) entity.InvoiceView {
	return entity.InvoiceView{
		Invoice:       inv,
		DerivedStatus: DeriveStatus(inv, today),
		Totals:        ComputeTotals(inv.LineItems, inv.TaxPercent, inv.DiscountPercent),
	}
}
