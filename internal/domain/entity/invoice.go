package entity

import (
	"strings"
	"time"
)

// Status is an invoice status. Draft, Pending and Paid are stored; Overdue is only
// ever derived from a Pending invoice whose due date has passed.
type Status string

const (
	StatusDraft   Status = "Draft"
	StatusPending Status = "Pending"
	StatusPaid    Status = "Paid"
	StatusOverdue Status = "Overdue"
)

// IsStored reports whether s may be persisted on an invoice.
func (s Status) IsStored() bool {
	switch s {
	case StatusDraft, StatusPending, StatusPaid:
		return true
	}
	return false
}

// ParseStatus maps a case-insensitive status name to a Status.
func ParseStatus(s string) (Status, bool) {
	for _, st := range []Status{StatusDraft, StatusPending, StatusPaid, StatusOverdue} {
		if strings.EqualFold(string(st), s) {
			return st, true
		}
	}
	return "", false
}

// Invoice is a bill issued to a client.
// Dates are kept in the canonical display form DD/MM/YYYY; numeric fields are
// decimal strings exactly as entered.
type Invoice struct {
	ID              string     `json:"id"`
	InvoiceNumber   string     `json:"invoiceNumber"`
	ClientName      string     `json:"clientName"`
	ClientEmail     string     `json:"clientEmail"`
	IssueDate       string     `json:"issueDate"`
	DueDate         string     `json:"dueDate"`
	LineItems       []LineItem `json:"lineItems"`
	TaxPercent      string     `json:"taxPercent"`
	DiscountPercent string     `json:"discountPercent"`
	Notes           string     `json:"notes,omitempty"`
	Status          Status     `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// LineItem is one billable row of an invoice.
type LineItem struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Price       string `json:"price"`
}

// Clone returns a deep copy so callers can't alias a stored line item slice.
func (i *Invoice) Clone() *Invoice {
	if i == nil {
		return nil
	}
	c := *i
	if i.LineItems != nil {
		c.LineItems = make([]LineItem, len(i.LineItems))
		copy(c.LineItems, i.LineItems)
	}
	return &c
}

// Totals holds the monetary breakdown of an invoice, each value fixed to two decimals.
type Totals struct {
	Subtotal       string `json:"subtotal"`
	DiscountAmount string `json:"discountAmount"`
	AfterDiscount  string `json:"afterDiscount"`
	TaxAmount      string `json:"taxAmount"`
	Total          string `json:"total"`
}

// InvoiceView is an invoice as presented to callers: the stored record plus its
// derived status and totals.
type InvoiceView struct {
	*Invoice
	DerivedStatus Status `json:"calculatedStatus"`
	Totals        Totals `json:"totals"`
}
