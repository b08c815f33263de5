package http

import (
	"bytes"
	"encoding/json"

	"github.com/niiboye001/genesis-invoice/internal/domain/entity"
)

// FlexString accepts a JSON string, number or null and keeps it as text, so numeric
// form fields arrive exactly as entered.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// LineItemRequest is one line item of an invoice request
type LineItemRequest struct {
	Description string     `json:"description"`
	Quantity    FlexString `json:"quantity"`
	Price       FlexString `json:"price"`
}

// InvoiceRequest is the body of create and update calls
type InvoiceRequest struct {
	InvoiceNumber   string            `json:"invoiceNumber"`
	ClientName      string            `json:"clientName"`
	ClientEmail     string            `json:"clientEmail"`
	IssueDate       string            `json:"issueDate"`
	DueDate         string            `json:"dueDate"`
	LineItems       []LineItemRequest `json:"lineItems"`
	TaxPercent      FlexString        `json:"taxPercent"`
	DiscountPercent FlexString        `json:"discountPercent"`
	Notes           string            `json:"notes"`
	Status          string            `json:"status"`
}

// TotalsRequest is the body of a totals preview
type TotalsRequest struct {
	LineItems       []LineItemRequest `json:"lineItems"`
	TaxPercent      FlexString        `json:"taxPercent"`
	DiscountPercent FlexString        `json:"discountPercent"`
}

// ToEntity converts the request to an invoice. Status names are matched case-insensitively;
// unknown names pass through and are rejected by the service.
func (r *InvoiceRequest) ToEntity() *entity.Invoice {
	status := entity.Status(r.Status)
	if parsed, ok := entity.ParseStatus(r.Status); ok {
		status = parsed
	}

	return &entity.Invoice{
		InvoiceNumber:   r.InvoiceNumber,
		ClientName:      r.ClientName,
		ClientEmail:     r.ClientEmail,
		IssueDate:       r.IssueDate,
		DueDate:         r.DueDate,
		LineItems:       toLineItems(r.LineItems),
		TaxPercent:      string(r.TaxPercent),
		DiscountPercent: string(r.DiscountPercent),
		Notes:           r.Notes,
		Status:          status,
	}
}

func toLineItems(items []LineItemRequest) []entity.LineItem {
	out := make([]entity.LineItem, 0, len(items))
	for _, item := range items {
		out = append(out, entity.LineItem{
			Description: item.Description,
			Quantity:    string(item.Quantity),
			Price:       string(item.Price),
		})
	}
	return out
}
