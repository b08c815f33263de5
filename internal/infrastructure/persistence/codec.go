// Package persistence holds the invoice store backends and the JSON encoding shared by
// the backends that keep the collection as a single document.
package persistence

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/niiboye001/genesis-invoice/internal/domain/entity"
)

// EncodeCollection serialises the collection as a JSON array in the given order.
func EncodeCollection(invoices []*entity.Invoice) ([]byte, error) {
	if invoices == nil {
		invoices = []*entity.Invoice{}
	}
	data, err := json.Marshal(invoices)
	if err != nil {
		return nil, fmt.Errorf("encode invoice collection: %w", err)
	}
	return data, nil
}

// DecodeCollection parses a stored collection. Empty input and JSON null decode to an
// empty collection.
func DecodeCollection(data []byte) ([]*entity.Invoice, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []*entity.Invoice{}, nil
	}

	var invoices []*entity.Invoice
	if err := json.Unmarshal(trimmed, &invoices); err != nil {
		return nil, fmt.Errorf("decode invoice collection: %w", err)
	}

	out := invoices[:0]
	for _, inv := range invoices {
		if inv == nil {
			continue
		}
		if inv.LineItems == nil {
			inv.LineItems = []entity.LineItem{}
		}
		out = append(out, inv)
	}
	return out, nil
}

// CloneCollection deep-copies every invoice.
func CloneCollection(invoices []*entity.Invoice) []*entity.Invoice {
	out := make([]*entity.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv != nil {
			out = append(out, inv.Clone())
		}
	}
	return out
}
