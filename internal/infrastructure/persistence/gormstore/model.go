package gormstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/niiboye001/genesis-invoice/internal/domain/entity"
)

// InvoiceModel is the GORM model for one invoice row. Position keeps the collection
// order and line items are stored as a JSON array.
type InvoiceModel struct {
	ID              string    `gorm:"type:varchar(64);primaryKey"`
	Position        int       `gorm:"not null;index"`
	InvoiceNumber   string    `gorm:"type:varchar(64);index"`
	ClientName      string    `gorm:"type:varchar(255)"`
	ClientEmail     string    `gorm:"type:varchar(255)"`
	IssueDate       string    `gorm:"type:varchar(32)"`
	DueDate         string    `gorm:"type:varchar(32)"`
	LineItems       string    `gorm:"type:text;not null"`
	TaxPercent      string    `gorm:"type:varchar(32)"`
	DiscountPercent string    `gorm:"type:varchar(32)"`
	Notes           string    `gorm:"type:text"`
	Status          string    `gorm:"type:varchar(20);not null;index"`
	CreatedAt       time.Time `gorm:"autoCreateTime:false"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime:false"`
}

// TableName returns the table name for the model
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToEntity converts the model to a domain entity
func (m *InvoiceModel) ToEntity() (*entity.Invoice, error) {
	items := []entity.LineItem{}
	if m.LineItems != "" {
		if err := json.Unmarshal([]byte(m.LineItems), &items); err != nil {
			return nil, fmt.Errorf("decode line items of invoice %s: %w", m.ID, err)
		}
		if items == nil {
			items = []entity.LineItem{}
		}
	}

	return &entity.Invoice{
		ID:              m.ID,
		InvoiceNumber:   m.InvoiceNumber,
		ClientName:      m.ClientName,
		ClientEmail:     m.ClientEmail,
		IssueDate:       m.IssueDate,
		DueDate:         m.DueDate,
		LineItems:       items,
		TaxPercent:      m.TaxPercent,
		DiscountPercent: m.DiscountPercent,
		Notes:           m.Notes,
		Status:          entity.Status(m.Status),
		CreatedAt:       m.CreatedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}, nil
}

// InvoiceModelFromEntity creates a model from a domain entity at position
func InvoiceModelFromEntity(inv *entity.Invoice, position int) (*InvoiceModel, error) {
	items := inv.LineItems
	if items == nil {
		items = []entity.LineItem{}
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode line items of invoice %s: %w", inv.ID, err)
	}

	return &InvoiceModel{
		ID:              inv.ID,
		Position:        position,
		InvoiceNumber:   inv.InvoiceNumber,
		ClientName:      inv.ClientName,
		ClientEmail:     inv.ClientEmail,
		IssueDate:       inv.IssueDate,
		DueDate:         inv.DueDate,
		LineItems:       string(encoded),
		TaxPercent:      inv.TaxPercent,
		DiscountPercent: inv.DiscountPercent,
		Notes:           inv.Notes,
		Status:          string(inv.Status),
		CreatedAt:       inv.CreatedAt.UTC(),
		UpdatedAt:       inv.UpdatedAt.UTC(),
	}, nil
}
