package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceStatusUnpaid InvoiceStatus = "Unpaid"
	InvoiceStatusPaid   InvoiceStatus = "Paid"
)

// DateLayout is the calendar-date format used for invoice and due dates
const DateLayout = "2006-01-02"

// Toggle flips between Unpaid and Paid. Anything else is treated as Unpaid.
func (s InvoiceStatus) Toggle() InvoiceStatus {
	if s == InvoiceStatusPaid {
		return InvoiceStatusUnpaid
	}
	return InvoiceStatusPaid
}

// ParseInvoiceStatus accepts "paid" or "unpaid" in any case
func ParseInvoiceStatus(s string) (InvoiceStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "paid":
		return InvoiceStatusPaid, nil
	case "unpaid":
		return InvoiceStatusUnpaid, nil
	default:
		return "", fmt.Errorf("unknown invoice status %q (want Paid or Unpaid)", s)
	}
}

// ClientSnapshot is the frozen copy of a client taken when it is put on an invoice.
// It is never resynchronized with the client it came from.
type ClientSnapshot struct {
	Name    string `json:"clientName"`
	Email   string `json:"clientEmail"`
	Address string `json:"clientAddress"`
}

type LineItem struct {
	ID          string          `json:"id"`
	ServiceID   string          `json:"serviceId,omitempty"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
}

// NewLineItem creates an empty custom line item with quantity 1
func NewLineItem(id string) LineItem {
	return LineItem{
		ID:       id,
		Quantity: 1,
		Rate:     decimal.Zero,
	}
}

// ApplyService copies the service name and price onto the item once.
// Later changes to the service do not reach the item.
func (li *LineItem) ApplyService(s *Service) {
	li.ServiceID = s.ID
	li.Description = s.Name
	li.Rate = s.Price
}

type LineItemPatch struct {
	Description *string
	Quantity    *int
	Rate        *decimal.Decimal
}

// Apply shallow-merges the patch into li
func (p LineItemPatch) Apply(li *LineItem) {
	if p.Description != nil {
		li.Description = *p.Description
	}
	if p.Quantity != nil {
		li.Quantity = *p.Quantity
	}
	if p.Rate != nil {
		li.Rate = *p.Rate
	}
}

type Invoice struct {
	ID            string `json:"id,omitempty"`
	InvoiceNumber string `json:"invoiceNumber"`
	Date          string `json:"date"`
	DueDate       string `json:"dueDate"`
	ClientID      string `json:"clientId"`
	ClientSnapshot
	Items     []LineItem      `json:"items"`
	Notes     string          `json:"notes,omitempty"`
	TaxRate   decimal.Decimal `json:"taxRate"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxAmount decimal.Decimal `json:"taxAmount"`
	Total     decimal.Decimal `json:"total"`
	Status    InvoiceStatus   `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}

// Clone returns a copy that shares no line item storage with i
func (i *Invoice) Clone() *Invoice {
	out := *i
	out.Items = make([]LineItem, len(i.Items))
	copy(out.Items, i.Items)
	return &out
}

// SetClient copies the client's snapshot onto the invoice
func (i *Invoice) SetClient(c *Client) {
	i.ClientID = c.ID
	i.ClientSnapshot = c.Snapshot()
}

// ClearClient removes the client reference and its snapshot
func (i *Invoice) ClearClient() {
	i.ClientID = ""
	i.ClientSnapshot = ClientSnapshot{}
}

// FindItem returns the index of the line item with the given ID, or -1
func (i *Invoice) FindItem(id string) int {
	for idx := range i.Items {
		if i.Items[idx].ID == id {
			return idx
		}
	}
	return -1
}

// SetTotals records the computed money fields. They are not recomputed on read.
func (i *Invoice) SetTotals(subtotal, taxAmount, total decimal.Decimal) {
	i.Subtotal = subtotal
	i.TaxAmount = taxAmount
	i.Total = total
}

// IsPaid returns true if the invoice has been marked paid
func (i *Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}

// ValidateForSave returns an error if the invoice cannot be committed or exported
func (i *Invoice) ValidateForSave() error {
	if strings.TrimSpace(i.ClientID) == "" {
		return errors.New("a client must be selected")
	}
	if len(i.Items) == 0 {
		return errors.New("at least one line item is required")
	}
	if strings.TrimSpace(i.InvoiceNumber) == "" {
		return errors.New("invoice number is required")
	}
	if _, err := time.Parse(DateLayout, i.Date); err != nil {
		return fmt.Errorf("invoice date %q is not a YYYY-MM-DD date", i.Date)
	}
	if i.DueDate != "" {
		if _, err := time.Parse(DateLayout, i.DueDate); err != nil {
			return fmt.Errorf("due date %q is not a YYYY-MM-DD date", i.DueDate)
		}
	}
	return nil
}

// InvoicePatch changes a saved invoice. Totals, items and the client snapshot are history
// and cannot be patched.
type InvoicePatch struct {
	InvoiceNumber *string
	Date          *string
	DueDate       *string
	Notes         *string
	Status        *InvoiceStatus
}

// Apply shallow-merges the patch into i
func (p InvoicePatch) Apply(i *Invoice) {
	if p.InvoiceNumber != nil {
		i.InvoiceNumber = *p.InvoiceNumber
	}
	if p.Date != nil {
		i.Date = *p.Date
	}
	if p.DueDate != nil {
		i.DueDate = *p.DueDate
	}
	if p.Notes != nil {
		i.Notes = *p.Notes
	}
	if p.Status != nil {
		i.Status = *p.Status
	}
}

// IsEmpty reports whether the patch changes nothing
func (p InvoicePatch) IsEmpty() bool {
	return p.InvoiceNumber == nil && p.Date == nil && p.DueDate == nil && p.Notes == nil && p.Status == nil
}

// DraftPatch changes the header fields of an invoice still being built
type DraftPatch struct {
	InvoiceNumber *string
	Date          *string
	DueDate       *string
	Notes         *string
	TaxRate       *decimal.Decimal
}

// Apply shallow-merges the patch into i
func (p DraftPatch) Apply(i *Invoice) {
	InvoicePatch{
		InvoiceNumber: p.InvoiceNumber,
		Date:          p.Date,
		DueDate:       p.DueDate,
		Notes:         p.Notes,
	}.Apply(i)
	if p.TaxRate != nil {
		i.TaxRate = *p.TaxRate
	}
}
