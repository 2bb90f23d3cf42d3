package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/andy/billbook/internal/domain"
)

// InvoiceRepo is the write-through implementation of InvoiceRepository
type InvoiceRepo struct {
	c     *collection[domain.Invoice]
	clock func() time.Time
	ids   func() string
}

// List returns all saved invoices in the order they were saved
func (r *InvoiceRepo) List(ctx context.Context) ([]*domain.Invoice, error) {
	return r.c.list(), nil
}

// Get retrieves an invoice by ID
func (r *InvoiceRepo) Get(ctx context.Context, id string) (*domain.Invoice, error) {
	return r.c.get(id)
}

// Add commits an invoice. Its totals must already be computed; they are stored as given.
func (r *InvoiceRepo) Add(ctx context.Context, invoice *domain.Invoice) error {
	if err := invoice.ValidateForSave(); err != nil {
		return fmt.Errorf("invalid invoice: %w", err)
	}

	rec := invoice.Clone()
	rec.ID = r.ids()
	rec.CreatedAt = r.clock()
	if rec.Status == "" {
		rec.Status = domain.InvoiceStatusUnpaid
	}

	if err := r.c.add(ctx, rec); err != nil {
		return fmt.Errorf("failed to add invoice: %w", err)
	}

	*invoice = *rec.Clone()
	return nil
}

// Update merges patch into a saved invoice
func (r *InvoiceRepo) Update(ctx context.Context, id string, patch domain.InvoicePatch) (*domain.Invoice, error) {
	return r.c.update(ctx, id, func(inv *domain.Invoice) error {
		patch.Apply(inv)
		if inv.Status != domain.InvoiceStatusPaid && inv.Status != domain.InvoiceStatusUnpaid {
			return fmt.Errorf("invalid invoice status %q", inv.Status)
		}
		return nil
	})
}

// Delete removes a saved invoice
func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	return r.c.remove(ctx, id)
}

// Count returns the number of saved invoices
func (r *InvoiceRepo) Count() int {
	return r.c.count()
}
