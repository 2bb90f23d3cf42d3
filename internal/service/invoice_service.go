package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andy/billbook/internal/billing"
	"github.com/andy/billbook/internal/domain"
	"github.com/andy/billbook/internal/export"
	"github.com/andy/billbook/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var (
	// ErrValidation is returned, wrapped with the reason, when a draft cannot be saved or exported
	ErrValidation = errors.New("invoice is incomplete")

	// ErrItemNotFound is returned when a line item ID is not on the draft
	ErrItemNotFound = errors.New("line item not found")
)

// DefaultNotes are put on every new draft
const DefaultNotes = "Thank you for your business!"

// Defaults seed new drafts
type Defaults struct {
	DueDays      int
	TaxRate      decimal.Decimal
	NumberPrefix string
	Notes        string
}

// InvoiceService builds invoices through a persisted draft and manages saved ones
type InvoiceService interface {
	// NewDraft replaces the current draft with a fresh one
	NewDraft(ctx context.Context) (*domain.Invoice, error)

	// CurrentDraft returns the stored draft, starting a new one if there is none
	CurrentDraft(ctx context.Context) (*domain.Invoice, error)

	// SelectClient snapshots the client onto the draft; an empty ID clears it
	SelectClient(ctx context.Context, clientID string) (*domain.Invoice, error)

	// AddItem appends an empty line item with quantity 1
	AddItem(ctx context.Context) (*domain.Invoice, error)

	UpdateItem(ctx context.Context, itemID string, patch domain.LineItemPatch) (*domain.Invoice, error)

	// ApplyService copies a service's name and price onto a line item
	ApplyService(ctx context.Context, itemID, serviceID string) (*domain.Invoice, error)

	RemoveItem(ctx context.Context, itemID string) (*domain.Invoice, error)

	// SetDetails changes number, dates, notes or tax rate of the draft
	SetDetails(ctx context.Context, patch domain.DraftPatch) (*domain.Invoice, error)

	// Save computes totals, commits the draft as an invoice and clears the draft
	Save(ctx context.Context) (*domain.Invoice, error)

	DiscardDraft(ctx context.Context) error

	// ToggleStatus flips a saved invoice between Unpaid and Paid
	ToggleStatus(ctx context.Context, invoiceID string) (*domain.Invoice, error)

	ComputeTotals(items []domain.LineItem, taxRate decimal.Decimal) billing.Totals

	// ExportDraft renders the draft with live totals
	ExportDraft(ctx context.Context, req export.Request) (*export.Result, error)

	// ExportInvoice renders a saved invoice with its stored totals
	ExportInvoice(ctx context.Context, invoiceID string, req export.Request) (*export.Result, error)

	// ListInvoices filters by a case-insensitive query and, if set, status
	ListInvoices(ctx context.Context, query string, status *domain.InvoiceStatus) ([]*domain.Invoice, error)

	DeleteInvoice(ctx context.Context, id string) error
}

// DocumentExporter renders invoices; satisfied by *export.Exporter
type DocumentExporter interface {
	Export(ctx context.Context, inv *domain.Invoice, company domain.CompanyInfo, req export.Request) (*export.Result, error)
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	clientRepo  repository.ClientRepository
	serviceRepo repository.ServiceRepository
	settings    repository.SettingsRepository
	exporter    DocumentExporter

	defaults Defaults
	clock    func() time.Time
	ids      func() string
	log      zerolog.Logger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	serviceRepo repository.ServiceRepository,
	settings repository.SettingsRepository,
	exporter DocumentExporter,
	defaults Defaults,
	log zerolog.Logger,
) InvoiceService {
	if defaults.NumberPrefix == "" {
		defaults.NumberPrefix = "INV"
	}
	if defaults.Notes == "" {
		defaults.Notes = DefaultNotes
	}
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		serviceRepo: serviceRepo,
		settings:    settings,
		exporter:    exporter,
		defaults:    defaults,
		clock:       time.Now,
		ids:         uuid.NewString,
		log:         log,
	}
}

// freshDraft numbers the invoice from the last six digits of the millisecond clock
func (s *invoiceService) freshDraft() *domain.Invoice {
	now := s.clock()
	return &domain.Invoice{
		InvoiceNumber: fmt.Sprintf("%s-%06d", s.defaults.NumberPrefix, now.UnixMilli()%1_000_000),
		Date:          now.Format(domain.DateLayout),
		DueDate:       now.AddDate(0, 0, s.defaults.DueDays).Format(domain.DateLayout),
		Items:         make([]domain.LineItem, 0),
		Notes:         s.defaults.Notes,
		TaxRate:       s.defaults.TaxRate,
		Status:        domain.InvoiceStatusUnpaid,
	}
}

func (s *invoiceService) NewDraft(ctx context.Context) (*domain.Invoice, error) {
	draft := s.freshDraft()
	if err := s.saveDraft(ctx, draft); err != nil {
		return nil, err
	}
	s.log.Debug().Str("invoice", draft.InvoiceNumber).Msg("draft started")
	return draft, nil
}

func (s *invoiceService) CurrentDraft(ctx context.Context) (*domain.Invoice, error) {
	draft, err := s.settings.Draft(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	if draft == nil {
		return s.NewDraft(ctx)
	}
	return draft, nil
}

// editDraft loads the draft, applies fn, refreshes the live totals and stores it
func (s *invoiceService) editDraft(ctx context.Context, fn func(*domain.Invoice) error) (*domain.Invoice, error) {
	draft, err := s.CurrentDraft(ctx)
	if err != nil {
		return nil, err
	}
	if err := fn(draft); err != nil {
		return nil, err
	}
	if err := s.saveDraft(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *invoiceService) saveDraft(ctx context.Context, draft *domain.Invoice) error {
	billing.Compute(draft.Items, draft.TaxRate).Apply(draft)
	if err := s.settings.SaveDraft(ctx, draft); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

func (s *invoiceService) SelectClient(ctx context.Context, clientID string) (*domain.Invoice, error) {
	clientID = strings.TrimSpace(clientID)

	var client *domain.Client
	if clientID != "" {
		c, err := s.clientRepo.Get(ctx, clientID)
		if err != nil {
			return nil, err
		}
		client = c
	}

	return s.editDraft(ctx, func(draft *domain.Invoice) error {
		if client == nil {
			draft.ClearClient()
			return nil
		}
		draft.SetClient(client)
		return nil
	})
}

func (s *invoiceService) AddItem(ctx context.Context) (*domain.Invoice, error) {
	return s.editDraft(ctx, func(draft *domain.Invoice) error {
		draft.Items = append(draft.Items, domain.NewLineItem(s.ids()))
		return nil
	})
}

func (s *invoiceService) UpdateItem(ctx context.Context, itemID string, patch domain.LineItemPatch) (*domain.Invoice, error) {
	return s.editDraft(ctx, func(draft *domain.Invoice) error {
		idx := draft.FindItem(itemID)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
		}
		patch.Apply(&draft.Items[idx])
		return nil
	})
}

func (s *invoiceService) ApplyService(ctx context.Context, itemID, serviceID string) (*domain.Invoice, error) {
	svc, err := s.serviceRepo.Get(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	return s.editDraft(ctx, func(draft *domain.Invoice) error {
		idx := draft.FindItem(itemID)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
		}
		draft.Items[idx].ApplyService(svc)
		return nil
	})
}

func (s *invoiceService) RemoveItem(ctx context.Context, itemID string) (*domain.Invoice, error) {
	return s.editDraft(ctx, func(draft *domain.Invoice) error {
		idx := draft.FindItem(itemID)
		if idx < 0 {
			return fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
		}
		draft.Items = append(draft.Items[:idx], draft.Items[idx+1:]...)
		return nil
	})
}

func (s *invoiceService) SetDetails(ctx context.Context, patch domain.DraftPatch) (*domain.Invoice, error) {
	for _, d := range []*string{patch.Date, patch.DueDate} {
		if d == nil || *d == "" {
			continue
		}
		if _, err := time.Parse(domain.DateLayout, *d); err != nil {
			return nil, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrValidation, *d)
		}
	}

	return s.editDraft(ctx, func(draft *domain.Invoice) error {
		patch.Apply(draft)
		return nil
	})
}

// checkComplete is the precondition shared by save and draft export
func checkComplete(inv *domain.Invoice) error {
	if strings.TrimSpace(inv.ClientID) == "" || len(inv.Items) == 0 {
		return fmt.Errorf("%w: please select a client and add at least one item", ErrValidation)
	}
	return nil
}

func (s *invoiceService) Save(ctx context.Context) (*domain.Invoice, error) {
	draft, err := s.CurrentDraft(ctx)
	if err != nil {
		return nil, err
	}

	if err := checkComplete(draft); err != nil {
		return nil, err
	}
	if err := draft.ValidateForSave(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	inv := draft.Clone()
	inv.ID = ""
	inv.Status = domain.InvoiceStatusUnpaid
	s.ComputeTotals(inv.Items, inv.TaxRate).Apply(inv)

	if err := s.invoiceRepo.Add(ctx, inv); err != nil {
		return nil, fmt.Errorf("failed to save invoice: %w", err)
	}

	if err := s.settings.ClearDraft(ctx); err != nil {
		// The invoice is committed; only the leftover draft needs attention
		s.log.Warn().Err(err).Str("invoice", inv.InvoiceNumber).Msg("draft not cleared after save")
		return inv, fmt.Errorf("invoice %s saved but draft was not cleared: %w", inv.InvoiceNumber, err)
	}

	s.log.Info().
		Str("invoice", inv.InvoiceNumber).
		Str("client", inv.ClientSnapshot.Name).
		Str("total", inv.Total.String()).
		Msg("invoice saved")

	return inv, nil
}

func (s *invoiceService) DiscardDraft(ctx context.Context) error {
	if err := s.settings.ClearDraft(ctx); err != nil {
		return fmt.Errorf("failed to discard draft: %w", err)
	}
	return nil
}

func (s *invoiceService) ToggleStatus(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	inv, err := s.invoiceRepo.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	next := inv.Status.Toggle()
	updated, err := s.invoiceRepo.Update(ctx, invoiceID, domain.InvoicePatch{Status: &next})
	if err != nil {
		return nil, fmt.Errorf("failed to update invoice status: %w", err)
	}

	s.log.Info().Str("invoice", updated.InvoiceNumber).Str("status", string(updated.Status)).Msg("status changed")
	return updated, nil
}

func (s *invoiceService) ComputeTotals(items []domain.LineItem, taxRate decimal.Decimal) billing.Totals {
	return billing.Compute(items, taxRate)
}

func (s *invoiceService) ExportDraft(ctx context.Context, req export.Request) (*export.Result, error) {
	draft, err := s.CurrentDraft(ctx)
	if err != nil {
		return nil, err
	}
	if err := checkComplete(draft); err != nil {
		return nil, err
	}

	s.ComputeTotals(draft.Items, draft.TaxRate).Apply(draft)
	return s.export(ctx, draft, req)
}

func (s *invoiceService) ExportInvoice(ctx context.Context, invoiceID string, req export.Request) (*export.Result, error) {
	inv, err := s.invoiceRepo.Get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return s.export(ctx, inv, req)
}

func (s *invoiceService) export(ctx context.Context, inv *domain.Invoice, req export.Request) (*export.Result, error) {
	company, err := s.settings.Company(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load company profile: %w", err)
	}
	return s.exporter.Export(ctx, inv, company, req)
}

func (s *invoiceService) ListInvoices(ctx context.Context, query string, status *domain.InvoiceStatus) ([]*domain.Invoice, error) {
	invoices, err := s.invoiceRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	invoices = FilterInvoices(invoices, query)
	if status == nil {
		return invoices, nil
	}

	out := make([]*domain.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv.Status == *status {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (s *invoiceService) DeleteInvoice(ctx context.Context, id string) error {
	if err := s.invoiceRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("id", id).Msg("invoice deleted")
	return nil
}
