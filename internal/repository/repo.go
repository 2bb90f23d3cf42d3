package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/andy/billbook/internal/domain"
	"github.com/andy/billbook/internal/store"
	"github.com/rs/zerolog"
)

// Repo owns every collection of the application. It is built once at startup by Open
// and handed to whoever needs it.
type Repo struct {
	Clients  *ClientRepo
	Services *ServiceRepo
	Invoices *InvoiceRepo
	Settings *SettingsRepo

	store store.Store
	keys  Keys
	log   zerolog.Logger
}

type options struct {
	keys    Keys
	clock   func() time.Time
	ids     func() string
	log     zerolog.Logger
	company domain.CompanyInfo
}

// Option configures Open
type Option func(*options)

// WithKeys overrides the store layout
func WithKeys(k Keys) Option {
	return func(o *options) { o.keys = k }
}

// WithClock overrides the CreatedAt source
func WithClock(clock func() time.Time) Option {
	return func(o *options) { o.clock = clock }
}

// WithIDGenerator overrides the record ID source
func WithIDGenerator(ids func() string) Option {
	return func(o *options) { o.ids = ids }
}

// WithLogger sets the logger used for load and persist events
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithDefaultCompany sets the profile returned while none is stored
func WithDefaultCompany(info domain.CompanyInfo) Option {
	return func(o *options) { o.company = info }
}

// Open loads every collection from st. Missing keys load as empty collections;
// unparsable values fail with ErrCorruptData.
func Open(ctx context.Context, st store.Store, opts ...Option) (*Repo, error) {
	o := options{
		keys:  DefaultKeys(""),
		clock: now,
		ids:   newID,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	log := o.log.With().Str("component", "repository").Logger()

	clients, err := loadCollection(ctx, st, "clients", o.keys.Clients, log,
		func(c *domain.Client) string { return c.ID },
		func(c *domain.Client) *domain.Client { cp := *c; return &cp },
	)
	if err != nil {
		return nil, err
	}

	services, err := loadCollection(ctx, st, "services", o.keys.Services, log,
		func(s *domain.Service) string { return s.ID },
		func(s *domain.Service) *domain.Service { cp := *s; return &cp },
	)
	if err != nil {
		return nil, err
	}

	invoices, err := loadCollection(ctx, st, "invoices", o.keys.Invoices, log,
		func(i *domain.Invoice) string { return i.ID },
		func(i *domain.Invoice) *domain.Invoice { return i.Clone() },
	)
	if err != nil {
		return nil, err
	}

	settings := &SettingsRepo{
		store:   st,
		keys:    o.keys,
		company: o.company,
		log:     log,
	}

	// Surface corrupt singletons at startup rather than on first use
	if _, err := settings.Company(ctx); err != nil {
		return nil, err
	}
	if _, err := settings.Theme(ctx); err != nil {
		return nil, err
	}
	if _, err := settings.Draft(ctx); err != nil {
		return nil, err
	}

	return &Repo{
		Clients:  &ClientRepo{c: clients, clock: o.clock, ids: o.ids},
		Services: &ServiceRepo{c: services, clock: o.clock, ids: o.ids},
		Invoices: &InvoiceRepo{c: invoices, clock: o.clock, ids: o.ids},
		Settings: settings,
		store:    st,
		keys:     o.keys,
		log:      log,
	}, nil
}

// Keys returns the store layout in use
func (r *Repo) Keys() Keys {
	return r.keys
}

// ResetInvoices deletes every saved invoice and the draft
func (r *Repo) ResetInvoices(ctx context.Context) error {
	if err := r.Invoices.c.clear(ctx); err != nil {
		return err
	}
	if err := r.Settings.ClearDraft(ctx); err != nil {
		return err
	}
	r.log.Info().Msg("invoices reset")
	return nil
}

// ResetAll deletes every collection and singleton
func (r *Repo) ResetAll(ctx context.Context) error {
	if err := r.ResetInvoices(ctx); err != nil {
		return err
	}
	if err := r.Clients.c.clear(ctx); err != nil {
		return err
	}
	if err := r.Services.c.clear(ctx); err != nil {
		return err
	}
	for _, key := range []string{r.keys.Company, r.keys.Theme} {
		if err := r.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to clear %s: %w", key, err)
		}
	}
	r.log.Info().Msg("all data reset")
	return nil
}
