package repository

import (
	"context"
	"errors"

	"github.com/andy/billbook/internal/domain"
)

var (
	// ErrNotFound is returned by Get, Update and Delete when no record has the given ID
	ErrNotFound = errors.New("record not found")

	// ErrCorruptData is returned at load time when a stored value is not valid JSON
	// for its collection
	ErrCorruptData = errors.New("stored data is corrupt")
)

// ClientRepository manages client persistence
type ClientRepository interface {
	List(ctx context.Context) ([]*domain.Client, error)
	Get(ctx context.Context, id string) (*domain.Client, error)
	// Add assigns ID and CreatedAt on client before storing it
	Add(ctx context.Context, client *domain.Client) error
	Update(ctx context.Context, id string, patch domain.ClientPatch) (*domain.Client, error)
	Delete(ctx context.Context, id string) error
}

// ServiceRepository manages the service catalogue
type ServiceRepository interface {
	List(ctx context.Context) ([]*domain.Service, error)
	Get(ctx context.Context, id string) (*domain.Service, error)
	Add(ctx context.Context, service *domain.Service) error
	Update(ctx context.Context, id string, patch domain.ServicePatch) (*domain.Service, error)
	Delete(ctx context.Context, id string) error
}

// InvoiceRepository manages saved invoices
type InvoiceRepository interface {
	List(ctx context.Context) ([]*domain.Invoice, error)
	Get(ctx context.Context, id string) (*domain.Invoice, error)
	Add(ctx context.Context, invoice *domain.Invoice) error
	Update(ctx context.Context, id string, patch domain.InvoicePatch) (*domain.Invoice, error)
	Delete(ctx context.Context, id string) error
}

// SettingsRepository manages the singletons: company profile, theme and invoice draft
type SettingsRepository interface {
	Company(ctx context.Context) (domain.CompanyInfo, error)
	SetCompany(ctx context.Context, info domain.CompanyInfo) error
	Theme(ctx context.Context) (domain.Theme, error)
	SetTheme(ctx context.Context, theme domain.Theme) error
	// Draft returns nil when no draft is stored
	Draft(ctx context.Context) (*domain.Invoice, error)
	SaveDraft(ctx context.Context, draft *domain.Invoice) error
	ClearDraft(ctx context.Context) error
}
