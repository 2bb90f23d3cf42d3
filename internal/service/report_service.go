package service

import (
	"context"
	"sort"
	"time"

	"github.com/andy/billbook/internal/domain"
	"github.com/andy/billbook/internal/repository"
	"github.com/shopspring/decimal"
)

// MonthRevenue is the invoiced total for one calendar month
type MonthRevenue struct {
	Year   int
	Month  time.Month
	Amount decimal.Decimal
}

// Label renders the bucket as "Jan 2026"
func (m MonthRevenue) Label() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
}

// ServiceCount is how many line items carry a description
type ServiceCount struct {
	Description string
	Count       int
}

// Dashboard is the overview shown on the home screen and by `billbook report`
type Dashboard struct {
	TotalRevenue   decimal.Decimal
	ClientCount    int
	InvoiceCount   int
	AverageInvoice decimal.Decimal
	Outstanding    decimal.Decimal
	PaidCount      int
	UnpaidCount    int
	Monthly        []MonthRevenue
	TopServices    []ServiceCount
}

// ReportService provides aggregations over saved invoices
type ReportService interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
}

const topServicesLimit = 5

type reportService struct {
	clientRepo  repository.ClientRepository
	invoiceRepo repository.InvoiceRepository
}

// NewReportService creates a new report service
func NewReportService(
	clientRepo repository.ClientRepository,
	invoiceRepo repository.InvoiceRepository,
) ReportService {
	return &reportService{
		clientRepo:  clientRepo,
		invoiceRepo: invoiceRepo,
	}
}

func (s *reportService) Dashboard(ctx context.Context) (*Dashboard, error) {
	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	invoices, err := s.invoiceRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		TotalRevenue:   decimal.Zero,
		AverageInvoice: decimal.Zero,
		Outstanding:    decimal.Zero,
		ClientCount:    len(clients),
		InvoiceCount:   len(invoices),
		Monthly:        revenueByMonth(invoices),
		TopServices:    topServices(invoices, topServicesLimit),
	}

	for _, inv := range invoices {
		d.TotalRevenue = d.TotalRevenue.Add(inv.Total)
		if inv.IsPaid() {
			d.PaidCount++
		} else {
			d.UnpaidCount++
			d.Outstanding = d.Outstanding.Add(inv.Total)
		}
	}

	if d.InvoiceCount > 0 {
		d.AverageInvoice = d.TotalRevenue.Div(decimal.NewFromInt(int64(d.InvoiceCount)))
	}

	return d, nil
}

// revenueByMonth skips invoices whose date does not parse
func revenueByMonth(invoices []*domain.Invoice) []MonthRevenue {
	type key struct {
		year  int
		month time.Month
	}
	buckets := make(map[key]decimal.Decimal)

	for _, inv := range invoices {
		date, err := time.Parse(domain.DateLayout, inv.Date)
		if err != nil {
			continue
		}
		k := key{date.Year(), date.Month()}
		buckets[k] = buckets[k].Add(inv.Total)
	}

	out := make([]MonthRevenue, 0, len(buckets))
	for k, amount := range buckets {
		out = append(out, MonthRevenue{Year: k.year, Month: k.month, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// topServices counts line items by description, most used first
func topServices(invoices []*domain.Invoice, limit int) []ServiceCount {
	counts := make(map[string]int)
	for _, inv := range invoices {
		for _, item := range inv.Items {
			if item.Description == "" {
				continue
			}
			counts[item.Description]++
		}
	}

	out := make([]ServiceCount, 0, len(counts))
	for desc, n := range counts {
		out = append(out, ServiceCount{Description: desc, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Description < out[j].Description
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
