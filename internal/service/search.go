package service

import (
	"strings"

	"github.com/andy/billbook/internal/domain"
)

// matches reports whether any field contains query, ignoring case. An empty query
// matches everything.
func matches(query string, fields ...string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

// FilterClients keeps clients whose name or email contains query
func FilterClients(clients []*domain.Client, query string) []*domain.Client {
	out := make([]*domain.Client, 0, len(clients))
	for _, c := range clients {
		if matches(query, c.Name, c.Email) {
			out = append(out, c)
		}
	}
	return out
}

// FilterServices keeps services whose name or description contains query
func FilterServices(services []*domain.Service, query string) []*domain.Service {
	out := make([]*domain.Service, 0, len(services))
	for _, s := range services {
		if matches(query, s.Name, s.Description) {
			out = append(out, s)
		}
	}
	return out
}

// FilterInvoices keeps invoices whose client name or number contains query
func FilterInvoices(invoices []*domain.Invoice, query string) []*domain.Invoice {
	out := make([]*domain.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if matches(query, inv.ClientSnapshot.Name, inv.InvoiceNumber) {
			out = append(out, inv)
		}
	}
	return out
}
