package repository

import (
	"time"

	"github.com/google/uuid"
)

// Keys names the store entries each collection is persisted under
type Keys struct {
	Clients  string
	Services string
	Invoices string
	Theme    string
	Company  string
	Draft    string
}

// DefaultKeys returns the store layout with every key prefixed by prefix
func DefaultKeys(prefix string) Keys {
	return Keys{
		Clients:  prefix + "clients",
		Services: prefix + "services",
		Invoices: prefix + "invoices",
		Theme:    prefix + "theme",
		Company:  prefix + "company",
		Draft:    prefix + "invoice_draft",
	}
}

// All returns every key in the layout
func (k Keys) All() []string {
	return []string{k.Clients, k.Services, k.Invoices, k.Theme, k.Company, k.Draft}
}

// now returns the current time without a monotonic reading so stored timestamps
// compare equal after a JSON round trip
func now() time.Time {
	return time.Now().UTC().Round(0)
}

func newID() string {
	return uuid.NewString()
}
