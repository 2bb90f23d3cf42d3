package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/andy/billbook/internal/billing"
	"github.com/andy/billbook/internal/domain"
	"github.com/shopspring/decimal"
)

// shortIDLen is how much of a record ID list views print
const shortIDLen = 8

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

// truncate shortens s to maxLen runes
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

func money(d decimal.Decimal) string {
	return billing.FormatMoney(appInstance.Config.Invoice.Currency, d)
}

// resolve finds one record by full ID, case-insensitive name, or unique ID prefix
func resolve[T any](items []*T, ref, kind string, idOf func(*T) string, nameOf func(*T) string) (*T, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%s reference is empty", kind)
	}

	for _, it := range items {
		if idOf(it) == ref {
			return it, nil
		}
	}

	var byName []*T
	for _, it := range items {
		if strings.EqualFold(nameOf(it), ref) {
			byName = append(byName, it)
		}
	}
	switch len(byName) {
	case 1:
		return byName[0], nil
	case 0:
	default:
		return nil, fmt.Errorf("%d %ss are named %q; use the ID instead", len(byName), kind, ref)
	}

	var byPrefix []*T
	for _, it := range items {
		if strings.HasPrefix(idOf(it), ref) {
			byPrefix = append(byPrefix, it)
		}
	}
	switch len(byPrefix) {
	case 1:
		return byPrefix[0], nil
	case 0:
		return nil, fmt.Errorf("%s %q not found", kind, ref)
	default:
		return nil, fmt.Errorf("%s ID prefix %q is ambiguous", kind, ref)
	}
}

func resolveClient(ctx context.Context, ref string) (*domain.Client, error) {
	clients, err := appInstance.Repo.Clients.List(ctx)
	if err != nil {
		return nil, err
	}
	return resolve(clients, ref, "client",
		func(c *domain.Client) string { return c.ID },
		func(c *domain.Client) string { return c.Name },
	)
}

func resolveService(ctx context.Context, ref string) (*domain.Service, error) {
	services, err := appInstance.Repo.Services.List(ctx)
	if err != nil {
		return nil, err
	}
	return resolve(services, ref, "service",
		func(s *domain.Service) string { return s.ID },
		func(s *domain.Service) string { return s.Name },
	)
}

// resolveInvoice accepts an ID, ID prefix, or invoice number
func resolveInvoice(ctx context.Context, ref string) (*domain.Invoice, error) {
	invoices, err := appInstance.Repo.Invoices.List(ctx)
	if err != nil {
		return nil, err
	}
	return resolve(invoices, ref, "invoice",
		func(i *domain.Invoice) string { return i.ID },
		func(i *domain.Invoice) string { return i.InvoiceNumber },
	)
}

// resolveItem accepts a 1-based row number or a line item ID (prefix)
func resolveItem(draft *domain.Invoice, ref string) (string, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(draft.Items) {
			return "", fmt.Errorf("item %d out of range (draft has %d items)", n, len(draft.Items))
		}
		return draft.Items[n-1].ID, nil
	}

	items := make([]*domain.LineItem, len(draft.Items))
	for i := range draft.Items {
		items[i] = &draft.Items[i]
	}
	item, err := resolve(items, ref, "line item",
		func(li *domain.LineItem) string { return li.ID },
		func(li *domain.LineItem) string { return li.Description },
	)
	if err != nil {
		return "", err
	}
	return item.ID, nil
}

// parseDate accepts YYYY-MM-DD, "today", "tomorrow", or "+N" days from today
func parseDate(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "today":
		return now.Format(domain.DateLayout), nil
	case s == "tomorrow":
		return now.AddDate(0, 0, 1).Format(domain.DateLayout), nil
	case strings.HasPrefix(s, "+"):
		days, err := strconv.Atoi(s[1:])
		if err != nil {
			return "", fmt.Errorf("expected +N days, got %q", s)
		}
		return now.AddDate(0, 0, days).Format(domain.DateLayout), nil
	default:
		if _, err := time.Parse(domain.DateLayout, s); err != nil {
			return "", fmt.Errorf("expected format: YYYY-MM-DD, 'today', 'tomorrow', or '+N'")
		}
		return s, nil
	}
}

func parseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

// stringFlag returns a pointer to the flag value when it was set on the command line
func stringFlag(changed bool, value string) *string {
	if !changed {
		return nil
	}
	return &value
}
