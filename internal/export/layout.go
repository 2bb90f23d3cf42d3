package export

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andy/billbook/internal/billing"
	"github.com/andy/billbook/internal/domain"
)

// FooterThanks is the first footer line of every document
const FooterThanks = "Thank you for your business!"

// Document is the renderer-independent layout of one invoice page set. Every
// string is final display text.
type Document struct {
	Header  Header
	From    Party
	BillTo  Party
	Columns [4]string
	Rows    []Row
	Totals  []TotalLine
	Notes   string
	Footer  []string

	// Metadata
	Title   string
	Author  string
	Subject string
}

type Header struct {
	Issuer  string
	Title   string
	Number  string
	Date    string
	DueDate string
}

type Party struct {
	Heading string
	Name    string
	Lines   []string
}

type Row struct {
	Description string
	Quantity    string
	Rate        string
	Amount      string
}

type TotalLine struct {
	Label string
	Value string
	Grand bool
}

// Build lays out inv as issued by company. Amounts are prefixed with currency.
// Row amounts are recomputed from quantity and rate; the totals block shows the
// values snapshotted on the invoice.
func Build(inv *domain.Invoice, company domain.CompanyInfo, currency string) (*Document, error) {
	if err := checkExportable(inv); err != nil {
		return nil, err
	}

	doc := &Document{
		Header: Header{
			Issuer:  company.Name,
			Title:   "INVOICE",
			Number:  "#" + inv.InvoiceNumber,
			Date:    "Date: " + inv.Date,
			DueDate: "Due: " + inv.DueDate,
		},
		From: Party{
			Heading: "From",
			Name:    company.Name,
			Lines:   nonEmpty(company.Email, company.Address),
		},
		BillTo: Party{
			Heading: "Bill To",
			Name:    inv.ClientSnapshot.Name,
			Lines:   nonEmpty(inv.ClientSnapshot.Email, inv.ClientSnapshot.Address),
		},
		Columns: [4]string{"Item Description", "Qty", "Rate", "Amount"},
		Rows:    make([]Row, 0, len(inv.Items)),
		Totals: []TotalLine{
			{Label: "Subtotal", Value: billing.FormatMoney(currency, inv.Subtotal)},
			{Label: fmt.Sprintf("Tax (%s%%)", billing.FormatRate(inv.TaxRate)), Value: billing.FormatMoney(currency, inv.TaxAmount)},
			{Label: "Total", Value: billing.FormatMoney(currency, inv.Total), Grand: true},
		},
		Notes:   strings.TrimSpace(inv.Notes),
		Footer:  []string{FooterThanks, footerLine(company)},
		Title:   "Invoice " + inv.InvoiceNumber,
		Author:  company.Name,
		Subject: "Invoice for " + inv.ClientSnapshot.Name,
	}

	for _, item := range inv.Items {
		doc.Rows = append(doc.Rows, Row{
			Description: item.Description,
			Quantity:    strconv.Itoa(item.Quantity),
			Rate:        billing.FormatMoney(currency, item.Rate),
			Amount:      billing.FormatMoney(currency, billing.LineTotal(item)),
		})
	}

	return doc, nil
}

func checkExportable(inv *domain.Invoice) error {
	if inv == nil {
		return fmt.Errorf("%w: no invoice", ErrInvalidInvoice)
	}
	var missing []string
	if strings.TrimSpace(inv.InvoiceNumber) == "" {
		missing = append(missing, "invoice number")
	}
	if strings.TrimSpace(inv.Date) == "" {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(inv.ClientSnapshot.Name) == "" {
		missing = append(missing, "client name")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidInvoice, strings.Join(missing, ", "))
	}
	return nil
}

func footerLine(company domain.CompanyInfo) string {
	if company.Website == "" {
		return company.Name
	}
	return company.Name + " | " + company.Website
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
