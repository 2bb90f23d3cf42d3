package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/andy/billbook/internal/billing"
	"github.com/andy/billbook/internal/domain"
	"github.com/shopspring/decimal"
)

var company = domain.CompanyInfo{
	Name:    "DF Creatives",
	Email:   "hello@df.example",
	Address: "1 Studio Lane",
	Website: "df.example",
}

func sampleInvoice(items ...domain.LineItem) *domain.Invoice {
	inv := &domain.Invoice{
		InvoiceNumber: "INV-123456",
		Date:          "2026-01-15",
		DueDate:       "2026-01-29",
		ClientID:      "c1",
		ClientSnapshot: domain.ClientSnapshot{
			Name:    "Acme Ltd",
			Email:   "ap@acme.example",
			Address: "12 Long Street",
		},
		Items:   items,
		Notes:   "Thank you for your business!",
		TaxRate: decimal.NewFromInt(10),
		Status:  domain.InvoiceStatusUnpaid,
	}
	billing.Compute(inv.Items, inv.TaxRate).Apply(inv)
	return inv
}

func item(desc string, qty int, rate int64) domain.LineItem {
	return domain.LineItem{ID: desc, Description: desc, Quantity: qty, Rate: decimal.NewFromInt(rate)}
}

type failingRenderer struct{}

func (failingRenderer) Render(w io.Writer, doc *Document) error {
	_, _ = w.Write([]byte("%PDF-partial"))
	return errors.New("out of ink")
}

func TestBuildEmptyItems(t *testing.T) {
	doc, err := Build(sampleInvoice(), company, "Rs.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(doc.Rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(doc.Rows))
	}
	for _, line := range doc.Totals {
		if line.Value != "Rs. 0.00" {
			t.Errorf("%s: expected Rs. 0.00, got %q", line.Label, line.Value)
		}
	}
}

func TestBuildContent(t *testing.T) {
	inv := sampleInvoice(item("Design", 2, 500), item("Logo", 1, 1500))
	doc, err := Build(inv, company, "Rs.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Header.Issuer != "DF Creatives" || doc.Header.Title != "INVOICE" || doc.Header.Number != "#INV-123456" {
		t.Errorf("unexpected header: %+v", doc.Header)
	}
	if doc.Header.Date != "Date: 2026-01-15" || doc.Header.DueDate != "Due: 2026-01-29" {
		t.Errorf("unexpected header dates: %+v", doc.Header)
	}
	if doc.BillTo.Name != "Acme Ltd" || len(doc.BillTo.Lines) != 2 {
		t.Errorf("unexpected bill-to: %+v", doc.BillTo)
	}

	wantRows := []Row{
		{Description: "Design", Quantity: "2", Rate: "Rs. 500.00", Amount: "Rs. 1000.00"},
		{Description: "Logo", Quantity: "1", Rate: "Rs. 1500.00", Amount: "Rs. 1500.00"},
	}
	if len(doc.Rows) != len(wantRows) {
		t.Fatalf("expected %d rows, got %d", len(wantRows), len(doc.Rows))
	}
	for i, want := range wantRows {
		if doc.Rows[i] != want {
			t.Errorf("row %d: expected %+v, got %+v", i, want, doc.Rows[i])
		}
	}

	wantTotals := []TotalLine{
		{Label: "Subtotal", Value: "Rs. 2500.00"},
		{Label: "Tax (10%)", Value: "Rs. 250.00"},
		{Label: "Total", Value: "Rs. 2750.00", Grand: true},
	}
	for i, want := range wantTotals {
		if doc.Totals[i] != want {
			t.Errorf("totals %d: expected %+v, got %+v", i, want, doc.Totals[i])
		}
	}

	if doc.Footer[0] != FooterThanks || doc.Footer[1] != "DF Creatives | df.example" {
		t.Errorf("unexpected footer: %v", doc.Footer)
	}
}

func TestBuildUsesSnapshottedTotals(t *testing.T) {
	inv := sampleInvoice(item("Design", 2, 500))
	// Stored totals are displayed as-is even if the items no longer add up
	inv.Subtotal = decimal.NewFromInt(900)

	doc, err := Build(inv, company, "$")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Totals[0].Value != "$ 900.00" {
		t.Fatalf("expected snapshotted subtotal, got %q", doc.Totals[0].Value)
	}
	if doc.Rows[0].Amount != "$ 1000.00" {
		t.Fatalf("expected recomputed row amount, got %q", doc.Rows[0].Amount)
	}
}

func TestBuildRejectsIncompleteInvoice(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.Invoice)
	}{
		{"no number", func(i *domain.Invoice) { i.InvoiceNumber = "" }},
		{"no date", func(i *domain.Invoice) { i.Date = "" }},
		{"no client name", func(i *domain.Invoice) { i.ClientSnapshot.Name = " " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := sampleInvoice(item("Design", 1, 100))
			tt.mutate(inv)
			if _, err := Build(inv, company, "Rs."); !errors.Is(err, ErrInvalidInvoice) {
				t.Fatalf("expected ErrInvalidInvoice, got %v", err)
			}
		})
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		client, date, want string
	}{
		{"Acme Ltd", "2026-01-15", "Acme_Ltd_2026-01-15.pdf"},
		{"Acme   \t Ltd", "2026-01-15", "Acme_Ltd_2026-01-15.pdf"},
		{"AC/DC: Live?", "2026-01-15", "AC_DC__Live__2026-01-15.pdf"},
		{"", "2026-01-15", "invoice_2026-01-15.pdf"},
		{"  Acme ", "2026-01-15", "Acme_2026-01-15.pdf"},
		{"   ", "2026-01-15", "invoice_2026-01-15.pdf"},
	}

	for _, tt := range tests {
		if got := Filename(tt.client, tt.date); got != tt.want {
			t.Errorf("Filename(%q, %q) = %q, want %q", tt.client, tt.date, got, tt.want)
		}
	}
}

func TestBlobIsPDF(t *testing.T) {
	e := New()
	data, err := e.Blob(context.Background(), sampleInvoice(item("Design", 2, 500)), company)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF: %q", data[:min(len(data), 16)])
	}
}

func TestBlobPaginatesLongInvoices(t *testing.T) {
	items := make([]domain.LineItem, 0, 80)
	for i := 0; i < 80; i++ {
		items = append(items, item(fmt.Sprintf("Item %d", i), 1, 10))
	}

	data, err := New().Blob(context.Background(), sampleInvoice(items...), company)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output is not a PDF")
	}
}

func TestFileWritesNamedPDF(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	path, err := New().File(context.Background(), dir, sampleInvoice(item("Design", 2, 500)), company)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(path) != "Acme_Ltd_2026-01-15.pdf" {
		t.Fatalf("unexpected path %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("file is not a PDF")
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected only the PDF in %s, got %d entries", dir, len(entries))
	}
}

func TestFileLeavesNothingOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		invoice *domain.Invoice
		wantErr error
	}{
		{
			name:    "render failure",
			opts:    []Option{WithRenderer(failingRenderer{})},
			invoice: sampleInvoice(item("Design", 1, 100)),
			wantErr: ErrRender,
		},
		{
			name: "invalid invoice",
			invoice: func() *domain.Invoice {
				inv := sampleInvoice(item("Design", 1, 100))
				inv.InvoiceNumber = ""
				return inv
			}(),
			wantErr: ErrInvalidInvoice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			_, err := New(tt.opts...).File(context.Background(), dir, tt.invoice, company)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}

			entries, _ := os.ReadDir(dir)
			if len(entries) != 0 {
				t.Fatalf("expected empty directory, found %d entries", len(entries))
			}
		})
	}
}

func TestExportChecksContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Export(ctx, sampleInvoice(), company, Request{Mode: ModeBlob})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("BLOB"); err != nil || m != ModeBlob {
		t.Fatalf("expected blob, got %v (%v)", m, err)
	}
	if m, err := ParseMode(""); err != nil || m != ModeFile {
		t.Fatalf("expected file default, got %v (%v)", m, err)
	}
	if _, err := ParseMode("fax"); err == nil {
		t.Fatalf("expected error")
	}
}
