package domain

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestInvoiceStatusToggle(t *testing.T) {
	s := InvoiceStatusUnpaid

	s = s.Toggle()
	if s != InvoiceStatusPaid {
		t.Fatalf("expected Paid after first toggle, got %q", s)
	}

	s = s.Toggle()
	if s != InvoiceStatusUnpaid {
		t.Fatalf("expected Unpaid after second toggle, got %q", s)
	}
}

func TestParseInvoiceStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    InvoiceStatus
		wantErr bool
	}{
		{"paid", InvoiceStatusPaid, false},
		{"Unpaid", InvoiceStatusUnpaid, false},
		{" PAID ", InvoiceStatusPaid, false},
		{"overdue", "", true},
	}

	for _, tt := range tests {
		got, err := ParseInvoiceStatus(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseInvoiceStatus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("ParseInvoiceStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClientValidate(t *testing.T) {
	tests := []struct {
		name    string
		client  *Client
		wantErr string
	}{
		{"valid", NewClient("Acme", "a@acme.com"), ""},
		{"missing name", NewClient("  ", "a@acme.com"), "name is required"},
		{"missing email", NewClient("Acme", ""), "email is required"},
		{"bad email", NewClient("Acme", "not-an-email"), "not a valid email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.client.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestServiceValidateRejectsNegativePrice(t *testing.T) {
	s := NewService("Design", decimal.NewFromInt(-1))
	if err := s.Validate(); err == nil {
		t.Fatalf("expected error for negative price")
	}

	s.Price = decimal.Zero
	if err := s.Validate(); err != nil {
		t.Fatalf("zero price should be valid: %v", err)
	}
}

func TestClientPatchEmptyLeavesClientUnchanged(t *testing.T) {
	c := Client{ID: "c1", Name: "Acme", Email: "a@acme.com", Phone: "123"}
	before := c

	patch := ClientPatch{}
	if !patch.IsEmpty() {
		t.Fatalf("zero patch should be empty")
	}
	patch.Apply(&c)

	if c != before {
		t.Fatalf("empty patch changed client: %+v -> %+v", before, c)
	}
}

func TestLineItemApplyServiceIsOneTimeCopy(t *testing.T) {
	svc := NewService("Logo design", decimal.NewFromInt(1500))
	svc.ID = "s1"

	item := NewLineItem("i1")
	item.ApplyService(svc)

	if item.ServiceID != "s1" || item.Description != "Logo design" || !item.Rate.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("service not applied: %+v", item)
	}

	// Changing the service later must not reach the item
	svc.Name = "Renamed"
	svc.Price = decimal.NewFromInt(9)
	if item.Description != "Logo design" || !item.Rate.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("item followed service change: %+v", item)
	}
}

func TestInvoiceSetClientSnapshotIsFrozen(t *testing.T) {
	c := &Client{ID: "c1", Name: "Acme", Email: "a@acme.com", Address: "1 Road"}
	inv := &Invoice{}
	inv.SetClient(c)

	c.Name = "Acme Renamed"
	c.Address = "2 Road"

	if inv.ClientSnapshot.Name != "Acme" || inv.ClientSnapshot.Address != "1 Road" {
		t.Fatalf("snapshot followed client change: %+v", inv.ClientSnapshot)
	}
	if inv.ClientID != "c1" {
		t.Fatalf("expected client id c1, got %q", inv.ClientID)
	}
}

func TestInvoiceCloneDoesNotShareItems(t *testing.T) {
	inv := &Invoice{Items: []LineItem{{ID: "a", Quantity: 1}}}
	cp := inv.Clone()
	cp.Items[0].Quantity = 5

	if inv.Items[0].Quantity != 1 {
		t.Fatalf("clone shares item storage")
	}
}

func TestInvoiceValidateForSave(t *testing.T) {
	base := func() *Invoice {
		return &Invoice{
			InvoiceNumber: "INV-000001",
			Date:          "2026-01-15",
			DueDate:       "2026-01-29",
			ClientID:      "c1",
			Items:         []LineItem{{ID: "i1", Quantity: 1, Rate: decimal.NewFromInt(10)}},
		}
	}

	if err := base().ValidateForSave(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	noClient := base()
	noClient.ClientID = ""
	if err := noClient.ValidateForSave(); err == nil {
		t.Fatalf("expected error without client")
	}

	noItems := base()
	noItems.Items = nil
	if err := noItems.ValidateForSave(); err == nil {
		t.Fatalf("expected error without items")
	}

	badDate := base()
	badDate.Date = "15/01/2026"
	if err := badDate.ValidateForSave(); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}

func TestThemeToggleAndParse(t *testing.T) {
	if ThemeLight.Toggle() != ThemeDark || ThemeDark.Toggle() != ThemeLight {
		t.Fatalf("theme toggle is not symmetric")
	}
	if _, err := ParseTheme("sepia"); err == nil {
		t.Fatalf("expected error for unknown theme")
	}
	if th, err := ParseTheme("Dark"); err != nil || th != ThemeDark {
		t.Fatalf("ParseTheme(Dark) = %q, %v", th, err)
	}
}
