package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andy/billbook/internal/app"
	"github.com/andy/billbook/internal/config"
	"github.com/andy/billbook/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
)

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Store.Path = filepath.Join(dir, "billbook.db")
	cfg.Invoice.OutputDir = filepath.Join(dir, "invoices")
	cfg.Invoice.DefaultTaxRate = decimal.NewFromInt(10)
	cfg.Log.Output = "discard"

	a, err := app.NewInMemory(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewInMemory: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	downKey  = tea.KeyMsg{Type: tea.KeyDown}
)

// step runs a data command and feeds its message back into the model
func step(t *testing.T, m tea.Model, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	_, next := m.Update(cmd())
	return next
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		currency string
		amount   string
		want     string
	}{
		{"Rs.", "0", "Rs. 0.00"},
		{"Rs.", "2750", "Rs. 2,750.00"},
		{"Rs.", "1234567.5", "Rs. 1,234,567.50"},
		{"", "-42.1", "-42.10"},
		{"$", "999.999", "$ 1,000.00"},
	}

	for _, tt := range tests {
		got := formatMoney(tt.currency, decimal.RequireFromString(tt.amount))
		if got != tt.want {
			t.Errorf("formatMoney(%q, %s) = %q, want %q", tt.currency, tt.amount, got, tt.want)
		}
	}
}

func TestTruncateStrCountsRunes(t *testing.T) {
	if got := truncateStr("Café Olé Ltd", 8); got != "Café ..." {
		t.Errorf("truncateStr = %q, want %q", got, "Café ...")
	}
	if got := truncateStr("Café", 4); got != "Café" {
		t.Errorf("truncateStr = %q, want the input unchanged", got)
	}
}

func TestFirstRunOpensClientForm(t *testing.T) {
	a := newTestApp(t)
	m := New(context.Background(), a)

	msg := m.checkFirstRun()()
	updated, cmd := m.Update(msg)
	root := updated.(Model)

	if root.currentScreen != ScreenClients {
		t.Fatalf("screen = %s, want Clients", root.currentScreen)
	}
	if cmd == nil {
		t.Fatal("expected init and open-form commands")
	}
}

func TestThemeChangeRestyles(t *testing.T) {
	t.Cleanup(func() { applyTheme(domain.ThemeLight) })

	a := newTestApp(t)
	m := New(context.Background(), a)

	m.Update(ThemeChangedMsg{Theme: domain.ThemeDark})
	if primaryColor != palettes[domain.ThemeDark].primary {
		t.Errorf("primary colour = %v, want dark palette", primaryColor)
	}

	applyTheme("sepia")
	if primaryColor != palettes[domain.ThemeLight].primary {
		t.Errorf("unknown theme should fall back to light, got %v", primaryColor)
	}
}

func TestGlobalKeysSuppressedWhileFormOpen(t *testing.T) {
	a := newTestApp(t)
	m := New(context.Background(), a)

	updated, _ := m.Update(runes("c"))
	root := updated.(Model)
	if root.currentScreen != ScreenClients {
		t.Fatalf("screen = %s, want Clients", root.currentScreen)
	}

	clients := root.screens[ScreenClients].(*ClientsModel)
	clients.loading = false
	clients.Update(OpenNewClientFormMsg{})
	if !clients.IsCapturingInput() {
		t.Fatal("form should capture input")
	}

	updated, _ = root.Update(runes("s"))
	root = updated.(Model)
	if root.currentScreen != ScreenClients {
		t.Errorf("typing into a form switched screen to %s", root.currentScreen)
	}
	if got := clients.form.Value(fieldName); got != "s" {
		t.Errorf("name field = %q, want %q", got, "s")
	}
}

func TestBuilderFlow(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	client := domain.NewClient("Acme Ltd", "ap@acme.example")
	if err := a.Repo.Clients.Add(ctx, client); err != nil {
		t.Fatalf("add client: %v", err)
	}
	svc := domain.NewService("Web Design", decimal.NewFromInt(500))
	if err := a.Repo.Services.Add(ctx, svc); err != nil {
		t.Fatalf("add service: %v", err)
	}

	b := NewBuilderModel(ctx, a).(*BuilderModel)
	step(t, b, b.Init())
	if b.draft == nil {
		t.Fatal("draft not loaded")
	}

	// Select the client; option 0 is "(no client)"
	_, cmd := b.Update(runes("l"))
	step(t, b, cmd)
	if b.mode != builderModePickClient {
		t.Fatalf("mode = %d, want client picker", b.mode)
	}
	b.Update(downKey)
	_, cmd = b.Update(enterKey)
	step(t, b, cmd)
	if b.draft.ClientSnapshot.Name != "Acme Ltd" {
		t.Fatalf("client = %q, want Acme Ltd", b.draft.ClientSnapshot.Name)
	}

	// Add an item and price it from the service
	_, cmd = b.Update(runes("a"))
	step(t, b, cmd)
	_, cmd = b.Update(runes("v"))
	step(t, b, cmd)
	_, cmd = b.Update(enterKey)
	step(t, b, cmd)

	if len(b.draft.Items) != 1 || b.draft.Items[0].Description != "Web Design" {
		t.Fatalf("items = %+v", b.draft.Items)
	}
	if !b.draft.Total.Equal(decimal.NewFromInt(550)) {
		t.Errorf("live total = %s, want 550", b.draft.Total)
	}
	if !strings.Contains(b.View(), "Rs. 550.00") {
		t.Error("view does not show the live total")
	}

	// Save, then the builder reloads a fresh draft
	_, cmd = b.Update(runes("w"))
	reload := step(t, b, cmd)
	step(t, b, reload)

	invoices, err := a.Repo.Invoices.List(ctx)
	if err != nil {
		t.Fatalf("list invoices: %v", err)
	}
	if len(invoices) != 1 || !invoices[0].Total.Equal(decimal.NewFromInt(550)) {
		t.Fatalf("saved invoices = %+v", invoices)
	}
	if !strings.Contains(b.statusMsg, invoices[0].InvoiceNumber) {
		t.Errorf("status %q does not name the saved invoice", b.statusMsg)
	}
	if len(b.draft.Items) != 0 || b.draft.ClientID != "" {
		t.Errorf("draft not reset after save: %+v", b.draft)
	}
}

func TestBuilderSaveRejectsIncompleteDraft(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	b := NewBuilderModel(ctx, a).(*BuilderModel)
	step(t, b, b.Init())

	_, cmd := b.Update(runes("w"))
	step(t, b, cmd)

	if b.err == nil {
		t.Fatal("expected a validation error")
	}
	invoices, _ := a.Repo.Invoices.List(ctx)
	if len(invoices) != 0 {
		t.Errorf("incomplete draft was saved: %d invoices", len(invoices))
	}
}

func TestInvoicesToggleStatus(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	client := domain.NewClient("Acme Ltd", "ap@acme.example")
	if err := a.Repo.Clients.Add(ctx, client); err != nil {
		t.Fatalf("add client: %v", err)
	}
	if _, err := a.InvoiceService.SelectClient(ctx, client.ID); err != nil {
		t.Fatalf("select client: %v", err)
	}
	if _, err := a.InvoiceService.AddItem(ctx); err != nil {
		t.Fatalf("add item: %v", err)
	}
	saved, err := a.InvoiceService.Save(ctx)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	m := NewInvoicesModel(ctx, a).(*InvoicesModel)
	step(t, m, m.Init())
	if len(m.invoices) != 1 {
		t.Fatalf("loaded %d invoices, want 1", len(m.invoices))
	}

	_, cmd := m.Update(runes("p"))
	reload := step(t, m, cmd)
	step(t, m, reload)

	got, err := a.Repo.Invoices.Get(ctx, saved.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.InvoiceStatusPaid {
		t.Errorf("status = %s, want Paid", got.Status)
	}

	// Filter to unpaid: the paid invoice disappears
	_, cmd = m.Update(runes("f"))
	step(t, m, cmd)
	if len(m.invoices) != 0 {
		t.Errorf("unpaid filter shows %d invoices", len(m.invoices))
	}
}
