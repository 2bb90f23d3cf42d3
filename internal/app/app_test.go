package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/andy/billbook/internal/config"
	"github.com/andy/billbook/internal/crypto"
	"github.com/andy/billbook/internal/domain"
	"github.com/andy/billbook/internal/export"
	"github.com/shopspring/decimal"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.DefaultConfig()
	cfg.Store.Path = filepath.Join(dir, "billbook.db")
	cfg.Invoice.OutputDir = filepath.Join(dir, "invoices")
	cfg.Invoice.DefaultTaxRate = decimal.NewFromInt(10)
	cfg.Log.Output = "discard"
	return cfg
}

func TestInMemoryInvoiceFlow(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	a, err := NewInMemory(ctx, cfg)
	if err != nil {
		t.Fatalf("NewInMemory: %v", err)
	}
	defer a.Close()

	client := domain.NewClient("Acme Ltd", "ap@acme.example")
	if err := a.Repo.Clients.Add(ctx, client); err != nil {
		t.Fatalf("add client: %v", err)
	}
	svc := domain.NewService("Design", decimal.NewFromInt(500))
	if err := a.Repo.Services.Add(ctx, svc); err != nil {
		t.Fatalf("add service: %v", err)
	}

	if _, err := a.InvoiceService.SelectClient(ctx, client.ID); err != nil {
		t.Fatalf("select client: %v", err)
	}
	draft, err := a.InvoiceService.AddItem(ctx)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if !draft.TaxRate.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("configured default tax rate not applied: %s", draft.TaxRate)
	}
	if _, err := a.InvoiceService.ApplyService(ctx, draft.Items[0].ID, svc.ID); err != nil {
		t.Fatalf("apply service: %v", err)
	}

	inv, err := a.InvoiceService.Save(ctx)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !inv.Total.Equal(decimal.NewFromInt(550)) {
		t.Fatalf("expected total 550, got %s", inv.Total)
	}

	res, err := a.InvoiceService.ExportInvoice(ctx, inv.ID, export.Request{Mode: export.ModeFile, Dir: cfg.Invoice.OutputDir})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("export is not a PDF")
	}

	keys, _ := a.Store.Keys(ctx)
	for _, k := range keys {
		if len(k) < 3 || k[:3] != "bb_" {
			t.Fatalf("store key %q is missing the configured prefix", k)
		}
	}
}

func TestInMemoryUsesConfiguredCompany(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.Company.Name = "Studio Nine"

	a, err := NewInMemory(ctx, cfg)
	if err != nil {
		t.Fatalf("NewInMemory: %v", err)
	}
	defer a.Close()

	info, err := a.Repo.Settings.Company(ctx)
	if err != nil || info.Name != "Studio Nine" {
		t.Fatalf("expected configured company, got %+v (%v)", info, err)
	}
}

func TestNewUsesGivenConfigFileAndEncryptsStore(t *testing.T) {
	ctx := context.Background()
	t.Setenv(crypto.EnvKey, "secret")

	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("save config: %v", err)
	}

	a, err := New(ctx, path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.Repo.Clients.Add(ctx, domain.NewClient("Acme Ltd", "ap@acme.example")); err != nil {
		t.Fatalf("add client: %v", err)
	}

	a.Config.Invoice.Currency = "$"
	if err := a.SaveConfig(); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reloaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if reloaded.Invoice.Currency != "$" {
		t.Errorf("currency = %q, want the saved value", reloaded.Invoice.Currency)
	}

	data, err := os.ReadFile(cfg.Store.Path)
	if err != nil {
		t.Fatalf("read store: %v", err)
	}
	if bytes.HasPrefix(data, []byte("SQLite format 3")) || bytes.Contains(data, []byte("Acme Ltd")) {
		t.Error("store file is not encrypted")
	}
}

func TestInMemorySaveConfigWritesNothing(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "config.yaml")
	t.Setenv(config.EnvConfigPath, path)

	a, err := NewInMemory(ctx, testConfig(t))
	if err != nil {
		t.Fatalf("NewInMemory: %v", err)
	}
	defer a.Close()

	a.Config.Invoice.NumberPrefix = "TMP"
	if err := a.SaveConfig(); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("in-memory run wrote %s (stat err %v)", path, err)
	}
}
