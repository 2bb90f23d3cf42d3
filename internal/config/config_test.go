package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Invoice.DefaultDueDays != 14 {
		t.Errorf("expected 14 due days, got %d", cfg.Invoice.DefaultDueDays)
	}
	if cfg.Invoice.Currency != "Rs." {
		t.Errorf("expected Rs. currency, got %q", cfg.Invoice.Currency)
	}
	if cfg.Store.KeyPrefix != "bb_" {
		t.Errorf("expected bb_ prefix, got %q", cfg.Store.KeyPrefix)
	}
	if !cfg.Invoice.DefaultTaxRate.IsZero() {
		t.Errorf("expected zero default tax rate, got %s", cfg.Invoice.DefaultTaxRate)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
invoice:
  default_tax_rate: 18
  currency: "$"
company:
  name: Acme Studio
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !cfg.Invoice.DefaultTaxRate.Equal(decimal.NewFromInt(18)) {
		t.Errorf("expected tax rate 18, got %s", cfg.Invoice.DefaultTaxRate)
	}
	if cfg.Invoice.Currency != "$" {
		t.Errorf("expected $ currency, got %q", cfg.Invoice.Currency)
	}
	if cfg.Company.Name != "Acme Studio" {
		t.Errorf("expected company name override, got %q", cfg.Company.Name)
	}
	if cfg.Invoice.DefaultDueDays != 14 || cfg.Invoice.NumberPrefix != "INV" {
		t.Errorf("defaults lost: %+v", cfg.Invoice)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"negative due days", "invoice:\n  default_due_days: -1\n"},
		{"negative tax", "invoice:\n  default_tax_rate: -5\n"},
		{"bad yaml", "invoice: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("write: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Invoice.DefaultTaxRate = decimal.RequireFromString("8.25")
	cfg.Company.Website = "acme.io"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !loaded.Invoice.DefaultTaxRate.Equal(cfg.Invoice.DefaultTaxRate) {
		t.Errorf("tax rate not preserved: %s", loaded.Invoice.DefaultTaxRate)
	}
	if loaded.Company.Website != "acme.io" {
		t.Errorf("website not preserved: %q", loaded.Company.Website)
	}
}

func TestDefaultConfigPathHonoursEnv(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/custom.yaml")
	if got := DefaultConfigPath(); got != "/tmp/custom.yaml" {
		t.Fatalf("expected env override, got %q", got)
	}
}
