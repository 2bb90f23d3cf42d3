package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the config file location
const EnvConfigPath = "BILLBOOK_CONFIG"

type Config struct {
	// Store settings
	Store StoreConfig `yaml:"store"`

	// Invoice settings
	Invoice InvoiceConfig `yaml:"invoice"`

	// Company profile used until one is saved
	Company CompanyConfig `yaml:"company"`

	// Logging
	Log LogConfig `yaml:"log"`
}

type StoreConfig struct {
	Path      string `yaml:"path"`       // Path to the encrypted SQLite file
	KeyPrefix string `yaml:"key_prefix"` // Prefix applied to every store key
}

type InvoiceConfig struct {
	DefaultDueDays int             `yaml:"default_due_days"` // Days until invoice due
	DefaultTaxRate decimal.Decimal `yaml:"default_tax_rate"` // Tax rate as a percentage (18 = 18%)
	OutputDir      string          `yaml:"output_dir"`       // Directory for exported PDFs
	NumberPrefix   string          `yaml:"number_prefix"`    // Invoice number prefix (e.g., "INV")
	Currency       string          `yaml:"currency"`         // Money prefix (e.g., "Rs.")
}

type CompanyConfig struct {
	Name    string `yaml:"name"`
	Email   string `yaml:"email"`
	Address string `yaml:"address"`
	Website string `yaml:"website"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // trace, debug, info, warn, error
	Format string `yaml:"format"` // console or json
	Output string `yaml:"output"` // stderr, stdout, discard, or a file path
}

// baseDir returns ~/.config/billbook
func baseDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		return filepath.Join(".", ".config", "billbook")
	}
	return filepath.Join(homeDir, ".config", "billbook")
}

// DefaultConfigPath returns $BILLBOOK_CONFIG or ~/.config/billbook/config.yaml
func DefaultConfigPath() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	return filepath.Join(baseDir(), "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	dir := baseDir()

	return &Config{
		Store: StoreConfig{
			Path:      filepath.Join(dir, "billbook.db"),
			KeyPrefix: "bb_",
		},
		Invoice: InvoiceConfig{
			DefaultDueDays: 14,
			DefaultTaxRate: decimal.Zero,
			OutputDir:      filepath.Join(dir, "invoices"),
			NumberPrefix:   "INV",
			Currency:       "Rs.",
		},
		Company: CompanyConfig{
			Name:    "Your Company",
			Email:   "contact@yourcompany.com",
			Address: "123 Business St, City",
			Website: "www.yourcompany.com",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
			Output: filepath.Join(dir, "billbook.log"),
		},
	}
}

// Load loads config from the given path, or returns defaults if file doesn't exist
func Load(path string) (*Config, error) {
	// If file doesn't exist, return defaults
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Fields missing from the file keep their defaults
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail later in confusing ways
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Store.Path) == "" {
		return errors.New("store.path is required")
	}
	if c.Invoice.DefaultDueDays < 0 {
		return errors.New("invoice.default_due_days cannot be negative")
	}
	if c.Invoice.DefaultTaxRate.IsNegative() {
		return errors.New("invoice.default_tax_rate cannot be negative")
	}
	return nil
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// EnsureDirectories creates all necessary directories (for store, invoices, etc.)
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(filepath.Dir(c.Store.Path), 0755); err != nil {
		return err
	}

	if err := os.MkdirAll(c.Invoice.OutputDir, 0755); err != nil {
		return err
	}

	return nil
}
