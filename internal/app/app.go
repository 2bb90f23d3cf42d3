package app

import (
	"context"
	"fmt"
	"io"
	"syscall"

	"github.com/andy/billbook/internal/config"
	"github.com/andy/billbook/internal/crypto"
	"github.com/andy/billbook/internal/db"
	"github.com/andy/billbook/internal/domain"
	"github.com/andy/billbook/internal/export"
	"github.com/andy/billbook/internal/logger"
	"github.com/andy/billbook/internal/repository"
	"github.com/andy/billbook/internal/service"
	"github.com/andy/billbook/internal/store"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// App is the dependency injection container for all application components
type App struct {
	Config *config.Config
	DB     *db.DB // nil for in-memory runs
	Store  store.Store
	Log    zerolog.Logger

	// Repositories
	Repo *repository.Repo

	// Services
	InvoiceService service.InvoiceService
	ReportService  service.ReportService
	Exporter       *export.Exporter

	configPath string
	logCloser  io.Closer
}

// New creates a new App instance, initializing all dependencies
// It handles:
// 1. Loading config
// 2. Setting up logging
// 3. Getting the store key from the keyring (prompting on first run)
// 4. Opening the encrypted store and running migrations
// 5. Loading the repository
// 6. Creating services and the exporter
func New(ctx context.Context, configPath string) (*App, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	a, err := NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.configPath = path
	return a, nil
}

// NewWithConfig creates an App backed by the encrypted SQLite store at cfg.Store.Path
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	logCloser, err := logger.Setup(logConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	log := logger.WithComponent("app")

	password, err := crypto.Resolve(crypto.NewKeyring(), promptForPassword)
	if err != nil {
		logCloser.Close()
		return nil, err
	}

	database, err := db.Open(cfg.Store.Path, password)
	if err != nil {
		logCloser.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.RunMigrations(); err != nil {
		database.Close()
		logCloser.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	a, err := build(ctx, cfg, store.NewSQLite(database), log)
	if err != nil {
		database.Close()
		logCloser.Close()
		return nil, err
	}
	a.DB = database
	a.logCloser = logCloser

	log.Info().Str("path", cfg.Store.Path).Msg("store opened")
	return a, nil
}

// NewInMemory creates an App whose data lives only as long as the process
func NewInMemory(ctx context.Context, cfg *config.Config) (*App, error) {
	logCloser, err := logger.Setup(logConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	a, err := build(ctx, cfg, store.NewMemory(), logger.WithComponent("app"))
	if err != nil {
		logCloser.Close()
		return nil, err
	}
	a.logCloser = logCloser
	return a, nil
}

func build(ctx context.Context, cfg *config.Config, st store.Store, log zerolog.Logger) (*App, error) {
	repo, err := repository.Open(ctx, st,
		repository.WithKeys(repository.DefaultKeys(cfg.Store.KeyPrefix)),
		repository.WithLogger(logger.GetLogger()),
		repository.WithDefaultCompany(domain.CompanyInfo{
			Name:    cfg.Company.Name,
			Email:   cfg.Company.Email,
			Address: cfg.Company.Address,
			Website: cfg.Company.Website,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load data: %w", err)
	}

	exporter := export.New(
		export.WithCurrency(cfg.Invoice.Currency),
		export.WithLogger(logger.WithComponent("export")),
	)

	invoiceService := service.NewInvoiceService(
		repo.Invoices,
		repo.Clients,
		repo.Services,
		repo.Settings,
		exporter,
		service.Defaults{
			DueDays:      cfg.Invoice.DefaultDueDays,
			TaxRate:      cfg.Invoice.DefaultTaxRate,
			NumberPrefix: cfg.Invoice.NumberPrefix,
		},
		logger.WithComponent("invoices"),
	)
	reportService := service.NewReportService(repo.Clients, repo.Invoices)

	return &App{
		Config:         cfg,
		Store:          st,
		Log:            log,
		Repo:           repo,
		InvoiceService: invoiceService,
		ReportService:  reportService,
		Exporter:       exporter,
	}, nil
}

func logConfig(cfg *config.Config) logger.LogConfig {
	lc := logger.DefaultConfig()
	if cfg.Log.Level != "" {
		lc.Level = cfg.Log.Level
	}
	if cfg.Log.Format != "" {
		lc.Format = cfg.Log.Format
	}
	if cfg.Log.Output != "" {
		lc.Output = cfg.Log.Output
	}
	return lc
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	var err error
	if a.DB != nil {
		err = a.DB.Close()
	}
	if a.logCloser != nil {
		if cerr := a.logCloser.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// promptForPassword prompts user for a new store password (first run)
// This should be called when keyring has no stored key
func promptForPassword() (string, error) {
	fmt.Println("Setting up store encryption for the first time...")
	fmt.Println()
	fmt.Println("Your invoices and clients will be encrypted with a password.")
	fmt.Println("This password will be stored securely in your system keyring.")
	fmt.Println()
	fmt.Print("Enter a password for store encryption: ")

	// Read password securely (no echo)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	if len(password) == 0 {
		return "", fmt.Errorf("password cannot be empty")
	}

	fmt.Print("Confirm password: ")
	confirm, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}

	if string(password) != string(confirm) {
		return "", fmt.Errorf("passwords do not match")
	}

	fmt.Println()
	fmt.Println("✓ Store encryption configured successfully")
	fmt.Println()

	return string(password), nil
}

// SaveConfig saves the current configuration to the file it was loaded from.
// Apps without a config file (in-memory runs, NewWithConfig) keep changes in memory only.
func (a *App) SaveConfig() error {
	if a.configPath == "" {
		a.Log.Debug().Msg("no config file; settings kept for this run only")
		return nil
	}
	return a.Config.Save(a.configPath)
}
