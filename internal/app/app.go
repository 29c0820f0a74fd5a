package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"syscall"

	"github.com/shopspring/decimal"
	"golang.org/x/term"

	"github.com/andy/invoicer/internal/config"
	"github.com/andy/invoicer/internal/crypto"
	"github.com/andy/invoicer/internal/db"
	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/export"
	"github.com/andy/invoicer/internal/render"
	"github.com/andy/invoicer/internal/repository"
	"github.com/andy/invoicer/internal/service"
)

// App is the dependency injection container for all application components
type App struct {
	Config     *config.Config
	ConfigPath string
	DB         *db.DB // nil for ephemeral sessions
	Logger     *slog.Logger

	// Repositories
	Store       repository.KVStore
	CounterRepo *repository.CounterRepo
	DraftRepo   repository.DraftRepository
	HistoryRepo repository.HistoryRepository

	// Services
	DraftService   service.DraftService
	HistoryService service.HistoryService
	Exporter       *export.Exporter

	closers []io.Closer
}

// New creates a new App instance, initializing all dependencies
// It handles:
// 1. Loading config
// 2. Getting encryption key from keyring
// 3. Opening the store
// 4. Running migrations
// 5. Creating repositories, services and the exporter
func New(ctx context.Context) (*App, error) {
	cfg, err := config.LoadDefault()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewWithConfig(ctx, cfg)
}

// NewWithConfig creates an App backed by the encrypted SQLite store
func NewWithConfig(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	keyring := crypto.NewKeyring()

	password, err := keyring.GetKey()
	if err != nil {
		fmt.Println("Setting up store encryption for the first time...")
		password, err = promptForPassword()
		if err != nil {
			return nil, fmt.Errorf("failed to set password: %w", err)
		}

		if err := keyring.SetKey(password); err != nil {
			return nil, fmt.Errorf("failed to store encryption key: %w", err)
		}
	}

	database, err := db.Open(cfg.Store.Path, password)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.RunMigrations(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	a := NewWithStore(cfg, repository.NewKVRepo(database), nil)
	a.DB = database
	return a, nil
}

// NewWithStore wires the application over any KVStore. A nil logger logs to
// the configured file.
func NewWithStore(cfg *config.Config, store repository.KVStore, logger *slog.Logger) *App {
	a := &App{
		Config:     cfg,
		ConfigPath: config.DefaultConfigPath(),
		Store:      store,
	}

	if logger == nil {
		var closer io.Closer
		logger, closer = NewLogger(cfg.Log)
		a.closers = append(a.closers, closer)
	}
	a.Logger = logger

	a.CounterRepo = repository.NewCounterRepo(store, cfg.Invoice.StartNumber)
	a.DraftRepo = repository.NewDraftRepo(store)
	a.HistoryRepo = repository.NewHistoryRepo(store)

	a.HistoryService = service.NewHistoryService(a.HistoryRepo, logger.With(slog.String("component", "history")))
	a.DraftService = service.NewDraftService(
		a.DraftRepo,
		a.CounterRepo,
		a.HistoryService,
		service.DraftDefaults{
			NumberPrefix: cfg.Invoice.NumberPrefix,
			Tax:          decimal.NewFromFloat(cfg.Invoice.DefaultTax),
			Discount:     decimal.NewFromFloat(cfg.Invoice.DefaultDiscount),
		},
		logger.With(slog.String("component", "draft")),
	)
	a.Exporter = export.New(export.Options{
		OutputDir:   cfg.Export.OutputDir,
		Scale:       cfg.Export.Scale,
		JPEGQuality: cfg.Export.JPEGQuality,
	}, logger.With(slog.String("component", "export")))

	return a
}

// Issuer returns the sender identity printed on invoices
func (a *App) Issuer() render.Issuer {
	return render.Issuer{
		Name:        a.Config.Issuer.Name,
		Address:     a.Config.Issuer.Address,
		Email:       a.Config.Issuer.Email,
		Intro:       a.Config.Issuer.Intro,
		Footer:      a.Config.Issuer.Footer,
		PaymentNote: a.Config.Issuer.PaymentNote,
	}
}

// RenderDraft renders the given draft with the configured issuer
func (a *App) RenderDraft(d *domain.InvoiceDraft) *render.Page {
	if d == nil {
		return nil
	}
	return render.Render(d, a.Issuer())
}

// RenderCurrent renders the active draft
func (a *App) RenderCurrent(ctx context.Context) (*render.Page, error) {
	d, err := a.DraftService.Current(ctx)
	if err != nil {
		return nil, err
	}
	return a.RenderDraft(d), nil
}

// Close cleanly shuts down the application
func (a *App) Close() error {
	for _, c := range a.closers {
		c.Close()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// SaveConfig writes the current configuration to disk and applies the
// settings that can change at runtime
func (a *App) SaveConfig() error {
	if err := a.Config.Save(a.ConfigPath); err != nil {
		return err
	}
	a.Exporter.SetOutputDir(a.Config.Export.OutputDir)
	return nil
}

// promptForPassword prompts user for a new store password (first run)
// This should be called when keyring has no stored key
func promptForPassword() (string, error) {
	fmt.Println()
	fmt.Println("Your invoices will be encrypted with a password.")
	fmt.Println("This password will be stored securely in your system keyring.")
	fmt.Println()
	fmt.Print("Enter a password for store encryption: ")

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
