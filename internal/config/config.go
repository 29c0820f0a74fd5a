package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g. INVOICER_EXPORT_OUTPUT_DIR
const EnvPrefix = "INVOICER"

type Config struct {
	// Storage settings
	Store StoreConfig `yaml:"store"`

	// Numbering and default adjustments for new drafts
	Invoice InvoiceConfig `yaml:"invoice"`

	// Sender identity printed on every invoice
	Issuer IssuerConfig `yaml:"issuer"`

	Export ExportConfig `yaml:"export"`

	Log LogConfig `yaml:"log"`
}

type StoreConfig struct {
	Path string `yaml:"path" split_words:"true" validate:"required"` // Path to the encrypted SQLite store
}

type InvoiceConfig struct {
	NumberPrefix    string  `yaml:"number_prefix" split_words:"true"`                             // e.g. "INV-"
	StartNumber     int64   `yaml:"start_number" split_words:"true" validate:"gte=1"`             // First number handed out
	DefaultTax      float64 `yaml:"default_tax" split_words:"true" validate:"gte=0,lte=100"`      // Percent
	DefaultDiscount float64 `yaml:"default_discount" split_words:"true" validate:"gte=0,lte=100"` // Percent
}

type IssuerConfig struct {
	Name        string `yaml:"name" split_words:"true"`
	Address     string `yaml:"address" split_words:"true"`
	Email       string `yaml:"email" split_words:"true" validate:"omitempty,email"`
	Intro       string `yaml:"intro" split_words:"true"`
	Footer      string `yaml:"footer" split_words:"true"`
	PaymentNote string `yaml:"payment_note" split_words:"true"`
}

type ExportConfig struct {
	OutputDir   string  `yaml:"output_dir" split_words:"true" validate:"required"`
	Scale       float64 `yaml:"scale" split_words:"true" validate:"gte=1,lte=4"`          // Rasterization scale factor
	JPEGQuality int     `yaml:"jpeg_quality" split_words:"true" validate:"gte=1,lte=100"` // Quality of the image embedded in PDFs
}

type LogConfig struct {
	Level      string `yaml:"level" split_words:"true" validate:"oneof=debug info warn error"`
	File       string `yaml:"file" split_words:"true" validate:"required"`
	MaxSizeMB  int    `yaml:"max_size_mb" split_words:"true" validate:"gte=1"`
	MaxBackups int    `yaml:"max_backups" split_words:"true" validate:"gte=0"`
}

var validate = validator.New()

func baseDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir unavailable
		homeDir = "."
	}
	return filepath.Join(homeDir, ".config", "invoicer")
}

// DefaultConfigPath returns ~/.config/invoicer/config.yaml
func DefaultConfigPath() string {
	return filepath.Join(baseDir(), "config.yaml")
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	dir := baseDir()

	return &Config{
		Store: StoreConfig{
			Path: filepath.Join(dir, "invoicer.db"),
		},
		Invoice: InvoiceConfig{
			NumberPrefix: "INV-",
			StartNumber:  1001,
		},
		Issuer: IssuerConfig{
			Name:        "Your Company",
			Address:     "123 Business Street\nCity, State 12345",
			Email:       "billing@example.com",
			Intro:       "Thank you for choosing us. Please find below the detailed breakdown of services and charges for your order:",
			Footer:      "Thank you for your business!",
			PaymentNote: "The payment link is attached. Once payment is complete, please reply to this email to confirm so we can proceed with the work.",
		},
		Export: ExportConfig{
			OutputDir:   filepath.Join(dir, "exports"),
			Scale:       3,
			JPEGQuality: 95,
		},
		Log: LogConfig{
			Level:      "info",
			File:       filepath.Join(dir, "invoicer.log"),
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Load loads config from the given path, or defaults if the file doesn't exist.
// Environment overrides are applied last, then the result is validated.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDefault loads from the default config path
func LoadDefault() (*Config, error) {
	return Load(DefaultConfigPath())
}

// Validate checks value ranges and required paths
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", strings.TrimPrefix(fe.Namespace(), "Config."), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, ", "))
}

// Save writes the config to the given path
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}

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

// EnsureDirectories creates the store, export and log directories
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{
		filepath.Dir(c.Store.Path),
		c.Export.OutputDir,
		filepath.Dir(c.Log.File),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}
