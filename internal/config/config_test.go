package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "INV-", cfg.Invoice.NumberPrefix)
	assert.EqualValues(t, 1001, cfg.Invoice.StartNumber)
	assert.Equal(t, 3.0, cfg.Export.Scale)
	assert.Equal(t, 95, cfg.Export.JPEGQuality)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
issuer:
  name: Fox Studio
  email: hi@fox.test
export:
  output_dir: /tmp/fox
  scale: 2
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))
	t.Setenv("INVOICER_EXPORT_OUTPUT_DIR", "/tmp/override")
	t.Setenv("INVOICER_INVOICE_START_NUMBER", "5000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Fox Studio", cfg.Issuer.Name)
	assert.Equal(t, 2.0, cfg.Export.Scale)
	assert.Equal(t, "/tmp/override", cfg.Export.OutputDir)
	assert.EqualValues(t, 5000, cfg.Invoice.StartNumber)
	// untouched sections keep their defaults
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("export:\n  scale: 9\n  jpeg_quality: 0\n"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Export.Scale")
	assert.Contains(t, err.Error(), "Export.JPEGQuality")
}

func TestValidate_IssuerEmail(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Issuer.Email = "not-an-email"
	assert.Error(t, cfg.Validate())

	cfg.Issuer.Email = ""
	assert.NoError(t, cfg.Validate())
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Issuer.Name = "Fox Studio"
	cfg.Export.OutputDir = filepath.Join(dir, "out")
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Issuer, loaded.Issuer)
	assert.Equal(t, cfg.Export, loaded.Export)
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Store.Path = filepath.Join(dir, "store", "invoicer.db")
	cfg.Export.OutputDir = filepath.Join(dir, "exports")
	cfg.Log.File = filepath.Join(dir, "logs", "invoicer.log")

	require.NoError(t, cfg.EnsureDirectories())
	for _, p := range []string{"store", "exports", "logs"} {
		info, err := os.Stat(filepath.Join(dir, p))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
