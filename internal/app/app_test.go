package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy/invoicer/internal/config"
	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/render"
	"github.com/andy/invoicer/internal/repository"
)

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Store.Path = filepath.Join(dir, "invoicer.db")
	cfg.Export.OutputDir = filepath.Join(dir, "exports")
	cfg.Log.File = filepath.Join(dir, "invoicer.log")
	cfg.Invoice.DefaultTax = 7.5
	return cfg
}

func TestNewWithStore_WiresDefaults(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	a := NewWithStore(cfg, repository.NewMemStore(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer a.Close()

	d, err := a.DraftService.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV-1001", d.InvoiceNumber)
	assert.Equal(t, "7.5", d.Tax.String())

	page, err := a.RenderCurrent(ctx)
	require.NoError(t, err)
	header, ok := page.Block(render.BlockHeader)
	require.True(t, ok)
	assert.Equal(t, cfg.Issuer.Name, header.Lines[0])
}

func TestNewWithStore_EndToEnd(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	a := NewWithStore(cfg, repository.NewMemStore(), nil)
	defer a.Close()

	_, err := a.DraftService.SetField(ctx, domain.FieldClientName, "Acme")
	require.NoError(t, err)
	d, err := a.DraftService.Current(ctx)
	require.NoError(t, err)
	_, err = a.DraftService.UpdateLineItem(ctx, d.LineItems[0].ID, domain.LineItemDescription, "Audit")
	require.NoError(t, err)
	_, err = a.DraftService.UpdateLineItem(ctx, d.LineItems[0].ID, domain.LineItemRate, "900")
	require.NoError(t, err)

	saved, err := a.DraftService.Generate(ctx)
	require.NoError(t, err)

	page := a.RenderDraft(saved.Data)
	res := a.Exporter.Export(ctx, "html", page)
	require.NoError(t, res.Err)
	assert.Equal(t, filepath.Join(cfg.Export.OutputDir, "INV-1001.html"), res.Path)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, parseLevel("nonsense"))
}
