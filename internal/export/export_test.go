package export

import (
	"bytes"
	"context"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andy/invoicer/internal/domain"
	"github.com/andy/invoicer/internal/render"
)

func testPage(t *testing.T, items int) *render.Page {
	t.Helper()
	d := domain.NewInvoiceDraft("INV-1001", time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
	d.ClientName = "Acme"
	d.Notes = "Net 30"
	d.PaymentLink = "https://pay.example/inv-1001"
	d.LineItems[0].Description = "Discovery workshop"
	d.LineItems[0].Rate = domain.MustNumber("400")
	for i := 1; i < items; i++ {
		li := d.AddLineItem()
		li.Description = "Implementation sprint with a fairly long description that needs wrapping inside its column"
		li.Rate = domain.MustNumber("1250")
	}
	d.Tax = domain.MustNumber("8")
	return render.Render(d, render.Issuer{
		Name:        "Fox Studio",
		Address:     "1 Main St",
		Email:       "billing@fox.test",
		Intro:       "Thank you for choosing us.",
		Footer:      "Thank you for your business!",
		PaymentNote: "Reply once paid.",
	})
}

func newTestExporter(t *testing.T) (*Exporter, string) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(Options{OutputDir: dir, Scale: 1, JPEGQuality: 80}, logger), dir
}

func TestPageOffsets(t *testing.T) {
	assert.Equal(t, []float64{0}, PageOffsets(200, 297))
	assert.Equal(t, []float64{0}, PageOffsets(297, 297))
	assert.Equal(t, []float64{0, -297}, PageOffsets(400, 297))
	assert.Equal(t, []float64{0, -297, -594}, PageOffsets(600, 297))
	assert.Equal(t, []float64{0, -297}, PageOffsets(594, 297))
}

func TestRasterize(t *testing.T) {
	img, err := Rasterize(testPage(t, 1), 2)
	require.NoError(t, err)
	assert.Equal(t, render.PageWidth*2, img.Bounds().Dx())

	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, img.RGBAAt(0, 0))

	inked := false
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y && !inked; y += 2 {
		for x := b.Min.X; x < b.Max.X; x += 2 {
			if img.RGBAAt(x, y) != (color.RGBA{0xff, 0xff, 0xff, 0xff}) {
				inked = true
				break
			}
		}
	}
	assert.True(t, inked, "expected some text to be drawn")
}

func TestRasterize_GrowsWithContent(t *testing.T) {
	short, err := Rasterize(testPage(t, 1), 1)
	require.NoError(t, err)
	long, err := Rasterize(testPage(t, 30), 1)
	require.NoError(t, err)
	assert.Greater(t, long.Bounds().Dy(), short.Bounds().Dy())
}

func TestRasterize_HeaderKeepsIssuerLeftOfAside(t *testing.T) {
	d := domain.NewInvoiceDraft("INV-1001", time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
	issuer := render.Issuer{Name: "Fox", Address: "1 Main St"}
	short, err := Rasterize(render.Render(d, issuer), 1)
	require.NoError(t, err)

	issuer.Name = "Northwind Traders International Consulting and Design Studio Limited Partnership"
	issuer.Address = "Suite 1200, Harbourfront Commercial Tower, 400 Very Long Boulevard Name, Springfield"
	long, err := Rasterize(render.Render(d, issuer), 1)
	require.NoError(t, err)

	// wrapped issuer lines push the rest of the page down
	assert.Greater(t, long.Bounds().Dy(), short.Bounds().Dy())

	// nothing is drawn in the gutter between the two header columns
	mid := render.PageWidth / 2
	white := color.RGBA{0xff, 0xff, 0xff, 0xff}
	for y := render.PagePadding; y < render.PagePadding+40; y++ {
		for x := mid - 12; x < mid-2; x++ {
			require.Equal(t, white, long.RGBAAt(x, y), "ink at %d,%d", x, y)
		}
	}
}

func TestRasterize_NilPage(t *testing.T) {
	_, err := Rasterize(nil, 1)
	assert.ErrorIs(t, err, ErrNoRenderTarget)
}

func TestWritePDF(t *testing.T) {
	img, err := Rasterize(testPage(t, 40), 1)
	require.NoError(t, err)

	// tall enough to need more than one A4 page
	imgHeight := float64(img.Bounds().Dy()) * a4WidthMM / float64(img.Bounds().Dx())
	pages := len(PageOffsets(imgHeight, a4HeightMM))
	require.Greater(t, pages, 1)

	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, img, "Invoice INV-1001", 90))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Equal(t, pages, bytes.Count(buf.Bytes(), []byte("<</Type /Page\n")))
}

func TestWritePDF_SinglePage(t *testing.T) {
	img, err := Rasterize(testPage(t, 1), 1)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, img, "Invoice INV-1001", 0))
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("<</Type /Page\n")))
}

func TestWriteHTML_EscapesContent(t *testing.T) {
	d := domain.NewInvoiceDraft("INV-1001", time.Now())
	d.ClientName = `<script>alert("x")</script>`
	d.PaymentLink = "javascript:alert(1)"
	p := render.Render(d, render.Issuer{Name: "Fox & Co"})

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, p))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, `class="invoice-container"`)
	assert.Contains(t, out, "max-width: 210mm")
	assert.Contains(t, out, "Fox &amp; Co")
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, `href="javascript:`)
	assert.NotContains(t, out, "<link")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "INV-1001.pdf", FileName("INV-1001", "pdf"))
	assert.Equal(t, "INV-2026-01.html", FileName("INV/2026/01", "html"))
	assert.Equal(t, "invoice.png", FileName("  ", "png"))
	assert.Equal(t, "INV-7-a-b.pdf", FileName(`INV\7:a/b`, "pdf"))
	assert.Equal(t, "invoice.pdf", FileName("..", "pdf"))
}

func TestExport_WritesEachFormat(t *testing.T) {
	ctx := context.Background()
	e, dir := newTestExporter(t)
	page := testPage(t, 2)

	for _, f := range Formats {
		res := e.Export(ctx, f, page)
		require.NoError(t, res.Err, f)
		assert.Equal(t, filepath.Join(dir, "INV-1001."+string(f)), res.Path)
		assert.Positive(t, res.Size)

		st, ok := e.Status().Get(f.Operation())
		require.True(t, ok)
		assert.Equal(t, StateSuccess, st.State)
		assert.Equal(t, res.Path, st.Path)
	}

	png, err := os.ReadFile(filepath.Join(dir, "INV-1001.png"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	// no temp files are left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestExport_NilPageFailsWithoutFile(t *testing.T) {
	e, dir := newTestExporter(t)

	res := e.Export(context.Background(), FormatPDF, nil)
	assert.ErrorIs(t, res.Err, ErrNoRenderTarget)

	st, _ := e.Status().Get("pdf-export")
	assert.Equal(t, StateError, st.State)
	assert.Equal(t, "Failed to export PDF", st.Message)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestExport_CancelledContext(t *testing.T) {
	e, dir := newTestExporter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := e.Export(ctx, FormatHTML, testPage(t, 1))
	assert.ErrorIs(t, res.Err, ErrExportFailed)
	assert.ErrorIs(t, res.Err, context.Canceled)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStart_IsAsynchronous(t *testing.T) {
	e, _ := newTestExporter(t)

	ch := e.Start(context.Background(), FormatPNG, testPage(t, 1))
	select {
	case res := <-ch:
		require.NoError(t, res.Err)
		assert.Equal(t, FormatPNG, res.Format)
	case <-time.After(30 * time.Second):
		require.FailNow(t, "export did not finish")
	}

	_, open := <-ch
	assert.False(t, open)

	st, _ := e.Status().Get("image-export")
	assert.Equal(t, "Image exported successfully!", st.Message)
}

func TestExportAll(t *testing.T) {
	e, dir := newTestExporter(t)

	results, err := e.ExportAll(context.Background(), testPage(t, 3))
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, f := range Formats {
		_, err := os.Stat(filepath.Join(dir, FileName("INV-1001", string(f))))
		assert.NoError(t, err)
	}
	assert.Len(t, e.Status().All(), 3)
}

func TestStatusBoard_NewerRunWins(t *testing.T) {
	b := NewStatusBoard()

	first := b.begin("pdf-export", "Generating PDF...")
	second := b.begin("pdf-export", "Generating PDF...")

	assert.False(t, b.finish("pdf-export", first, StateError, "Failed to export PDF", ""))
	st, _ := b.Get("pdf-export")
	assert.Equal(t, StateLoading, st.State)

	assert.True(t, b.finish("pdf-export", second, StateSuccess, "PDF exported successfully!", "/tmp/x.pdf"))
	st, _ = b.Get("pdf-export")
	assert.Equal(t, StateSuccess, st.State)
	assert.Len(t, b.All(), 1)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("Image")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)

	_, err = ParseFormat("docx")
	assert.Error(t, err)
}
