package export

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/andy/invoicer/internal/render"
)

var (
	ErrNoRenderTarget = errors.New("nothing to export: no rendered invoice")
	ErrExportFailed   = errors.New("export failed")
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatPNG  Format = "png"
	FormatHTML Format = "html"
)

// Formats lists every supported export format
var Formats = []Format{FormatPDF, FormatPNG, FormatHTML}

// ParseFormat accepts pdf, png (or image) and html
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf":
		return FormatPDF, nil
	case "png", "image":
		return FormatPNG, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown export format %q (expected pdf, png or html)", s)
}

// Operation is the status board key for the format
func (f Format) Operation() string {
	switch f {
	case FormatPDF:
		return "pdf-export"
	case FormatPNG:
		return "image-export"
	case FormatHTML:
		return "html-export"
	}
	return string(f) + "-export"
}

func (f Format) label() string {
	switch f {
	case FormatPNG:
		return "image"
	default:
		return strings.ToUpper(string(f))
	}
}

// labelTitle capitalizes a label without lowering acronyms ("image" -> "Image", "PDF" stays)
var labelTitle = cases.Title(language.English, cases.NoLower)

type Options struct {
	OutputDir   string
	Scale       float64
	JPEGQuality int
}

// Result is the outcome of one export
type Result struct {
	Format Format
	Path   string
	Size   int64
	Err    error
}

// Exporter writes rendered pages to files and tracks progress per operation
type Exporter struct {
	mu     sync.RWMutex
	opts   Options
	board  *StatusBoard
	logger *slog.Logger
}

func New(opts Options, logger *slog.Logger) *Exporter {
	if opts.Scale <= 0 {
		opts.Scale = DefaultScale
	}
	if opts.JPEGQuality <= 0 {
		opts.JPEGQuality = DefaultJPEGQuality
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{opts: opts, board: NewStatusBoard(), logger: logger}
}

// Status returns the board holding the latest state of every operation
func (e *Exporter) Status() *StatusBoard {
	return e.board
}

// SetOutputDir changes where subsequent exports are written
func (e *Exporter) SetOutputDir(dir string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.opts.OutputDir = dir
}

func (e *Exporter) options() Options {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.opts
}

// Export runs one export synchronously. Failures are reported in the
// result and on the status board, never as a panic.
func (e *Exporter) Export(ctx context.Context, format Format, page *render.Page) Result {
	gen := e.board.begin(format.Operation(), "Generating "+format.label()+"...")
	return e.export(ctx, format, page, gen, e.rasterOnce(page))
}

// Start runs the export in the background. The channel yields exactly one result.
func (e *Exporter) Start(ctx context.Context, format Format, page *render.Page) <-chan Result {
	gen := e.board.begin(format.Operation(), "Generating "+format.label()+"...")
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		ch <- e.export(ctx, format, page, gen, e.rasterOnce(page))
	}()
	return ch
}

// ExportAll writes every format concurrently, rasterizing the page once.
// It returns all results and the first error encountered.
func (e *Exporter) ExportAll(ctx context.Context, page *render.Page) ([]Result, error) {
	raster := e.rasterOnce(page)
	results := make([]Result, len(Formats))

	var g errgroup.Group
	for i, f := range Formats {
		i, f := i, f
		gen := e.board.begin(f.Operation(), "Generating "+f.label()+"...")
		g.Go(func() error {
			results[i] = e.export(ctx, f, page, gen, raster)
			return results[i].Err
		})
	}
	return results, g.Wait()
}

func (e *Exporter) rasterOnce(page *render.Page) func() (*image.RGBA, error) {
	scale := e.options().Scale
	return sync.OnceValues(func() (*image.RGBA, error) {
		return Rasterize(page, scale)
	})
}

func (e *Exporter) export(ctx context.Context, format Format, page *render.Page, gen uint64, raster func() (*image.RGBA, error)) Result {
	op := format.Operation()
	log := e.logger.With(slog.String("operation", op))
	log.Info("export started")

	res := e.produce(ctx, format, page, raster)
	if res.Err != nil {
		log.Error("export failed", slog.Any("error", res.Err))
		e.board.finish(op, gen, StateError, "Failed to export "+format.label(), "")
		return res
	}

	log.Info("export finished",
		slog.String("path", res.Path),
		slog.String("size", humanize.Bytes(uint64(res.Size))))
	e.board.finish(op, gen, StateSuccess, labelTitle.String(format.label())+" exported successfully!", res.Path)
	return res
}

func (e *Exporter) produce(ctx context.Context, format Format, page *render.Page, raster func() (*image.RGBA, error)) (res Result) {
	res.Format = format
	opts := e.options()
	defer func() {
		if r := recover(); r != nil {
			res.Path, res.Size = "", 0
			res.Err = fmt.Errorf("%w: %v", ErrExportFailed, r)
		}
	}()

	if page == nil {
		res.Err = ErrNoRenderTarget
		return res
	}
	if err := ctx.Err(); err != nil {
		res.Err = fmt.Errorf("%w: %w", ErrExportFailed, err)
		return res
	}

	var write func(io.Writer) error
	switch format {
	case FormatHTML:
		write = func(w io.Writer) error { return WriteHTML(w, page) }
	case FormatPNG, FormatPDF:
		img, err := raster()
		if err != nil {
			res.Err = fmt.Errorf("%w: %w", ErrExportFailed, err)
			return res
		}
		if err := ctx.Err(); err != nil {
			res.Err = fmt.Errorf("%w: %w", ErrExportFailed, err)
			return res
		}
		if format == FormatPNG {
			write = func(w io.Writer) error { return png.Encode(w, img) }
		} else {
			write = func(w io.Writer) error { return WritePDF(w, img, page.Title, opts.JPEGQuality) }
		}
	default:
		res.Err = fmt.Errorf("%w: unsupported format %q", ErrExportFailed, format)
		return res
	}

	path, size, err := writeFile(opts.OutputDir, FileName(page.InvoiceNumber, string(format)), write)
	if err != nil {
		res.Err = fmt.Errorf("%w: %w", ErrExportFailed, err)
		return res
	}
	res.Path, res.Size = path, size
	return res
}
