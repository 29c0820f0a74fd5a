package export

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"github.com/jung-kurt/gofpdf"
)

// A4 portrait in millimetres
const (
	a4WidthMM  = 210.0
	a4HeightMM = 297.0
)

// DefaultJPEGQuality is the quality of the bitmap embedded in PDFs
const DefaultJPEGQuality = 95

// PageOffsets returns the vertical position of the image on each PDF page.
// A single page is used when the image fits; otherwise the image is shifted
// up by one page height per page until nothing is left.
func PageOffsets(imgHeight, pageHeight float64) []float64 {
	offsets := []float64{0}
	left := imgHeight - pageHeight
	for left > 0 {
		offsets = append(offsets, left-imgHeight)
		left -= pageHeight
	}
	return offsets
}

// WritePDF embeds the bitmap into an A4 document scaled to the page width,
// paginating when it is taller than one page
func WritePDF(w io.Writer, img image.Image, title string, quality int) error {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return fmt.Errorf("empty bitmap")
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("failed to encode jpeg: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(true)
	pdf.SetTitle(title, true)
	pdf.SetCreator("invoicer", true)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	opts := gofpdf.ImageOptions{ImageType: "JPG"}
	pdf.RegisterImageOptionsReader("invoice", opts, &buf)
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to register image: %w", err)
	}

	imgHeight := float64(b.Dy()) * a4WidthMM / float64(b.Dx())
	for _, y := range PageOffsets(imgHeight, a4HeightMM) {
		pdf.AddPage()
		pdf.SetFillColor(int(pageBgColor.R), int(pageBgColor.G), int(pageBgColor.B))
		pdf.Rect(0, 0, a4WidthMM, a4HeightMM, "F")
		pdf.ImageOptions("invoice", 0, y, a4WidthMM, imgHeight, false, opts, 0, "")
	}

	return pdf.Output(w)
}
