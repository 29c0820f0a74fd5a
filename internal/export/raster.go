package export

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/andy/invoicer/internal/render"
)

// DefaultScale matches a 3x device pixel ratio
const DefaultScale = 3.0

type typeface int

const (
	faceRegular typeface = iota
	faceBold
	faceItalic
)

type textStyle struct {
	face  typeface
	size  float64 // CSS px
	color color.RGBA
}

var (
	ink    = color.RGBA{0x11, 0x18, 0x27, 0xff}
	muted  = color.RGBA{0x6b, 0x72, 0x80, 0xff}
	accent = color.RGBA{0x08, 0x91, 0xb2, 0xff}
	link   = color.RGBA{0x25, 0x63, 0xeb, 0xff}

	ruleColor   = color.RGBA{0xe5, 0xe7, 0xeb, 0xff}
	strongRule  = color.RGBA{0x9c, 0xa3, 0xaf, 0xff}
	headFill    = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
	stripeFill  = color.RGBA{0xf9, 0xfa, 0xfb, 0xff}
	pageBgColor = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

var (
	styleIssuer    = textStyle{faceBold, 22, ink}
	styleTitle     = textStyle{faceBold, 32, accent}
	styleLabel     = textStyle{faceRegular, 10, muted}
	styleStrong    = textStyle{faceBold, 14, ink}
	styleMuted     = textStyle{faceRegular, 12, muted}
	styleSection   = textStyle{faceBold, 11, accent}
	styleClient    = textStyle{faceBold, 16, ink}
	styleIntro     = textStyle{faceItalic, 13, ink}
	styleTableHead = textStyle{faceBold, 11, ink}
	styleBody      = textStyle{faceRegular, 13, ink}
	styleLink      = textStyle{faceRegular, 13, link}
	styleTotal     = textStyle{faceBold, 18, ink}
	styleFooter    = textStyle{faceRegular, 11, muted}

	allStyles = []textStyle{
		styleIssuer, styleTitle, styleLabel, styleStrong, styleMuted, styleSection, styleClient,
		styleIntro, styleTableHead, styleBody, styleLink, styleTotal, styleFooter,
	}
)

// Layout spacing in CSS px
const (
	blockGap    = 28.0
	cellPadX    = 10.0
	cellPadY    = 8.0
	totalsWidth = 280.0
)

var (
	fontsOnce sync.Once
	fonts     map[typeface]*opentype.Font
	fontsErr  error
)

func loadFonts() (map[typeface]*opentype.Font, error) {
	fontsOnce.Do(func() {
		fonts = make(map[typeface]*opentype.Font, 3)
		for tf, ttf := range map[typeface][]byte{
			faceRegular: goregular.TTF,
			faceBold:    gobold.TTF,
			faceItalic:  goitalic.TTF,
		} {
			f, err := opentype.Parse(ttf)
			if err != nil {
				fontsErr = fmt.Errorf("failed to parse font: %w", err)
				return
			}
			fonts[tf] = f
		}
	})
	return fonts, fontsErr
}

// Rasterize draws the page into a white bitmap Width*scale pixels wide
func Rasterize(p *render.Page, scale float64) (*image.RGBA, error) {
	if p == nil {
		return nil, ErrNoRenderTarget
	}
	if scale <= 0 {
		scale = DefaultScale
	}

	r, err := newRasterizer(scale)
	if err != nil {
		return nil, err
	}
	defer r.close()

	// first pass only measures
	height := r.layout(p)

	img := image.NewRGBA(image.Rect(0, 0, r.px(float64(p.Width)), height))
	draw.Draw(img, img.Bounds(), image.NewUniform(pageBgColor), image.Point{}, draw.Src)

	r.dst = img
	r.layout(p)
	return img, nil
}

type rasterizer struct {
	scale float64
	faces map[textStyle]font.Face
	dst   *image.RGBA // nil while measuring
	y     int
}

func newRasterizer(scale float64) (*rasterizer, error) {
	fs, err := loadFonts()
	if err != nil {
		return nil, err
	}
	r := &rasterizer{scale: scale, faces: make(map[textStyle]font.Face, len(allStyles))}
	for _, st := range allStyles {
		face, err := opentype.NewFace(fs[st.face], &opentype.FaceOptions{
			Size:    st.size * scale,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			r.close()
			return nil, fmt.Errorf("failed to create font face: %w", err)
		}
		r.faces[st] = face
	}
	return r, nil
}

func (r *rasterizer) close() {
	for _, f := range r.faces {
		f.Close()
	}
}

func (r *rasterizer) px(v float64) int {
	return int(math.Round(v * r.scale))
}

// layout walks every block and returns the total height in device pixels
func (r *rasterizer) layout(p *render.Page) int {
	pad := r.px(float64(p.Padding))
	left, right := pad, r.px(float64(p.Width))-pad
	r.y = pad

	for i, b := range p.Blocks {
		if i > 0 {
			r.y += r.px(blockGap)
		}
		switch b.Kind {
		case render.BlockHeader:
			r.header(b, left, right)
		case render.BlockBillTo:
			r.section(b.Title, left, right)
			for j, line := range b.Lines {
				st := styleMuted
				if j == 0 {
					st = styleClient
				}
				r.y = r.paragraph(line, st, left, right, r.y, render.AlignLeft)
			}
		case render.BlockIntro:
			for _, line := range b.Lines {
				r.y = r.paragraph(line, styleIntro, left, right, r.y, render.AlignLeft)
			}
		case render.BlockItems:
			if b.Table != nil {
				r.table(b.Table, left, right)
			}
		case render.BlockTotals:
			r.totals(b.Pairs, left, right)
		case render.BlockPayment, render.BlockNotes:
			r.section(b.Title, left, right)
			for _, line := range b.Lines {
				st := styleBody
				if b.Link != "" && strings.Contains(line, b.Link) {
					st = styleLink
				}
				r.y = r.paragraph(line, st, left, right, r.y, render.AlignLeft)
			}
		case render.BlockFooter:
			r.rule(left, right, r.y, ruleColor)
			r.y += r.px(12)
			for _, line := range b.Lines {
				r.y = r.paragraph(line, styleFooter, left, right, r.y, render.AlignCenter)
			}
		}
	}
	return r.y + pad
}

func (r *rasterizer) header(b render.Block, left, right int) {
	top := r.y
	// issuer lines wrap in the left half, the aside owns the right half
	mid := left + (right-left)/2
	gap := r.px(16)

	ly := top
	for i, line := range b.Lines {
		st := styleMuted
		if i == 0 {
			st = styleIssuer
		}
		ly = r.paragraph(line, st, left, mid-gap, ly, render.AlignLeft)
	}

	asideStyles := []textStyle{styleTitle, styleLabel, styleStrong, styleMuted}
	ry := top
	for i, line := range b.Aside {
		ry = r.textLine(line, asideStyles[min(i, len(asideStyles)-1)], mid, right, ry, render.AlignRight)
	}

	r.y = max(ly, ry) + r.px(16)
	r.rule(left, right, r.y, ruleColor)
}

func (r *rasterizer) section(title string, left, right int) {
	if title == "" {
		return
	}
	r.y = r.textLine(strings.ToUpper(title), styleSection, left, right, r.y, render.AlignLeft) + r.px(4)
}

func (r *rasterizer) table(t *render.Table, left, right int) {
	width := right - left
	xs := make([]int, len(t.Columns)+1)
	xs[0] = left
	acc := 0.0
	for i, c := range t.Columns {
		acc += c.Width
		xs[i+1] = left + int(acc*float64(width))
	}
	xs[len(xs)-1] = right

	padX, padY := r.px(cellPadX), r.px(cellPadY)

	headH := r.lineHeight(styleTableHead) + 2*padY
	r.fill(left, r.y, right, r.y+headH, headFill)
	for i, c := range t.Columns {
		r.textLine(strings.ToUpper(c.Title), styleTableHead, xs[i]+padX, xs[i+1]-padX, r.y+padY, c.Align)
	}
	r.y += headH

	lh := r.lineHeight(styleBody)
	for ri, row := range t.Rows {
		cells := make([][]string, len(t.Columns))
		lines := 1
		for ci := range t.Columns {
			if ci < len(row) {
				cells[ci] = r.wrap(row[ci], styleBody, xs[ci+1]-xs[ci]-2*padX)
			}
			lines = max(lines, len(cells[ci]))
		}

		rowH := lines*lh + 2*padY
		if ri%2 == 1 {
			r.fill(left, r.y, right, r.y+rowH, stripeFill)
		}
		for ci, c := range t.Columns {
			y := r.y + padY
			for _, line := range cells[ci] {
				y = r.textLine(line, styleBody, xs[ci]+padX, xs[ci+1]-padX, y, c.Align)
			}
		}
		r.y += rowH
		r.rule(left, right, r.y-r.px(1), ruleColor)
	}
}

func (r *rasterizer) totals(pairs []render.Pair, left, right int) {
	x0 := max(left, right-r.px(totalsWidth))
	for _, p := range pairs {
		st := styleBody
		if p.Emphasis {
			st = styleTotal
			r.y += r.px(4)
			r.rule(x0, right, r.y, strongRule)
			r.y += r.px(10)
		}
		r.textLine(p.Label, st, x0, right, r.y, render.AlignLeft)
		r.y = r.textLine(p.Value, st, x0, right, r.y, render.AlignRight) + r.px(6)
	}
}

func (r *rasterizer) lineHeight(st textStyle) int {
	return r.faces[st].Metrics().Height.Ceil()
}

func (r *rasterizer) measure(s string, st textStyle) int {
	return font.MeasureString(r.faces[st], s).Ceil()
}

// textLine draws s with its top edge at y inside [x0, x1] and returns the y below it
func (r *rasterizer) textLine(s string, st textStyle, x0, x1, y int, align render.Align) int {
	face := r.faces[st]
	m := face.Metrics()
	if r.dst != nil && s != "" {
		x := x0
		switch align {
		case render.AlignRight:
			x = x1 - r.measure(s, st)
		case render.AlignCenter:
			x = x0 + (x1-x0-r.measure(s, st))/2
		}
		d := font.Drawer{
			Dst:  r.dst,
			Src:  image.NewUniform(st.color),
			Face: face,
			Dot:  fixed.P(x, y+m.Ascent.Ceil()),
		}
		d.DrawString(s)
	}
	return y + m.Height.Ceil()
}

// paragraph word-wraps s to the column and draws every line
func (r *rasterizer) paragraph(s string, st textStyle, x0, x1, y int, align render.Align) int {
	for _, line := range r.wrap(s, st, x1-x0) {
		y = r.textLine(line, st, x0, x1, y, align)
	}
	return y
}

// wrap breaks s into lines no wider than width. Words longer than a line are split by rune.
func (r *rasterizer) wrap(s string, st textStyle, width int) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := ""
		for _, w := range words {
			for r.measure(w, st) > width && len([]rune(w)) > 1 {
				head, tail := r.splitWord(w, st, width)
				if cur != "" {
					lines = append(lines, cur)
					cur = ""
				}
				lines = append(lines, head)
				w = tail
			}
			candidate := w
			if cur != "" {
				candidate = cur + " " + w
			}
			if cur != "" && r.measure(candidate, st) > width {
				lines = append(lines, cur)
				cur = w
				continue
			}
			cur = candidate
		}
		lines = append(lines, cur)
	}
	return lines
}

func (r *rasterizer) splitWord(w string, st textStyle, width int) (string, string) {
	runes := []rune(w)
	n := 1
	for n < len(runes) && r.measure(string(runes[:n+1]), st) <= width {
		n++
	}
	return string(runes[:n]), string(runes[n:])
}

func (r *rasterizer) fill(x0, y0, x1, y1 int, c color.RGBA) {
	if r.dst == nil {
		return
	}
	draw.Draw(r.dst, image.Rect(x0, y0, x1, y1), image.NewUniform(c), image.Point{}, draw.Src)
}

func (r *rasterizer) rule(x0, x1, y int, c color.RGBA) {
	r.fill(x0, y, x1, y+max(1, r.px(1)), c)
}
