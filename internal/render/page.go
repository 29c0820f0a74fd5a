// Package render turns an invoice draft into a Page, the single layout model
// shared by the terminal preview, the rasterizer and the HTML writer.
package render

// Page geometry in CSS pixels: A4 width at 96 dpi with 20mm padding
const (
	PageWidth   = 794
	PagePadding = 76
)

type BlockKind string

const (
	BlockHeader  BlockKind = "header"
	BlockBillTo  BlockKind = "bill-to"
	BlockIntro   BlockKind = "intro"
	BlockItems   BlockKind = "items"
	BlockTotals  BlockKind = "totals"
	BlockPayment BlockKind = "payment"
	BlockNotes   BlockKind = "notes"
	BlockFooter  BlockKind = "footer"
)

type Align int

const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

// Page is a rendered invoice
type Page struct {
	Width         int
	Padding       int
	InvoiceNumber string
	Title         string
	Blocks        []Block
}

// Block is one vertical section of the page. Only the fields relevant to
// its Kind are set.
type Block struct {
	Kind  BlockKind
	Title string

	// Lines are the main text lines. In the header the first line is the issuer name.
	Lines []string

	// Aside holds right-aligned header lines ("INVOICE", number, date)
	Aside []string

	Table *Table
	Pairs []Pair

	// Link is the payment URL
	Link string
}

type Table struct {
	Columns []Column
	Rows    [][]string
}

type Column struct {
	Title string
	Align Align
	Width float64 // fraction of the content width
}

// Pair is a label/value row in the totals block
type Pair struct {
	Label    string
	Value    string
	Emphasis bool
}

// Block returns the first block of the given kind
func (p *Page) Block(kind BlockKind) (Block, bool) {
	for _, b := range p.Blocks {
		if b.Kind == kind {
			return b, true
		}
	}
	return Block{}, false
}

// ContentWidth is the page width minus horizontal padding
func (p *Page) ContentWidth() int {
	return p.Width - 2*p.Padding
}
