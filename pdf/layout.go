package pdf

import (
	"math"

	"github.com/jung-kurt/gofpdf"
)

// A4 portrait geometry in millimetres.
const (
	pageWidth    = 210.0
	pageHeight   = 297.0
	margin       = 15.0
	contentWidth = pageWidth - margin*2
	rightEdge    = pageWidth - margin

	// Content starts below the accent bar on every page and must end above
	// the footer zone.
	pageTop       = margin + 6
	contentBottom = pageHeight - 25
	footerY       = pageHeight - 15

	tableHeaderHeight = 8.0
	lineHeight        = 3.0
	minRowHeight      = 6.0
	rowPadding        = 2.0
	itemColWidth      = 85.0
	totalColWidth     = 40.0
	descColWidth      = itemColWidth - 6
	qtyCenterX        = margin + itemColWidth + 3
	priceRightX       = rightEdge - totalColWidth - 5
	detailsLabelX     = rightEdge - 60
	totalsLabelX      = rightEdge - 80
	totalsLineStep    = 5.0
)

// Band names a horizontal region of the document.
type Band string

const (
	BandAccent      Band = "accent"
	BandHeader      Band = "header"
	BandParties     Band = "parties"
	BandBillTo      Band = "bill_to"
	BandTableHeader Band = "table_header"
	BandItemRow     Band = "item_row"
	BandTotals      Band = "totals"
	BandNotes       Band = "notes"
	BandNoteLine    Band = "note_line"
	BandSignature   Band = "signature"
)

// Placement is the position the layout assigned to one band.
type Placement struct {
	Band   Band
	Index  int // item or note line index; 0 for single bands
	Page   int
	Top    float64
	Height float64
}

func (p Placement) Bottom() float64 { return p.Top + p.Height }

type fontSpec struct {
	family string
	style  string
	size   float64
}

var (
	fontTitle      = fontSpec{"Helvetica", "B", 24}
	fontSender     = fontSpec{"Helvetica", "B", 14}
	fontRecipient  = fontSpec{"Helvetica", "B", 11}
	fontSmall      = fontSpec{"Helvetica", "", 9}
	fontSmallBold  = fontSpec{"Helvetica", "B", 9}
	fontDetails    = fontSpec{"Helvetica", "", 10}
	fontDetailsB   = fontSpec{"Helvetica", "B", 10}
	fontTotal      = fontSpec{"Helvetica", "B", 12}
	fontNotes      = fontSpec{"Helvetica", "", 8}
	fontFooter     = fontSpec{"Helvetica", "", 8}
	fontBandLabel  = fontSpec{"Helvetica", "B", 10}
	fontNotesLabel = fontSpec{"Helvetica", "B", 9}
)

// measure wraps and measures text with gofpdf's core font metrics. Text is
// translated to cp1252 first, so wrapped lines are ready to draw.
type measure struct {
	f  *gofpdf.Fpdf
	tr func(string) string
}

func newMeasure(f *gofpdf.Fpdf) *measure {
	return &measure{f: f, tr: f.UnicodeTranslatorFromDescriptor("")}
}

// wrap splits text into lines no wider than width. It always returns at
// least one line.
func (m *measure) wrap(text string, font fontSpec, width float64) []string {
	m.f.SetFont(font.family, font.style, font.size)
	raw := m.f.SplitLines([]byte(m.tr(text)), width)
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, string(l))
	}
	if len(lines) == 0 {
		lines = append(lines, "")
	}
	return lines
}

func (m *measure) width(text string, font fontSpec) float64 {
	m.f.SetFont(font.family, font.style, font.size)
	return m.f.GetStringWidth(m.tr(text))
}

// rowHeight is the height of an item row whose description wraps to n lines.
func rowHeight(n int) float64 {
	return math.Max(minRowHeight, float64(n)*lineHeight+rowPadding)
}

// maxRowLines is the most description lines a single item row may carry:
// the row must fit under a repeated table header on an empty page.
func maxRowLines() int {
	avail := contentBottom - pageTop - tableHeaderHeight - rowPadding
	return int(avail / lineHeight)
}

// block is one band descriptor. height must not depend on the position the
// block ends up at.
type block interface {
	band() Band
	index() int
	height(m *measure) float64
	draw(d *drawer, top float64)
}

// keeper blocks move to the next page together with the block that follows.
type keeper interface {
	keepWithNext() bool
}

// repeater blocks re-emit a header block when they open a new page.
type repeater interface {
	repeatOnBreak() block
}

type placed struct {
	blk block
	Placement
}

// layout folds blocks into placements top to bottom. A block that does not
// fit above the footer zone starts a new page; repeater blocks bring their
// header along.
func layout(blocks []block, m *measure) []placed {
	out := make([]placed, 0, len(blocks))
	page, y := 1, 0.0

	put := func(b block, h float64) {
		out = append(out, placed{blk: b, Placement: Placement{
			Band: b.band(), Index: b.index(), Page: page, Top: y, Height: h,
		}})
		y += h
	}

	for i, b := range blocks {
		h := b.height(m)
		need := h
		if k, ok := b.(keeper); ok && k.keepWithNext() && i+1 < len(blocks) {
			need += blocks[i+1].height(m)
		}

		if y+need > contentBottom && y > pageTop {
			page++
			y = pageTop
			if r, ok := b.(repeater); ok {
				if hdr := r.repeatOnBreak(); hdr != nil {
					put(hdr, hdr.height(m))
				}
			}
		}
		put(b, h)
	}
	return out
}

func placements(p []placed) []Placement {
	out := make([]Placement, len(p))
	for i := range p {
		out[i] = p[i].Placement
	}
	return out
}

// fitBox scales an image with the given aspect ratio (w/h) into a
// maxW × maxH box.
func fitBox(maxW, maxH, aspect float64) (w, h float64) {
	if aspect <= 0 {
		return maxW, maxH
	}
	w = maxW
	h = maxW / aspect
	if h > maxH {
		h = maxH
		w = maxH * aspect
	}
	return w, h
}
