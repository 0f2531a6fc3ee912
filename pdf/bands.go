package pdf

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"invoice-backend/billing"
	"invoice-backend/models"
)

const dateLayout = "02 Jan 2006"

type rgb struct{ r, g, b int }

var (
	colorPrimary   = rgb{37, 99, 235}
	colorSecondary = rgb{100, 116, 139}
	colorText      = rgb{30, 41, 59}
	colorLight     = rgb{248, 250, 252}
	colorRowShade  = rgb{249, 250, 251}
	colorDiscount  = rgb{220, 38, 38}
	colorWhite     = rgb{255, 255, 255}
)

// accentBlock is the coloured bar across the top of the first page.
type accentBlock struct{}

func (accentBlock) band() Band                { return BandAccent }
func (accentBlock) index() int                { return 0 }
func (accentBlock) height(m *measure) float64 { return pageTop }
func (accentBlock) draw(d *drawer, top float64) {
	d.accentBar()
}

// headerBlock holds the logo on the left and the title on the right.
type headerBlock struct {
	logo string
}

func (*headerBlock) band() Band                { return BandHeader }
func (*headerBlock) index() int                { return 0 }
func (*headerBlock) height(m *measure) float64 { return 20 }
func (b *headerBlock) draw(d *drawer, top float64) {
	if b.logo != "" {
		img, err := d.embed(b.logo, "logo")
		if err != nil {
			d.warn("logo", err)
		} else {
			w, h := fitBox(30, 10, img.aspect())
			d.image(img, margin, top, w, h)
		}
	}
	d.font(fontTitle, colorPrimary)
	d.textRight(rightEdge, top+10, "INVOICE")
}

// partiesBlock is the sender identity on the left and the invoice number and
// dates on the right. The right column is aligned to the block top whatever
// the number of sender address lines.
type partiesBlock struct {
	inv *models.Invoice
}

func (*partiesBlock) band() Band { return BandParties }
func (*partiesBlock) index() int { return 0 }
func (b *partiesBlock) height(m *measure) float64 {
	return 23 + float64(len(b.inv.From.AddressLines()))*lineHeight
}
func (b *partiesBlock) draw(d *drawer, top float64) {
	from := b.inv.From
	d.font(fontSender, colorText)
	d.text(margin, top, from.Name)

	d.font(fontSmall, colorSecondary)
	d.text(margin, top+5, from.Email)
	y := top + 8
	for _, line := range from.AddressLines() {
		y += lineHeight
		d.text(margin, y, line)
	}

	details := [][2]string{
		{"Invoice No:", b.inv.InvoiceNo},
		{"Invoice Date:", b.inv.InvoiceDate.Format(dateLayout)},
		{"Due Date:", b.inv.DueDate.Format(dateLayout)},
	}
	for i, kv := range details {
		ry := top + float64(i)*4
		d.font(fontDetails, colorSecondary)
		d.text(detailsLabelX, ry, kv[0])
		d.font(fontDetailsB, colorText)
		d.textRight(rightEdge, ry, kv[1])
	}
}

// billToBlock is the shaded "BILL TO" label followed by the recipient.
type billToBlock struct {
	to models.Party
}

func (*billToBlock) band() Band { return BandBillTo }
func (*billToBlock) index() int { return 0 }
func (b *billToBlock) height(m *measure) float64 {
	return 26 + float64(len(b.to.AddressLines()))*lineHeight
}
func (b *billToBlock) draw(d *drawer, top float64) {
	d.fill(colorLight, margin, top, contentWidth, 6)
	d.font(fontBandLabel, colorPrimary)
	d.text(margin+3, top+4, "BILL TO")

	y := top + 9
	d.font(fontRecipient, colorText)
	d.text(margin, y, b.to.Name)

	y += 4
	d.font(fontSmall, colorSecondary)
	d.text(margin, y, b.to.Email)

	y += 3
	for _, line := range b.to.AddressLines() {
		y += lineHeight
		d.text(margin, y, line)
	}
}

// tableHeaderBlock is the coloured header row of the items table.
type tableHeaderBlock struct{}

func (*tableHeaderBlock) band() Band                { return BandTableHeader }
func (*tableHeaderBlock) index() int                { return 0 }
func (*tableHeaderBlock) height(m *measure) float64 { return tableHeaderHeight }
func (*tableHeaderBlock) keepWithNext() bool        { return true }
func (*tableHeaderBlock) draw(d *drawer, top float64) {
	d.fill(colorPrimary, margin, top, contentWidth, tableHeaderHeight)
	d.font(fontSmallBold, colorWhite)
	y := top + 5
	d.text(margin+3, y, "DESCRIPTION")
	d.textCenter(qtyCenterX, y, "QTY")
	d.textRight(priceRightX, y, "PRICE")
	d.textRight(rightEdge, y, "TOTAL")
}

// itemRowBlock is one line item. Its height follows the number of lines the
// description wraps to. A continuation row carries the rest of a description
// too long for one page and no amounts.
type itemRowBlock struct {
	idx    int
	item   models.InvoiceItem
	header *tableHeaderBlock
	lines  []string
	cont   bool
}

// itemRowBlocks wraps the description once and splits it into rows of at
// most maxRowLines lines. Amounts are drawn on the first row.
func itemRowBlocks(idx int, item models.InvoiceItem, header *tableHeaderBlock, m *measure) []block {
	lines := m.wrap(item.ItemName, fontSmall, descColWidth)
	per := maxRowLines()
	out := make([]block, 0, (len(lines)+per-1)/per)
	for start := 0; start < len(lines); start += per {
		end := min(start+per, len(lines))
		out = append(out, &itemRowBlock{
			idx:    idx,
			item:   item,
			header: header,
			lines:  lines[start:end],
			cont:   start > 0,
		})
	}
	return out
}

func (b *itemRowBlock) band() Band           { return BandItemRow }
func (b *itemRowBlock) index() int           { return b.idx }
func (b *itemRowBlock) repeatOnBreak() block { return b.header }
func (b *itemRowBlock) height(m *measure) float64 { return rowHeight(len(b.lines)) }
func (b *itemRowBlock) draw(d *drawer, top float64) {
	h := rowHeight(len(b.lines))
	if b.idx%2 == 0 {
		d.fill(colorRowShade, margin, top, contentWidth, h)
	}

	d.font(fontSmall, colorText)
	start := top + 4
	for i, line := range b.lines {
		d.rawText(margin+3, start+float64(i)*lineHeight, line)
	}
	if b.cont {
		return
	}

	centerY := start + float64(len(b.lines)-1)*lineHeight/2
	d.textCenter(qtyCenterX, centerY, b.item.Quantity.String())
	d.textRight(priceRightX, centerY, d.money(b.item.Price))
	d.textRight(rightEdge, centerY, d.money(b.item.Total))
}

// totalsBlock is the right-aligned stack under the table. Discount and tax
// lines are only present when non-zero.
type totalsBlock struct {
	inv    *models.Invoice
	totals billing.Totals
}

func (*totalsBlock) band() Band { return BandTotals }
func (*totalsBlock) index() int { return 0 }

func (b *totalsBlock) showDiscount() bool { return b.inv.Discount.GreaterThan(decimal.Zero) }
func (b *totalsBlock) showTax() bool      { return b.inv.TaxPercentage.GreaterThan(decimal.Zero) }

// lines returns the labels of the amount lines above the rule.
func (b *totalsBlock) lines() []string {
	out := []string{"Subtotal:"}
	if b.showDiscount() {
		out = append(out, "Discount:")
	}
	if b.showTax() {
		out = append(out, b.taxLabel())
	}
	return out
}

func (b *totalsBlock) taxLabel() string {
	return fmt.Sprintf("Tax (%s%%):", b.inv.TaxPercentage.String())
}

func (b *totalsBlock) height(m *measure) float64 {
	// 8 gap below the table, the amount lines, the rule step, the total and 15 after.
	return 8 + float64(len(b.lines()))*totalsLineStep + totalsLineStep + 15
}

func (b *totalsBlock) draw(d *drawer, top float64) {
	y := top + 8

	d.font(fontDetails, colorSecondary)
	d.text(totalsLabelX, y, "Subtotal:")
	d.color(colorText)
	d.textRight(rightEdge, y, d.money(b.inv.SubTotal))
	y += totalsLineStep

	if b.showDiscount() {
		d.color(colorSecondary)
		d.text(totalsLabelX, y, "Discount:")
		d.color(colorDiscount)
		d.textRight(rightEdge, y, "-"+d.money(b.inv.Discount))
		y += totalsLineStep
	}

	if b.showTax() {
		d.color(colorSecondary)
		d.text(totalsLabelX, y, b.taxLabel())
		d.color(colorText)
		d.textRight(rightEdge, y, d.money(b.totals.Tax))
		y += totalsLineStep
	}

	d.rule(colorPrimary, 0.5, totalsLabelX, y, rightEdge, y)
	y += totalsLineStep

	d.font(fontTotal, colorPrimary)
	d.text(totalsLabelX, y, "TOTAL:")
	d.textRight(rightEdge, y, d.money(b.inv.Total))
}

// notesLabelBlock is the shaded "NOTES" band; lines follow as noteLineBlocks.
type notesLabelBlock struct{}

func (*notesLabelBlock) band() Band                { return BandNotes }
func (*notesLabelBlock) index() int                { return 0 }
func (*notesLabelBlock) height(m *measure) float64 { return 9 }
func (*notesLabelBlock) keepWithNext() bool        { return true }
func (*notesLabelBlock) draw(d *drawer, top float64) {
	d.fill(colorLight, margin, top, contentWidth, 6)
	d.font(fontNotesLabel, colorPrimary)
	d.text(margin+3, top+4, "NOTES")
}

type noteLineBlock struct {
	idx  int
	text string // already cp1252
	last bool
}

func (b *noteLineBlock) band() Band { return BandNoteLine }
func (b *noteLineBlock) index() int { return b.idx }
func (b *noteLineBlock) height(m *measure) float64 {
	if b.last {
		return lineHeight + 8
	}
	return lineHeight
}
func (b *noteLineBlock) draw(d *drawer, top float64) {
	d.font(fontNotes, colorText)
	d.rawText(margin+3, top, b.text)
}

func notesBlocks(notes string, m *measure) []block {
	if strings.TrimSpace(notes) == "" {
		return nil
	}
	lines := m.wrap(notes, fontNotes, contentWidth-6)
	out := make([]block, 0, len(lines)+1)
	out = append(out, &notesLabelBlock{})
	for i, l := range lines {
		out = append(out, &noteLineBlock{idx: i, text: l, last: i == len(lines)-1})
	}
	return out
}

// signatureBlock is the right-aligned signature image and name.
type signatureBlock struct {
	sig models.Signature
}

func (*signatureBlock) band() Band                { return BandSignature }
func (*signatureBlock) index() int                { return 0 }
func (*signatureBlock) height(m *measure) float64 { return 32 }
func (b *signatureBlock) draw(d *drawer, top float64) {
	y := top + 10
	d.font(fontSmall, colorSecondary)
	d.text(rightEdge-45, y, "Authorized Signature:")

	if b.sig.Image != "" {
		img, err := d.embed(b.sig.Image, "signature")
		if err != nil {
			d.warn("signature", err)
		} else {
			w, h := fitBox(40, 12, img.aspect())
			d.image(img, rightEdge-10-w, y+3, w, h)
		}
	}

	if strings.TrimSpace(b.sig.Name) != "" {
		d.font(fontSmallBold, colorText)
		d.textRight(rightEdge, y+18, b.sig.Name)
	}
}

func hasSignature(s *models.Settings) bool {
	return strings.TrimSpace(s.Signature.Image) != "" || strings.TrimSpace(s.Signature.Name) != ""
}
