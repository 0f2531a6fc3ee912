// Package pdf lays out an invoice and its branding settings as an A4 PDF.
//
// Layout is a fold over band descriptors: every band reports its height for
// the given content, layout assigns page and top position, and drawing
// happens afterwards at those positions. Bands never overlap and the footer
// zone at the bottom of each page is kept free.
package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"invoice-backend/billing"
	"invoice-backend/currency"
	"invoice-backend/models"
)

var (
	ErrMissingSettings = errors.New("invoice settings missing")
	ErrImageEmbed      = errors.New("image embed failed")
	ErrNoInvoice       = errors.New("no invoice to render")
)

const footerText = "Thank you for your business!"

// Document is a rendered invoice.
type Document struct {
	Bytes  []byte
	Pages  int
	Layout []Placement
	// Warnings are recovered failures, e.g. a logo that could not be embedded.
	Warnings []error
}

type Renderer struct {
	logger *slog.Logger
}

type Option func(*Renderer)

func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render produces the PDF for inv using the branding in settings. A nil
// settings record fails with ErrMissingSettings before anything is drawn.
func Render(inv *models.Invoice, settings *models.Settings) (*Document, error) {
	return NewRenderer().Render(inv, settings)
}

// Plan returns the band placements Render would use, without drawing.
func Plan(inv *models.Invoice, settings *models.Settings) ([]Placement, error) {
	f := newDocument()
	p, err := plan(f, inv, settings)
	if err != nil {
		return nil, err
	}
	return placements(p), nil
}

func (r *Renderer) Render(inv *models.Invoice, settings *models.Settings) (*Document, error) {
	f := newDocument()
	p, err := plan(f, inv, settings)
	if err != nil {
		return nil, err
	}
	pages := 1
	if len(p) > 0 {
		pages = p[len(p)-1].Page
	}

	d := &drawer{
		f:      f,
		tr:     f.UnicodeTranslatorFromDescriptor(""),
		cur:    inv.Currency,
		logger: r.logger.With("invoice_id", inv.ID),
	}

	f.SetFooterFunc(func() {
		d.font(fontFooter, colorSecondary)
		d.textCenter(pageWidth/2, footerY, footerText)
		if pages > 1 {
			d.textRight(rightEdge, footerY, fmt.Sprintf("Page %d of %d", f.PageNo(), pages))
		}
	})

	page := 0
	for _, pl := range p {
		for page < pl.Page {
			f.AddPage()
			page++
			if page > 1 {
				d.accentBar()
			}
		}
		pl.blk.draw(d, pl.Top)
	}

	var buf bytes.Buffer
	if err := f.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return &Document{
		Bytes:    buf.Bytes(),
		Pages:    pages,
		Layout:   placements(p),
		Warnings: d.warnings,
	}, nil
}

func newDocument() *gofpdf.Fpdf {
	f := gofpdf.New("P", "mm", "A4", "")
	f.SetMargins(margin, margin, margin)
	f.SetAutoPageBreak(false, 0)
	f.SetTitle("Invoice", true)
	f.SetCreator("invoice-backend", true)
	return f
}

func plan(f *gofpdf.Fpdf, inv *models.Invoice, settings *models.Settings) ([]placed, error) {
	if inv == nil {
		return nil, ErrNoInvoice
	}
	if settings == nil {
		return nil, ErrMissingSettings
	}
	totals, err := billing.Total(inv.SubTotal, inv.Discount, inv.TaxPercentage, inv.Currency)
	if err != nil {
		return nil, fmt.Errorf("invoice %s: %w", inv.InvoiceNo, err)
	}

	m := newMeasure(f)
	blocks := []block{
		accentBlock{},
		&headerBlock{logo: settings.InvoiceLogo},
		&partiesBlock{inv: inv},
		&billToBlock{to: inv.To},
	}
	header := &tableHeaderBlock{}
	blocks = append(blocks, header)
	for i, it := range inv.Items {
		blocks = append(blocks, itemRowBlocks(i, it, header, m)...)
	}
	blocks = append(blocks, &totalsBlock{inv: inv, totals: totals})
	blocks = append(blocks, notesBlocks(inv.Notes, m)...)
	if hasSignature(settings) {
		blocks = append(blocks, &signatureBlock{sig: settings.Signature})
	}
	return layout(blocks, m), nil
}

// drawer holds the drawing state shared by the bands.
type drawer struct {
	f        *gofpdf.Fpdf
	tr       func(string) string
	cur      currency.Code
	logger   *slog.Logger
	warnings []error
}

func (d *drawer) font(fs fontSpec, c rgb) {
	d.f.SetFont(fs.family, fs.style, fs.size)
	d.color(c)
}

func (d *drawer) color(c rgb) {
	d.f.SetTextColor(c.r, c.g, c.b)
}

func (d *drawer) text(x, y float64, s string) {
	d.f.Text(x, y, d.tr(s))
}

// rawText draws text that is already cp1252.
func (d *drawer) rawText(x, y float64, s string) {
	d.f.Text(x, y, s)
}

func (d *drawer) textRight(x, y float64, s string) {
	t := d.tr(s)
	d.f.Text(x-d.f.GetStringWidth(t), y, t)
}

func (d *drawer) textCenter(x, y float64, s string) {
	t := d.tr(s)
	d.f.Text(x-d.f.GetStringWidth(t)/2, y, t)
}

func (d *drawer) fill(c rgb, x, y, w, h float64) {
	d.f.SetFillColor(c.r, c.g, c.b)
	d.f.Rect(x, y, w, h, "F")
}

func (d *drawer) rule(c rgb, width, x1, y1, x2, y2 float64) {
	d.f.SetDrawColor(c.r, c.g, c.b)
	d.f.SetLineWidth(width)
	d.f.Line(x1, y1, x2, y2)
}

func (d *drawer) accentBar() {
	d.fill(colorPrimary, 0, 0, pageWidth, 4)
}

func (d *drawer) money(v decimal.Decimal) string {
	return currency.Format(v, d.cur)
}

func (d *drawer) embed(dataURL, name string) (embeddedImage, error) {
	return embedImage(d.f, name, dataURL)
}

func (d *drawer) image(img embeddedImage, x, y, w, h float64) {
	d.f.ImageOptions(img.name, x, y, w, h, false, gofpdf.ImageOptions{}, 0, "")
}

// warn records a recovered failure; the band is drawn without the image.
func (d *drawer) warn(what string, err error) {
	d.logger.Warn("skipping image", "image", what, "error", err)
	d.warnings = append(d.warnings, fmt.Errorf("%s: %w", what, err))
}
