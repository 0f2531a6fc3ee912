package pdf

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"invoice-backend/currency"
	"invoice-backend/models"
)

func sampleInvoice(items int) *models.Invoice {
	inv := &models.Invoice{
		ID:        "inv-1",
		InvoiceNo: "INV-001",
		From: models.Party{
			Name:     "Acme Studio",
			Email:    "billing@acme.test",
			Address1: "1 Main Street",
			Address2: "Springfield",
		},
		To: models.Party{
			Name:  "Globex",
			Email: "ap@globex.test",
		},
		InvoiceDate:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
		Currency:      currency.USD,
		Discount:      decimal.Zero,
		TaxPercentage: decimal.Zero,
	}
	sub := decimal.Zero
	for i := 0; i < items; i++ {
		it := models.InvoiceItem{
			ItemName: "Consulting",
			Quantity: decimal.NewFromInt(2),
			Price:    decimal.RequireFromString("50.25"),
			Total:    decimal.RequireFromString("100.50"),
		}
		inv.Items = append(inv.Items, it)
		sub = sub.Add(it.Total)
	}
	inv.SubTotal = sub
	inv.Total = sub
	return inv
}

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func find(t *testing.T, layout []Placement, band Band, index int) Placement {
	t.Helper()
	for _, p := range layout {
		if p.Band == band && p.Index == index {
			return p
		}
	}
	t.Fatalf("band %s[%d] not placed", band, index)
	return Placement{}
}

func count(layout []Placement, band Band) int {
	n := 0
	for _, p := range layout {
		if p.Band == band {
			n++
		}
	}
	return n
}

func TestRenderMissingSettings(t *testing.T) {
	doc, err := Render(sampleInvoice(1), nil)
	if !errors.Is(err, ErrMissingSettings) {
		t.Fatalf("err = %v, want ErrMissingSettings", err)
	}
	if doc != nil {
		t.Fatalf("doc = %+v, want nil", doc)
	}
}

func TestRenderProducesPDF(t *testing.T) {
	settings := &models.Settings{
		InvoiceLogo: pngDataURL(t, 60, 20),
		Signature:   models.Signature{Name: "Jane Doe", Image: pngDataURL(t, 80, 30)},
	}
	doc, err := Render(sampleInvoice(3), settings)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(doc.Bytes, []byte("%PDF")) {
		t.Fatalf("output does not start with %%PDF")
	}
	if doc.Pages != 1 {
		t.Fatalf("pages = %d, want 1", doc.Pages)
	}
	if len(doc.Warnings) != 0 {
		t.Fatalf("warnings = %v", doc.Warnings)
	}
}

func TestRenderMalformedImagesDegrade(t *testing.T) {
	settings := &models.Settings{
		InvoiceLogo: "data:image/png;base64,bm90IGFuIGltYWdl",
		Signature:   models.Signature{Name: "Jane Doe", Image: "%%%"},
	}
	doc, err := Render(sampleInvoice(1), settings)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(doc.Bytes, []byte("%PDF")) {
		t.Fatalf("output does not start with %%PDF")
	}
	if len(doc.Warnings) != 2 {
		t.Fatalf("warnings = %v, want 2", doc.Warnings)
	}
	for _, w := range doc.Warnings {
		if !errors.Is(w, ErrImageEmbed) {
			t.Errorf("warning %v does not wrap ErrImageEmbed", w)
		}
	}
}

func TestPartiesHeightFollowsAddressLines(t *testing.T) {
	tests := []struct {
		name string
		from models.Party
		want float64
	}{
		{"no address", models.Party{Name: "A", Email: "a@a.test"}, 23},
		{"blank lines skipped", models.Party{Name: "A", Address1: " ", Address2: "x"}, 26},
		{"three lines", models.Party{Name: "A", Address1: "x", Address2: "y", Address3: "z"}, 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := sampleInvoice(1)
			inv.From = tt.from
			layout, err := Plan(inv, &models.Settings{})
			if err != nil {
				t.Fatal(err)
			}
			if got := find(t, layout, BandParties, 0).Height; got != tt.want {
				t.Fatalf("height = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBillToHeightFollowsAddressLines(t *testing.T) {
	tests := []struct {
		name string
		to   models.Party
		want float64
	}{
		{"no address", models.Party{Name: "Globex", Email: "ap@globex.test"}, 26},
		{"blank lines skipped", models.Party{Name: "Globex", Address1: "", Address2: "  ", Address3: "z"}, 29},
		{"three lines", models.Party{Name: "Globex", Address1: "x", Address2: "y", Address3: "z"}, 35},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := sampleInvoice(1)
			inv.To = tt.to
			layout, err := Plan(inv, &models.Settings{})
			if err != nil {
				t.Fatal(err)
			}
			billTo := find(t, layout, BandBillTo, 0)
			if billTo.Height != tt.want {
				t.Fatalf("height = %v, want %v", billTo.Height, tt.want)
			}
			if next := find(t, layout, BandTableHeader, 0); next.Top != billTo.Bottom() {
				t.Fatalf("table header top = %v, bill-to bottom = %v", next.Top, billTo.Bottom())
			}
		})
	}
}

func TestOverTallItemSplitsAcrossPages(t *testing.T) {
	inv := sampleInvoice(2)
	inv.Items[0].ItemName = strings.Repeat("lorem ", 3000)

	doc, err := Render(inv, &models.Settings{})
	if err != nil {
		t.Fatal(err)
	}

	var first []Placement
	for _, p := range doc.Layout {
		if p.Bottom() > contentBottom {
			t.Errorf("%s[%d] on page %d ends at %v, past %v", p.Band, p.Index, p.Page, p.Bottom(), contentBottom)
		}
		if p.Band == BandItemRow && p.Index == 0 {
			first = append(first, p)
		}
	}
	if len(first) < 2 {
		t.Fatalf("item 0 placed as %d rows, want it split", len(first))
	}
	for i, p := range first {
		if p.Height > rowHeight(maxRowLines()) {
			t.Errorf("part %d height = %v, want at most %v", i, p.Height, rowHeight(maxRowLines()))
		}
		if i > 0 && p.Page == first[i-1].Page && p.Top != first[i-1].Bottom() {
			t.Errorf("part %d top = %v, previous bottom = %v", i, p.Top, first[i-1].Bottom())
		}
	}
	if doc.Pages < len(first) {
		t.Fatalf("pages = %d for %d parts", doc.Pages, len(first))
	}
	if got := find(t, doc.Layout, BandItemRow, 1); got.Page < first[len(first)-1].Page {
		t.Fatalf("item 1 on page %d before the end of item 0", got.Page)
	}
}

func TestWrappedRowIsTaller(t *testing.T) {
	inv := sampleInvoice(2)
	inv.Items[1].ItemName = strings.Repeat("very long description of the work ", 8)
	layout, err := Plan(inv, &models.Settings{})
	if err != nil {
		t.Fatal(err)
	}
	short := find(t, layout, BandItemRow, 0)
	long := find(t, layout, BandItemRow, 1)
	if short.Height != minRowHeight {
		t.Fatalf("short row height = %v, want %v", short.Height, minRowHeight)
	}
	if long.Height <= short.Height {
		t.Fatalf("long row height %v not greater than %v", long.Height, short.Height)
	}
	if long.Top != short.Bottom() {
		t.Fatalf("long row top %v, want %v", long.Top, short.Bottom())
	}
}

func TestBandsAreAdjacent(t *testing.T) {
	inv := sampleInvoice(4)
	inv.Notes = "Payment by bank transfer.\nThank you."
	layout, err := Plan(inv, &models.Settings{Signature: models.Signature{Name: "Jane"}})
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(layout); i++ {
		prev, cur := layout[i-1], layout[i]
		if cur.Page != prev.Page {
			continue
		}
		if cur.Top != prev.Bottom() {
			t.Errorf("%s[%d] top %v, want %v", cur.Band, cur.Index, cur.Top, prev.Bottom())
		}
	}
	if layout[len(layout)-1].Band != BandSignature {
		t.Fatalf("last band = %s, want signature", layout[len(layout)-1].Band)
	}
}

func TestTotalsOmitZeroLines(t *testing.T) {
	plain := sampleInvoice(1)

	full := sampleInvoice(1)
	full.Discount = decimal.NewFromInt(10)
	full.TaxPercentage = decimal.NewFromInt(10)

	discountOnly := sampleInvoice(1)
	discountOnly.Discount = decimal.NewFromInt(10)

	tests := []struct {
		name string
		inv  *models.Invoice
		want float64
	}{
		{"subtotal only", plain, 33},
		{"discount", discountOnly, 38},
		{"discount and tax", full, 43},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout, err := Plan(tt.inv, &models.Settings{})
			if err != nil {
				t.Fatal(err)
			}
			if got := find(t, layout, BandTotals, 0).Height; got != tt.want {
				t.Fatalf("totals height = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNotesOmittedWhenBlank(t *testing.T) {
	inv := sampleInvoice(1)
	inv.Notes = "   "
	layout, err := Plan(inv, &models.Settings{})
	if err != nil {
		t.Fatal(err)
	}
	if n := count(layout, BandNotes); n != 0 {
		t.Fatalf("notes bands = %d, want 0", n)
	}
	if n := count(layout, BandSignature); n != 0 {
		t.Fatalf("signature bands = %d, want 0", n)
	}
}

func TestPaginationRepeatsTableHeader(t *testing.T) {
	inv := sampleInvoice(80)
	inv.Notes = strings.Repeat("Line of notes that goes on. ", 40)
	settings := &models.Settings{Signature: models.Signature{Name: "Jane"}}

	doc, err := Render(inv, settings)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Pages < 2 {
		t.Fatalf("pages = %d, want at least 2", doc.Pages)
	}
	if got := count(doc.Layout, BandTableHeader); got != doc.Pages-countPagesWithoutRows(doc.Layout) {
		t.Fatalf("table headers = %d for %d pages", got, doc.Pages)
	}
	if got := count(doc.Layout, BandItemRow); got != 80 {
		t.Fatalf("item rows = %d, want 80", got)
	}

	for _, p := range doc.Layout {
		if p.Bottom() > contentBottom {
			t.Errorf("%s[%d] on page %d ends at %v, past %v", p.Band, p.Index, p.Page, p.Bottom(), contentBottom)
		}
		if p.Page > 1 && p.Top < pageTop {
			t.Errorf("%s[%d] on page %d starts at %v, above %v", p.Band, p.Index, p.Page, p.Top, pageTop)
		}
	}

	// Every page holding an item row opens its rows with a header.
	seen := map[int]bool{}
	for _, p := range doc.Layout {
		if p.Band == BandTableHeader {
			seen[p.Page] = true
		}
		if p.Band == BandItemRow && !seen[p.Page] {
			t.Fatalf("item %d on page %d has no table header above it", p.Index, p.Page)
		}
	}
}

func countPagesWithoutRows(layout []Placement) int {
	rows := map[int]bool{}
	pages := map[int]bool{}
	for _, p := range layout {
		pages[p.Page] = true
		if p.Band == BandItemRow {
			rows[p.Page] = true
		}
	}
	return len(pages) - len(rows)
}

func TestPlanMatchesRender(t *testing.T) {
	inv := sampleInvoice(30)
	settings := &models.Settings{}
	planned, err := Plan(inv, settings)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := Render(inv, settings)
	if err != nil {
		t.Fatal(err)
	}
	if len(planned) != len(doc.Layout) {
		t.Fatalf("plan has %d bands, render %d", len(planned), len(doc.Layout))
	}
	for i := range planned {
		if planned[i] != doc.Layout[i] {
			t.Fatalf("band %d: plan %+v, render %+v", i, planned[i], doc.Layout[i])
		}
	}
}

func TestDecodeDataURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"data url", "data:image/png;base64,aGVsbG8=", false},
		{"bare base64", "aGVsbG8=", false},
		{"no comma", "data:image/png;base64", true},
		{"not base64", "data:text/plain,hello", true},
		{"bad payload", "data:image/png;base64,!!!", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeDataURL(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrImageEmbed) {
				t.Fatalf("err %v does not wrap ErrImageEmbed", err)
			}
		})
	}
}

func TestFitBox(t *testing.T) {
	tests := []struct {
		name         string
		aspect       float64
		wantW, wantH float64
	}{
		{"wide", 6, 30, 5},
		{"tall", 1, 10, 10},
		{"exact", 3, 30, 10},
		{"unknown", 0, 30, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := fitBox(30, 10, tt.aspect)
			if w != tt.wantW || h != tt.wantH {
				t.Fatalf("fitBox = %v x %v, want %v x %v", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestRowHeight(t *testing.T) {
	for n, want := range map[int]float64{1: 6, 2: 8, 4: 14} {
		if got := rowHeight(n); got != want {
			t.Errorf("rowHeight(%d) = %v, want %v", n, got, want)
		}
	}
}
