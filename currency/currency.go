// Package currency holds the static currency table and the formatters used by
// the API responses, the email template and the PDF renderer.
package currency

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Code is an ISO 4217 code from the supported set.
type Code string

const (
	IDR Code = "IDR"
	USD Code = "USD"
	EUR Code = "EUR"
	GBP Code = "GBP"
	JPY Code = "JPY"
)

// Default is used when a user has not picked a currency and as the formatting
// fallback for unknown codes.
const Default = USD

var ErrUnknownCurrency = errors.New("unknown currency")

// Info describes how amounts in one currency are displayed.
type Info struct {
	Code        Code
	Symbol      string
	Name        string
	Locale      language.Tag
	Fraction    int32 // minor-unit digits
	SymbolAfter bool  // "1.234,50 €" instead of "€1.234,50"
	Spaced      bool  // space between symbol and number
}

var table = map[Code]Info{
	IDR: {Code: IDR, Symbol: "Rp", Name: "Indonesian Rupiah", Locale: language.MustParse("id-ID"), Fraction: 2, Spaced: true},
	USD: {Code: USD, Symbol: "$", Name: "US Dollar", Locale: language.MustParse("en-US"), Fraction: 2},
	EUR: {Code: EUR, Symbol: "€", Name: "Euro", Locale: language.MustParse("de-DE"), Fraction: 2, SymbolAfter: true, Spaced: true},
	GBP: {Code: GBP, Symbol: "£", Name: "British Pound", Locale: language.MustParse("en-GB"), Fraction: 2},
	JPY: {Code: JPY, Symbol: "¥", Name: "Japanese Yen", Locale: language.MustParse("ja-JP"), Fraction: 0},
}

// Codes lists the supported codes in display order.
func Codes() []Code {
	return []Code{IDR, USD, EUR, GBP, JPY}
}

// Lookup returns the table entry for code.
func Lookup(code Code) (Info, error) {
	info, ok := table[code]
	if !ok {
		return Info{}, fmt.Errorf("%w: %q", ErrUnknownCurrency, string(code))
	}
	return info, nil
}

// MustLookup is Lookup with the USD fallback applied.
func MustLookup(code Code) Info {
	if info, ok := table[code]; ok {
		return info
	}
	return table[Default]
}

// Parse normalises s and checks it against the table.
func Parse(s string) (Code, error) {
	c := Code(strings.ToUpper(strings.TrimSpace(s)))
	if _, err := Lookup(c); err != nil {
		return "", err
	}
	return c, nil
}

// Valid reports whether c is in the table.
func (c Code) Valid() bool {
	_, ok := table[c]
	return ok
}

// Fraction returns the minor-unit digits for c, falling back to USD.
func (c Code) Fraction() int32 {
	return MustLookup(c).Fraction
}

// Round rounds d half-up to the minor unit of c.
func (c Code) Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(c.Fraction())
}

func (c Code) String() string { return string(c) }

type formatOptions struct {
	minFraction *int32
	maxFraction *int32
}

// Option overrides the fraction digits used by Format.
type Option func(*formatOptions)

func MinFraction(n int32) Option {
	return func(o *formatOptions) { o.minFraction = &n }
}

func MaxFraction(n int32) Option {
	return func(o *formatOptions) { o.maxFraction = &n }
}

// Format renders amount the way the currency's locale writes it: grouping and
// decimal separators of the locale, the currency symbol on the locale's side
// and the currency's fraction digits. Unknown codes are formatted as USD.
// A MaxFraction below the currency's digits lowers the minimum with it.
func Format(amount decimal.Decimal, code Code, opts ...Option) string {
	info := MustLookup(code)

	o := formatOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	minF, maxF := info.Fraction, info.Fraction
	if o.maxFraction != nil {
		maxF = *o.maxFraction
	}
	if o.minFraction != nil {
		minF = *o.minFraction
	}
	if minF > maxF {
		if o.minFraction != nil {
			maxF = minF
		} else {
			minF = maxF
		}
	}

	rounded := amount.Round(maxF)
	return signed(rounded, attachSymbol(info, digits(rounded, minF, maxF, info)))
}

// FormatFloat is Format for callers holding a float64.
func FormatFloat(amount float64, code Code, opts ...Option) string {
	return Format(decimal.NewFromFloat(amount), code, opts...)
}

// FormatSimple renders the symbol followed by the locale-grouped number,
// keeping up to three fraction digits. Used for badges and list cells.
func FormatSimple(amount decimal.Decimal, code Code) string {
	info := MustLookup(code)
	rounded := amount.Round(3)
	return signed(rounded, info.Symbol+digits(rounded, 0, 3, info))
}

func signed(d decimal.Decimal, s string) string {
	if d.IsNegative() {
		return "-" + s
	}
	return s
}

// digits writes |d| with the locale's marks. d is already rounded to maxF.
func digits(d decimal.Decimal, minF, maxF int32, info Info) string {
	sep := localeMarks(info.Locale)
	whole, frac, _ := strings.Cut(d.Abs().StringFixed(maxF), ".")
	frac = strings.TrimRight(frac, "0")
	for int32(len(frac)) < minF {
		frac += "0"
	}

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteString(sep.group)
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteString(sep.decimal)
		b.WriteString(frac)
	}
	return b.String()
}

type marks struct {
	group, decimal string
}

var (
	marksMu    sync.Mutex
	marksCache = map[language.Tag]marks{}
)

// localeMarks asks x/text how the locale writes 1234.5 and keeps the group
// and decimal separators.
func localeMarks(tag language.Tag) marks {
	marksMu.Lock()
	defer marksMu.Unlock()
	if m, ok := marksCache[tag]; ok {
		return m
	}
	m := marks{group: ",", decimal: "."}
	sample := []rune(message.NewPrinter(tag).Sprint(number.Decimal(1234.5, number.MinFractionDigits(1))))
	if len(sample) == 7 {
		m = marks{group: string(sample[1]), decimal: string(sample[5])}
	}
	marksCache[tag] = m
	return m
}

func attachSymbol(info Info, digits string) string {
	sep := ""
	if info.Spaced {
		sep = " "
	}
	if info.SymbolAfter {
		return digits + sep + info.Symbol
	}
	return info.Symbol + sep + digits
}
