// Package billing derives invoice amounts: line totals, subtotal, discount,
// tax and the grand total. All functions are pure and round to the minor unit
// of the invoice currency.
package billing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"invoice-backend/currency"
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrDiscountExceedsSubtotal is reported as a warning on Totals; the
	// taxable base is clamped to zero.
	ErrDiscountExceedsSubtotal = errors.New("discount exceeds subtotal")
)

var hundred = decimal.NewFromInt(100)

// Line is one invoice row as entered by the user.
type Line struct {
	Name     string
	Quantity decimal.Decimal
	Price    decimal.Decimal
}

// Totals is the result of Total.
type Totals struct {
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal
	Taxable       decimal.Decimal
	TaxPercentage decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	Warnings      []error
}

// Result is the fully derived invoice: line totals in input order plus Totals.
type Result struct {
	LineTotals []decimal.Decimal
	Totals
}

// ItemTotal returns quantity × price rounded to the currency's minor unit.
func ItemTotal(quantity, price decimal.Decimal, cur currency.Code) (decimal.Decimal, error) {
	if quantity.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: quantity %s", ErrInvalidAmount, quantity)
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: price %s", ErrInvalidAmount, price)
	}
	return cur.Round(quantity.Mul(price)), nil
}

// Subtotal sums the line totals. Line totals are rounded before summing so
// the subtotal always equals the sum of the printed rows.
func Subtotal(lines []Line, cur currency.Code) (decimal.Decimal, error) {
	sum := decimal.Zero
	for i, l := range lines {
		t, err := ItemTotal(l.Quantity, l.Price, cur)
		if err != nil {
			return decimal.Zero, fmt.Errorf("line %d: %w", i, err)
		}
		sum = sum.Add(t)
	}
	return cur.Round(sum), nil
}

// Total computes (subtotal − discount) × (1 + taxPercentage/100). A discount
// larger than the subtotal clamps the taxable base to zero and adds
// ErrDiscountExceedsSubtotal to the warnings.
func Total(subtotal, discount, taxPercentage decimal.Decimal, cur currency.Code) (Totals, error) {
	switch {
	case subtotal.IsNegative():
		return Totals{}, fmt.Errorf("%w: subtotal %s", ErrInvalidAmount, subtotal)
	case discount.IsNegative():
		return Totals{}, fmt.Errorf("%w: discount %s", ErrInvalidAmount, discount)
	case taxPercentage.IsNegative(), taxPercentage.GreaterThan(hundred):
		return Totals{}, fmt.Errorf("%w: tax percentage %s", ErrInvalidAmount, taxPercentage)
	}

	subtotal = cur.Round(subtotal)
	discount = cur.Round(discount)

	t := Totals{
		Subtotal:      subtotal,
		Discount:      discount,
		TaxPercentage: taxPercentage,
	}

	taxable := subtotal.Sub(discount)
	if taxable.IsNegative() {
		taxable = decimal.Zero
		t.Warnings = append(t.Warnings, fmt.Errorf("%w: %s > %s", ErrDiscountExceedsSubtotal, discount, subtotal))
	}
	t.Taxable = taxable
	t.Tax = cur.Round(TaxAmount(taxable, taxPercentage))
	t.Total = cur.Round(taxable.Add(t.Tax))
	return t, nil
}

// TaxAmount is the unrounded tax on a taxable base.
func TaxAmount(taxable, taxPercentage decimal.Decimal) decimal.Decimal {
	return taxable.Mul(taxPercentage).Div(hundred)
}

// Compute derives line totals and Totals for a whole invoice in one pass.
func Compute(lines []Line, discount, taxPercentage decimal.Decimal, cur currency.Code) (Result, error) {
	res := Result{LineTotals: make([]decimal.Decimal, len(lines))}
	sum := decimal.Zero
	for i, l := range lines {
		lt, err := ItemTotal(l.Quantity, l.Price, cur)
		if err != nil {
			return Result{}, fmt.Errorf("line %d: %w", i, err)
		}
		res.LineTotals[i] = lt
		sum = sum.Add(lt)
	}

	totals, err := Total(sum, discount, taxPercentage, cur)
	if err != nil {
		return Result{}, err
	}
	res.Totals = totals
	return res, nil
}

// HasWarning reports whether target is among the warnings.
func (t Totals) HasWarning(target error) bool {
	for _, w := range t.Warnings {
		if errors.Is(w, target) {
			return true
		}
	}
	return false
}
