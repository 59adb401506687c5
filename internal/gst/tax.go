// Package gst holds the intra-state GST arithmetic used by the invoice editor:
// tax-inclusive/exclusive reconciliation, the CGST/SGST split, aggregation and
// display rounding. Every function is pure and total over float64 input.
package gst

import (
	"math"

	"github.com/shopspring/decimal"

	"smartinvoice/internal/domain"
)

// LineBreakdown holds the derived amounts for one line item.
type LineBreakdown struct {
	TaxableValue float64 `json:"taxableValue"`
	CGST         float64 `json:"cgst"`
	SGST         float64 `json:"sgst"`
	Total        float64 `json:"total"`
}

// Totals holds invoice-level sums of LineBreakdown values.
type Totals struct {
	TotalTaxable float64 `json:"totalTaxable"`
	TotalCGST    float64 `json:"totalCgst"`
	TotalSGST    float64 `json:"totalSgst"`
	GrandTotal   float64 `json:"grandTotal"`
}

// TaxInclusiveTotal returns price * quantity * (1 + taxRate/100).
func TaxInclusiveTotal(price, quantity, taxRate float64) float64 {
	return price * quantity * (1 + taxRate/100)
}

// RateFromInclusiveTotal is the inverse of TaxInclusiveTotal: it derives the
// tax-exclusive unit rate from a tax-inclusive total. A zero quantity is
// treated as 1.
func RateFromInclusiveTotal(total, quantity, taxRate float64) float64 {
	if quantity == 0 {
		quantity = 1
	}
	return (total / (1 + taxRate/100)) / quantity
}

// HalfRate returns one component of the combined rate (e.g. 9 for 18).
func HalfRate(combinedRate float64) float64 {
	return combinedRate / 2
}

// SplitTax returns the CGST and SGST components for a taxable value. Both
// halves use the same rate, so they are always equal.
func SplitTax(taxableValue, combinedRate float64) (cgst, sgst float64) {
	half := taxableValue * HalfRate(combinedRate) / 100
	return half, half
}

// Line computes the breakdown for a single item.
func Line(item domain.LineItem, combinedRate float64) LineBreakdown {
	taxable := item.Price * item.Quantity
	cgst, sgst := SplitTax(taxable, combinedRate)
	return LineBreakdown{
		TaxableValue: taxable,
		CGST:         cgst,
		SGST:         sgst,
		Total:        taxable + cgst + sgst,
	}
}

// Lines computes breakdowns for all items, preserving order.
func Lines(items []domain.LineItem, combinedRate float64) []LineBreakdown {
	out := make([]LineBreakdown, len(items))
	for i := range items {
		out[i] = Line(items[i], combinedRate)
	}
	return out
}

// Aggregate sums the per-line breakdowns at full precision. Rounding is a
// display concern and is never applied here.
func Aggregate(items []domain.LineItem, combinedRate float64) Totals {
	var t Totals
	for i := range items {
		b := Line(items[i], combinedRate)
		t.TotalTaxable += b.TaxableValue
		t.TotalCGST += b.CGST
		t.TotalSGST += b.SGST
		t.GrandTotal += b.Total
	}
	return t
}

// DisplayRound rounds half away from zero to a whole rupee.
func DisplayRound(x float64) int64 {
	return int64(math.Round(x))
}

// RoundTo2 rounds to two decimal places, half away from zero.
func RoundTo2(x float64) float64 {
	return decimal.NewFromFloat(x).Round(2).InexactFloat64()
}
