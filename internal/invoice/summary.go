package invoice

import (
	"smartinvoice/internal/domain"
	"smartinvoice/internal/gst"
)

// Summary is the derived view of an invoice used by the printable layout,
// exports and API responses. It is recomputed on every read and never stored.
type Summary struct {
	Lines    []gst.LineBreakdown `json:"lines"`
	Totals   gst.Totals          `json:"totals"`
	HalfRate float64             `json:"halfRate"`
	Display  DisplayTotals       `json:"display"`
	Words    AmountWords         `json:"words"`
}

// DisplayTotals holds whole-rupee amounts for presentation.
type DisplayTotals struct {
	Taxable    int64 `json:"taxable"`
	CGST       int64 `json:"cgst"`
	SGST       int64 `json:"sgst"`
	GrandTotal int64 `json:"grandTotal"`
}

// AmountWords holds the in-words renderings printed on the invoice.
type AmountWords struct {
	CGST       string `json:"cgst"`
	SGST       string `json:"sgst"`
	GrandTotal string `json:"grandTotal"`
}

// Summarize derives per-line and aggregate amounts for inv.
func Summarize(inv *domain.InvoiceData) Summary {
	totals := gst.Aggregate(inv.Items, inv.TaxRate)
	return Summary{
		Lines:    gst.Lines(inv.Items, inv.TaxRate),
		Totals:   totals,
		HalfRate: gst.HalfRate(inv.TaxRate),
		Display: DisplayTotals{
			Taxable:    gst.DisplayRound(totals.TotalTaxable),
			CGST:       gst.DisplayRound(totals.TotalCGST),
			SGST:       gst.DisplayRound(totals.TotalSGST),
			GrandTotal: gst.DisplayRound(totals.GrandTotal),
		},
		Words: AmountWords{
			CGST:       gst.ToWords(totals.TotalCGST),
			SGST:       gst.ToWords(totals.TotalSGST),
			GrandTotal: gst.ToWords(totals.GrandTotal),
		},
	}
}

// PDFFilename returns the download name for an invoice's PDF.
func PDFFilename(invoiceNumber string) string {
	return "Invoice-" + invoiceNumber + ".pdf"
}
