// Package export writes the invoice history as a spreadsheet, one row per
// invoice, in CSV or XLSX form.
package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"smartinvoice/internal/domain"
	"smartinvoice/internal/gst"
	"smartinvoice/internal/invoice"
)

// columns defines the header row shared by both encodings.
var columns = []string{
	"Invoice Number",
	"Invoice Date",
	"Client Name",
	"Client GSTIN",
	"Item Count",
	"Taxable Value",
	"CGST",
	"SGST",
	"Total Invoice Value",
	"Paid",
	"Invoice Value in Words",
}

// Row is the exported view of one invoice. Amounts are display-rounded.
type Row struct {
	InvoiceNumber string
	Date          string
	ClientName    string
	ClientGSTIN   string
	ItemCount     int
	Taxable       int64
	CGST          int64
	SGST          int64
	GrandTotal    int64
	Paid          bool
	Words         string
}

// RowFor derives the export row for inv.
func RowFor(inv *domain.InvoiceData) Row {
	sum := invoice.Summarize(inv)
	return Row{
		InvoiceNumber: inv.InvoiceNumber,
		Date:          inv.Date,
		ClientName:    inv.ClientName,
		ClientGSTIN:   inv.ClientGSTIN,
		ItemCount:     len(inv.Items),
		Taxable:       sum.Display.Taxable,
		CGST:          sum.Display.CGST,
		SGST:          sum.Display.SGST,
		GrandTotal:    sum.Display.GrandTotal,
		Paid:          inv.IsPaid,
		Words:         sum.Words.GrandTotal,
	}
}

func (r Row) strings() []string {
	return []string{
		r.InvoiceNumber,
		r.Date,
		r.ClientName,
		r.ClientGSTIN,
		strconv.Itoa(r.ItemCount),
		strconv.FormatInt(r.Taxable, 10),
		strconv.FormatInt(r.CGST, 10),
		strconv.FormatInt(r.SGST, 10),
		strconv.FormatInt(r.GrandTotal, 10),
		formatBool(r.Paid),
		r.Words,
	}
}

// Write encodes invoices in the given format.
func Write(w io.Writer, format domain.ExportFormat, invoices []domain.InvoiceData) error {
	switch format {
	case domain.ExportFormatCSV:
		return WriteCSV(w, invoices)
	case domain.ExportFormatXLSX:
		return WriteXLSX(w, invoices)
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedExportFormat, format)
	}
}

// BuildFilename returns the attachment name for an export made at now.
// Format: invoice-history_{YYYY-MM-DD}.{ext}
func BuildFilename(format domain.ExportFormat, now time.Time) string {
	return fmt.Sprintf("invoice-history_%s.%s", now.Format("2006-01-02"), format)
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// TotalRow sums the amount columns across rows for the XLSX footer.
func TotalRow(rows []Row) Row {
	var t Row
	t.InvoiceNumber = "Total"
	for _, r := range rows {
		t.ItemCount += r.ItemCount
		t.Taxable += r.Taxable
		t.CGST += r.CGST
		t.SGST += r.SGST
		t.GrandTotal += r.GrandTotal
	}
	t.Words = gst.ToWords(float64(t.GrandTotal))
	return t
}
