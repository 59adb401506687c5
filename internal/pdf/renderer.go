// Package pdf renders the printable tax invoice with gofpdf.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"smartinvoice/internal/domain"
	"smartinvoice/internal/gst"
	"smartinvoice/internal/port"
)

const (
	pageWidth  = 210.0
	margin     = 10.0
	bodyWidth  = pageWidth - 2*margin
	halfWidth  = bodyWidth / 2
	lineHeight = 5.0
	rowHeight  = 7.0
)

const declaration = "Certified that particulars given above are true and correct and the amount indicated " +
	"above represents the price actually charged and there is no flow of additional consideration " +
	"directly or indirectly from the buyer."

type column struct {
	title string
	width float64
	align string
}

// Item table columns. Widths add up to bodyWidth.
var columns = []column{
	{"SL No", 8, "C"},
	{"Description Of Service", 40, "L"},
	{"HSN Code", 14, "C"},
	{"QTY", 10, "C"},
	{"Unit", 10, "C"},
	{"Rate", 16, "R"},
	{"Taxable value", 18, "R"},
	{"CGST %", 11, "C"},
	{"CGST Value", 15, "R"},
	{"SGST %", 11, "C"},
	{"SGST Value", 15, "R"},
	{"Total", 22, "R"},
}

// Renderer implements port.InvoiceRenderer.
type Renderer struct{}

// NewRenderer creates a PDF renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render lays out one A4 portrait page and returns the encoded PDF.
func (r *Renderer) Render(ctx context.Context, input port.RenderInput) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if input.Invoice == nil {
		return nil, fmt.Errorf("%w: no invoice", domain.ErrRenderFailed)
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetMargins(margin, margin, margin)
	doc.SetAutoPageBreak(true, margin)
	doc.SetTitle("Invoice "+input.Invoice.InvoiceNumber, true)
	doc.SetAuthor(input.Invoice.SenderName, true)
	doc.AddPage()

	p := &page{doc: doc, tr: doc.UnicodeTranslatorFromDescriptor(""), in: input}
	p.header()
	p.parties()
	p.itemTable()
	p.footer()
	if input.Invoice.IsPaid {
		p.watermark()
	}

	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRenderFailed, err)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRenderFailed, err)
	}
	return buf.Bytes(), nil
}

type page struct {
	doc *gofpdf.Fpdf
	tr  func(string) string
	in  port.RenderInput
}

func (p *page) font(style string, size float64) {
	p.doc.SetFont("Helvetica", style, size)
}

func (p *page) cell(w, h float64, text, border, align string, ln int) {
	p.doc.CellFormat(w, h, p.tr(text), border, ln, align, false, 0, "")
}

func (p *page) header() {
	p.doc.SetFillColor(255, 228, 225)
	p.font("B", 11)
	p.doc.CellFormat(halfWidth, rowHeight+1, "INVOICE", "1", 0, "C", true, 0, "")
	p.font("B", 8)
	p.doc.CellFormat(halfWidth, rowHeight+1, "Original / Duplicate / Triplicate", "1", 1, "C", true, 0, "")
}

func (p *page) parties() {
	inv := p.in.Invoice
	x, y := p.doc.GetXY()

	// Sender block on the left half.
	p.font("B", 10)
	p.doc.SetXY(x+1, y+1)
	p.doc.MultiCell(halfWidth-2, lineHeight, p.tr(inv.SenderName), "", "L", false)
	p.font("", 8)
	p.doc.SetX(x + 1)
	p.doc.MultiCell(halfWidth-2, 4, p.tr(inv.SenderAddress), "", "L", false)
	p.font("B", 8)
	p.doc.SetX(x + 1)
	p.cell(halfWidth-2, 4, "GST No. "+inv.SenderGSTIN, "", "L", 1)
	p.doc.SetX(x + 1)
	p.cell(halfWidth-2, 4, "CIN: "+inv.SenderCIN, "", "L", 1)
	senderBottom := p.doc.GetY() + 1
	p.doc.Rect(x, y, halfWidth, senderBottom-y, "D")
	p.doc.Rect(x+halfWidth, y, halfWidth, senderBottom-y, "D")

	p.doc.SetXY(x, senderBottom)
	p.font("B", 8)
	p.cell(halfWidth, rowHeight, "Reference: "+inv.SenderEmail, "1", "L", 0)
	p.cell(halfWidth, rowHeight, "PAN: "+inv.SenderPAN, "1", "L", 1)

	// Customer block with invoice number and date beside it.
	y = p.doc.GetY()
	p.doc.SetXY(x+1, y+1)
	p.font("B", 8)
	p.doc.MultiCell(halfWidth-2, 4, p.tr("CUSTOMER : "+inv.ClientName), "", "L", false)
	p.doc.SetX(x + 1)
	p.doc.MultiCell(halfWidth-2, 4, p.tr(inv.ClientAddress), "", "L", false)
	p.doc.SetX(x + 1)
	p.cell(halfWidth-2, 4, "Handheld: "+inv.ClientPhone, "", "L", 1)
	customerBottom := p.doc.GetY() + 1
	if customerBottom < y+2*rowHeight {
		customerBottom = y + 2*rowHeight
	}
	p.doc.Rect(x, y, halfWidth, customerBottom-y, "D")

	metaHeight := (customerBottom - y) / 2
	p.doc.SetXY(x+halfWidth, y)
	p.cell(halfWidth, metaHeight, "Invoice No : "+inv.InvoiceNumber, "1", "L", 2)
	p.doc.SetX(x + halfWidth)
	p.cell(halfWidth, metaHeight, "Invoice Date : "+inv.Date, "1", "L", 1)

	p.doc.SetXY(x, customerBottom)
	p.cell(halfWidth, rowHeight, "Customer GSTIN No: "+inv.ClientGSTIN, "1", "L", 0)
	p.cell(halfWidth/2, rowHeight, "DELIVERY PLACE: "+inv.DeliveryPlace, "1", "L", 0)
	p.cell(halfWidth/2, rowHeight, "GSTIN no: "+inv.ClientGSTIN, "1", "L", 1)
	p.cell(halfWidth, rowHeight, "State Code: "+inv.ClientStateCode, "1", "L", 0)
	p.cell(halfWidth/2, rowHeight, "", "1", "L", 0)
	p.cell(halfWidth/2, rowHeight, "State Code: "+inv.ClientStateCode, "1", "L", 1)
}

func (p *page) itemTable() {
	inv := p.in.Invoice
	sum := p.in.Summary
	halfRate := gst.FormatRate(sum.HalfRate)

	p.font("B", 6.5)
	for _, c := range columns {
		p.cell(c.width, rowHeight+2, c.title, "1", "C", 0)
	}
	p.doc.Ln(-1)

	p.font("", 7)
	for i, item := range inv.Items {
		var line gst.LineBreakdown
		if i < len(sum.Lines) {
			line = sum.Lines[i]
		}
		values := []string{
			strconv.Itoa(i + 1),
			item.Description,
			item.HSNCode,
			strconv.FormatFloat(item.Quantity, 'f', -1, 64),
			item.Unit,
			gst.FormatINR(item.Price),
			gst.FormatINR(line.TaxableValue),
			halfRate,
			gst.FormatINR(line.CGST),
			halfRate,
			gst.FormatINR(line.SGST),
			gst.FormatINR(line.Total),
		}
		for j, c := range columns {
			text := values[j]
			if j == 1 {
				text = p.fit(text, c.width-1)
			}
			p.cell(c.width, rowHeight, text, "1", c.align, 0)
		}
		p.doc.Ln(-1)
	}

	labelWidth := 0.0
	for _, c := range columns[:6] {
		labelWidth += c.width
	}
	p.font("B", 7)
	p.cell(labelWidth, rowHeight, "Total", "1", "R", 0)
	p.cell(columns[6].width, rowHeight, gst.FormatINR(sum.Totals.TotalTaxable), "1", "R", 0)
	p.cell(columns[7].width, rowHeight, "", "1", "C", 0)
	p.cell(columns[8].width, rowHeight, gst.FormatINR(sum.Totals.TotalCGST), "1", "R", 0)
	p.cell(columns[9].width, rowHeight, "", "1", "C", 0)
	p.cell(columns[10].width, rowHeight, gst.FormatINR(sum.Totals.TotalSGST), "1", "R", 0)
	p.cell(columns[11].width, rowHeight, gst.FormatINR(sum.Totals.GrandTotal), "1", "R", 1)
}

// fit truncates text with an ellipsis so it stays within width at the current font.
func (p *page) fit(text string, width float64) string {
	if p.doc.GetStringWidth(p.tr(text)) <= width {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && p.doc.GetStringWidth(p.tr(string(runes)+"...")) > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

func (p *page) footer() {
	inv := p.in.Invoice
	sum := p.in.Summary
	x, y := p.doc.GetXY()

	summaryWidth := bodyWidth * 0.35
	wordsWidth := bodyWidth - summaryWidth
	valueWidth := 24.0

	rows := []struct{ label, value string }{
		{"Total Assessable Value", gst.FormatINR(sum.Totals.TotalTaxable)},
		{"CGST", gst.FormatINR(sum.Totals.TotalCGST)},
		{"SGST", gst.FormatINR(sum.Totals.TotalSGST)},
		{"RCM                    Y/N", ""},
		{"Total Invoice Value", gst.FormatINR(sum.Totals.GrandTotal)},
	}
	p.font("B", 7)
	for i, row := range rows {
		p.doc.SetXY(x+wordsWidth, y+float64(i)*lineHeight)
		p.cell(summaryWidth-valueWidth, lineHeight, row.label, "1", "L", 0)
		p.cell(valueWidth, lineHeight, row.value, "1", "R", 0)
	}
	blockHeight := float64(len(rows)) * lineHeight

	p.doc.SetXY(x+1, y+1)
	p.doc.MultiCell(wordsWidth-2, 4, p.tr("CGST In Words: "+sum.Words.CGST), "", "L", false)
	p.doc.SetX(x + 1)
	p.doc.MultiCell(wordsWidth-2, 4, p.tr("SGST In Words: "+sum.Words.SGST), "", "L", false)
	p.doc.Rect(x, y, wordsWidth, blockHeight, "D")

	p.doc.SetXY(x, y+blockHeight)
	p.doc.MultiCell(bodyWidth, rowHeight, p.tr("Invoice Value in words: "+strings.ToUpper(sum.Words.GrandTotal)), "1", "L", false)

	p.font("", 6.5)
	p.doc.MultiCell(bodyWidth, 3.5, p.tr(declaration), "1", "L", false)

	if inv.Notes != "" {
		p.font("", 7)
		p.doc.MultiCell(bodyWidth, 4, p.tr("Notes: "+inv.Notes), "1", "L", false)
	}

	p.doc.Ln(4)
	p.font("B", 9)
	p.cell(bodyWidth, lineHeight, "For "+inv.SenderName, "", "R", 1)
	p.doc.Ln(14)
	p.cell(bodyWidth, lineHeight, "Authorised Signatory", "", "R", 1)
}

func (p *page) watermark() {
	p.doc.SetPage(1)
	p.doc.TransformBegin()
	p.doc.TransformRotate(15, pageWidth/2, 148)
	p.doc.SetAlpha(0.12, "Normal")
	p.doc.SetTextColor(22, 163, 74)
	p.doc.SetDrawColor(22, 163, 74)
	p.doc.SetLineWidth(3)
	p.font("B", 96)
	p.doc.SetXY(pageWidth/2-55, 148-20)
	p.doc.CellFormat(110, 40, "PAID", "1", 0, "C", false, 0, "")
	p.doc.TransformEnd()
	p.doc.SetAlpha(1, "Normal")
	p.doc.SetTextColor(0, 0, 0)
	p.doc.SetDrawColor(0, 0, 0)
	p.doc.SetLineWidth(0.2)
}
