package service

import (
	"smartinvoice/internal/domain"
	"smartinvoice/internal/invoice"
)

// InvoiceView is a draft with its derived amounts and payment state.
type InvoiceView struct {
	Invoice      *domain.InvoiceData `json:"invoice"`
	Summary      invoice.Summary     `json:"summary"`
	PaymentState domain.PaymentState `json:"paymentState"`
}

// HistoryEntry is a committed invoice with its derived amounts.
type HistoryEntry struct {
	Invoice domain.InvoiceData `json:"invoice"`
	Summary invoice.Summary    `json:"summary"`
}

// PDFResult is a rendered invoice ready to be sent as an attachment.
// ArchiveURL is set only when the PDF was archived to object storage.
type PDFResult struct {
	Filename   string
	Content    []byte
	ArchiveURL string
}

// ExportResult is an encoded history export.
type ExportResult struct {
	Filename    string
	ContentType string
	Content     []byte
}

func newHistoryEntry(inv domain.InvoiceData) HistoryEntry {
	return HistoryEntry{Invoice: inv, Summary: invoice.Summarize(&inv)}
}
