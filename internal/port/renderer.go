package port

import (
	"context"

	"smartinvoice/internal/domain"
	"smartinvoice/internal/invoice"
)

// RenderInput is an invoice with its derived amounts already computed.
type RenderInput struct {
	Invoice *domain.InvoiceData
	Summary invoice.Summary
}

// InvoiceRenderer produces the printable document for an invoice.
type InvoiceRenderer interface {
	Render(ctx context.Context, input RenderInput) ([]byte, error)
}
