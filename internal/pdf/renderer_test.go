package pdf_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartinvoice/internal/domain"
	"smartinvoice/internal/invoice"
	"smartinvoice/internal/pdf"
	"smartinvoice/internal/port"
)

func sampleInvoice(paid bool) *domain.InvoiceData {
	return &domain.InvoiceData{
		InvoiceNumber:   "INDY0187",
		Date:            "2026-10-19",
		SenderName:      "Indy Services",
		SenderAddress:   "12 MG Road\nBengaluru 560001",
		SenderGSTIN:     "29ABCDE1234F1Z5",
		SenderPAN:       "ABCDE1234F",
		SenderCIN:       "U72900KA2020PTC000000",
		SenderEmail:     "billing@example.com",
		ClientName:      "Acme Traders",
		ClientAddress:   "4 Park Street, Kolkata",
		ClientGSTIN:     "NA",
		ClientStateCode: "19",
		DeliveryPlace:   "NA",
		TaxRate:         18,
		Notes:           "Thank you for your business.",
		IsPaid:          paid,
		Items: []domain.LineItem{
			{ID: "1", Description: "Consulting", HSNCode: "998311", Quantity: 2, Unit: "No", Price: 1000},
			{ID: "2", Description: "A very long description that certainly does not fit inside the narrow description column", Quantity: 1.5, Unit: "Hr", Price: 333.33},
		},
	}
}

func render(t *testing.T, inv *domain.InvoiceData) []byte {
	t.Helper()
	out, err := pdf.NewRenderer().Render(context.Background(), port.RenderInput{
		Invoice: inv,
		Summary: invoice.Summarize(inv),
	})
	require.NoError(t, err)
	return out
}

func TestRenderer_Render_ProducesPDF(t *testing.T) {
	out := render(t, sampleInvoice(false))

	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.True(t, bytes.Contains(out, []byte("%%EOF")))
}

func TestRenderer_Render_PaidIsDifferent(t *testing.T) {
	unpaid := render(t, sampleInvoice(false))
	paid := render(t, sampleInvoice(true))

	assert.NotEqual(t, len(unpaid), len(paid))
}

func TestRenderer_Render_NoItems(t *testing.T) {
	inv := sampleInvoice(false)
	inv.Items = nil

	out := render(t, inv)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestRenderer_Render_NilInvoice(t *testing.T) {
	_, err := pdf.NewRenderer().Render(context.Background(), port.RenderInput{})
	assert.ErrorIs(t, err, domain.ErrRenderFailed)
}

func TestRenderer_Render_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pdf.NewRenderer().Render(ctx, port.RenderInput{Invoice: sampleInvoice(false)})
	assert.ErrorIs(t, err, context.Canceled)
}
