package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"smartinvoice/internal/invoice"
	"smartinvoice/internal/service"
)

// MockInvoiceService is a mock implementation of service.InvoiceService.
type MockInvoiceService struct {
	mock.Mock
}

func (m *MockInvoiceService) view(args mock.Arguments) (*service.InvoiceView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.InvoiceView), args.Error(1)
}

func (m *MockInvoiceService) Create(ctx context.Context) (*service.InvoiceView, error) {
	return m.view(m.Called(ctx))
}

func (m *MockInvoiceService) Get(ctx context.Context, number string) (*service.InvoiceView, error) {
	return m.view(m.Called(ctx, number))
}

func (m *MockInvoiceService) Update(ctx context.Context, number string, patch invoice.FieldPatch) (*service.InvoiceView, error) {
	return m.view(m.Called(ctx, number, patch))
}

func (m *MockInvoiceService) AddItem(ctx context.Context, number string) (*service.InvoiceView, error) {
	return m.view(m.Called(ctx, number))
}

func (m *MockInvoiceService) UpdateItem(ctx context.Context, number, itemID string, patch invoice.ItemPatch) (*service.InvoiceView, error) {
	return m.view(m.Called(ctx, number, itemID, patch))
}

func (m *MockInvoiceService) UpdateItemTotal(ctx context.Context, number, itemID string, inclusiveTotal float64) (*service.InvoiceView, error) {
	return m.view(m.Called(ctx, number, itemID, inclusiveTotal))
}

func (m *MockInvoiceService) RemoveItem(ctx context.Context, number, itemID string) (*service.InvoiceView, error) {
	return m.view(m.Called(ctx, number, itemID))
}

func (m *MockInvoiceService) SmartFill(ctx context.Context, number, text string) (*service.InvoiceView, error) {
	return m.view(m.Called(ctx, number, text))
}

func (m *MockInvoiceService) SubmitPayment(ctx context.Context, number string) (*service.InvoiceView, error) {
	return m.view(m.Called(ctx, number))
}

func (m *MockInvoiceService) ConfirmPayment(ctx context.Context, number string) (*service.InvoiceView, error) {
	return m.view(m.Called(ctx, number))
}

func (m *MockInvoiceService) CancelPayment(ctx context.Context, number string) (*service.InvoiceView, error) {
	return m.view(m.Called(ctx, number))
}

func (m *MockInvoiceService) DownloadPDF(ctx context.Context, number string) (*service.PDFResult, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PDFResult), args.Error(1)
}

func (m *MockInvoiceService) LoadFromHistory(ctx context.Context, number string) (*service.InvoiceView, error) {
	return m.view(m.Called(ctx, number))
}
