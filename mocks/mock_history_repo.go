package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"smartinvoice/internal/domain"
)

// MockHistoryRepo is a mock implementation of port.HistoryRepository.
type MockHistoryRepo struct {
	mock.Mock
}

func (m *MockHistoryRepo) Upsert(ctx context.Context, inv *domain.InvoiceData) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockHistoryRepo) Remove(ctx context.Context, invoiceNumber string) error {
	args := m.Called(ctx, invoiceNumber)
	return args.Error(0)
}

func (m *MockHistoryRepo) ListAll(ctx context.Context) ([]domain.InvoiceData, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InvoiceData), args.Error(1)
}

func (m *MockHistoryRepo) Get(ctx context.Context, invoiceNumber string) (*domain.InvoiceData, error) {
	args := m.Called(ctx, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InvoiceData), args.Error(1)
}

// MockSequenceAllocator is a mock implementation of port.SequenceAllocator.
type MockSequenceAllocator struct {
	mock.Mock
}

func (m *MockSequenceAllocator) Next(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockHealthChecker is a mock implementation of port.HealthChecker.
type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
