package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"smartinvoice/internal/domain"
	"smartinvoice/internal/service"
)

// MockHistoryService is a mock implementation of service.HistoryService.
type MockHistoryService struct {
	mock.Mock
}

func (m *MockHistoryService) List(ctx context.Context, recentFirst bool) ([]service.HistoryEntry, error) {
	args := m.Called(ctx, recentFirst)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.HistoryEntry), args.Error(1)
}

func (m *MockHistoryService) Get(ctx context.Context, number string) (*service.HistoryEntry, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.HistoryEntry), args.Error(1)
}

func (m *MockHistoryService) Delete(ctx context.Context, number string) error {
	args := m.Called(ctx, number)
	return args.Error(0)
}

func (m *MockHistoryService) Export(ctx context.Context, format domain.ExportFormat) (*service.ExportResult, error) {
	args := m.Called(ctx, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportResult), args.Error(1)
}

func (m *MockHistoryService) DownloadPDF(ctx context.Context, number string) (*service.PDFResult, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PDFResult), args.Error(1)
}
