package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"smartinvoice/internal/port"
)

// MockSmartFiller is a mock implementation of port.SmartFiller.
type MockSmartFiller struct {
	mock.Mock
}

func (m *MockSmartFiller) Fill(ctx context.Context, input port.SmartFillInput) (*port.SmartFillOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.SmartFillOutput), args.Error(1)
}
