package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"vendex/internal/port"
)

// MockExtractionClient is a mock implementation of port.ExtractionClient.
type MockExtractionClient struct {
	mock.Mock
}

func (m *MockExtractionClient) Submit(ctx context.Context, documentType string, req *port.ExtractionRequest) error {
	args := m.Called(ctx, documentType, req)
	return args.Error(0)
}
