package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"vendex/internal/domain"
	"vendex/internal/service"
)

// MockCallbackService is a mock implementation of service.CallbackService.
type MockCallbackService struct {
	mock.Mock
}

func (m *MockCallbackService) HandleCallback(ctx context.Context, cb *domain.ExtractionCallback) (*service.CallbackResult, error) {
	args := m.Called(ctx, cb)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CallbackResult), args.Error(1)
}
