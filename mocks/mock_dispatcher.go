package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"vendex/internal/domain"
)

// MockDispatcher is a mock implementation of port.BatchDispatcher.
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) EnqueueSubmission(ctx context.Context, batch *domain.Batch) (string, error) {
	args := m.Called(ctx, batch)
	return args.String(0), args.Error(1)
}

func (m *MockDispatcher) Stats(ctx context.Context) (*domain.QueueStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueueStats), args.Error(1)
}
