package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"vendex/internal/domain"
	"vendex/internal/service"
)

// MockBatchingService is a mock implementation of service.BatchingService.
type MockBatchingService struct {
	mock.Mock
}

func (m *MockBatchingService) CreateBatchesFromReadyVendors(ctx context.Context) (*service.BatchingSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BatchingSummary), args.Error(1)
}

func (m *MockBatchingService) RunScheduledPass(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockBatchingService) RequeueStale(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockBatchingService) RetryBatch(ctx context.Context, batchID uuid.UUID) (*domain.Batch, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Batch), args.Error(1)
}
