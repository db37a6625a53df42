package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"vendex/internal/domain"
)

// MockBatchReader is a mock implementation of service.BatchReader.
type MockBatchReader struct {
	mock.Mock
}

func (m *MockBatchReader) GetByID(ctx context.Context, batchID uuid.UUID) (*domain.Batch, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Batch), args.Error(1)
}

func (m *MockBatchReader) List(ctx context.Context, filter domain.BatchFilter, offset, limit int) ([]domain.Batch, int, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Batch), args.Int(1), args.Error(2)
}
