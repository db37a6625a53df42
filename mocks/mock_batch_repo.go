package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"vendex/internal/domain"
)

// MockBatchRepo is a mock implementation of port.BatchRepository.
type MockBatchRepo struct {
	mock.Mock
}

func (m *MockBatchRepo) CreateBatches(ctx context.Context, batches []*domain.Batch) error {
	args := m.Called(ctx, batches)
	return args.Error(0)
}

func (m *MockBatchRepo) GetByID(ctx context.Context, batchID uuid.UUID) (*domain.Batch, error) {
	args := m.Called(ctx, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Batch), args.Error(1)
}

func (m *MockBatchRepo) List(ctx context.Context, filter domain.BatchFilter, offset, limit int) ([]domain.Batch, int, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Batch), args.Int(1), args.Error(2)
}

func (m *MockBatchRepo) SetJobID(ctx context.Context, batchID uuid.UUID, jobID string) error {
	args := m.Called(ctx, batchID, jobID)
	return args.Error(0)
}

func (m *MockBatchRepo) MarkSubmitting(ctx context.Context, batchID uuid.UUID) error {
	args := m.Called(ctx, batchID)
	return args.Error(0)
}

func (m *MockBatchRepo) MarkProcessing(ctx context.Context, batchID uuid.UUID, submitted, failed int) error {
	args := m.Called(ctx, batchID, submitted, failed)
	return args.Error(0)
}

func (m *MockBatchRepo) IncrementProgress(ctx context.Context, batchID uuid.UUID, success bool) (*domain.BatchProgress, error) {
	args := m.Called(ctx, batchID, success)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchProgress), args.Error(1)
}

func (m *MockBatchRepo) AppendError(ctx context.Context, batchID uuid.UUID, batchErr domain.BatchError) error {
	args := m.Called(ctx, batchID, batchErr)
	return args.Error(0)
}

func (m *MockBatchRepo) MarkTerminal(ctx context.Context, batchID uuid.UUID, status domain.BatchStatus) (bool, error) {
	args := m.Called(ctx, batchID, status)
	return args.Bool(0), args.Error(1)
}

func (m *MockBatchRepo) MarkFailed(ctx context.Context, batchID uuid.UUID) (bool, error) {
	args := m.Called(ctx, batchID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBatchRepo) ResetForRequeue(ctx context.Context, batchID uuid.UUID, from domain.BatchStatus) (bool, error) {
	args := m.Called(ctx, batchID, from)
	return args.Bool(0), args.Error(1)
}

func (m *MockBatchRepo) ListStale(ctx context.Context, updatedBefore time.Time) ([]domain.Batch, error) {
	args := m.Called(ctx, updatedBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Batch), args.Error(1)
}
