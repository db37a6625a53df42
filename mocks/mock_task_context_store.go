package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"vendex/internal/domain"
)

// MockTaskContextStore is a mock implementation of port.TaskContextStore.
type MockTaskContextStore struct {
	mock.Mock
}

func (m *MockTaskContextStore) Put(ctx context.Context, taskID string, tc *domain.TaskContext, ttl time.Duration) error {
	args := m.Called(ctx, taskID, tc, ttl)
	return args.Error(0)
}

func (m *MockTaskContextStore) Consume(ctx context.Context, taskID string) (*domain.TaskContext, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TaskContext), args.Error(1)
}
