package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"vendex/internal/domain"
)

// MockSchedulerControl is a mock implementation of port.SchedulerControl.
type MockSchedulerControl struct {
	mock.Mock
}

func (m *MockSchedulerControl) Pause(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSchedulerControl) Resume(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSchedulerControl) Stats(ctx context.Context) (*domain.SchedulerStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SchedulerStats), args.Error(1)
}
