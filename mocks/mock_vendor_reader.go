package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"vendex/internal/service"
)

// MockVendorReader is a mock implementation of service.VendorReader.
type MockVendorReader struct {
	mock.Mock
}

func (m *MockVendorReader) GetVendor(ctx context.Context, vendorID uuid.UUID) (*service.VendorView, error) {
	args := m.Called(ctx, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.VendorView), args.Error(1)
}
