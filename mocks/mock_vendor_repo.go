package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"vendex/internal/domain"
)

// MockVendorRepo is a mock implementation of port.VendorRepository.
type MockVendorRepo struct {
	mock.Mock
}

func (m *MockVendorRepo) GetByID(ctx context.Context, vendorID uuid.UUID) (*domain.Vendor, error) {
	args := m.Called(ctx, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vendor), args.Error(1)
}

func (m *MockVendorRepo) ListByStatus(ctx context.Context, status domain.VendorStatus) ([]domain.Vendor, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Vendor), args.Error(1)
}

func (m *MockVendorRepo) ListOutstandingDocuments(ctx context.Context, vendorIDs []uuid.UUID) ([]domain.VendorDocument, error) {
	args := m.Called(ctx, vendorIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VendorDocument), args.Error(1)
}

func (m *MockVendorRepo) ClaimForProcessing(ctx context.Context, vendorIDs []uuid.UUID) (int, error) {
	args := m.Called(ctx, vendorIDs)
	return args.Int(0), args.Error(1)
}

func (m *MockVendorRepo) UpsertResult(ctx context.Context, result *domain.ExtractionResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockVendorRepo) ListMissingResultTypes(ctx context.Context, vendorID uuid.UUID) ([]domain.DocumentType, error) {
	args := m.Called(ctx, vendorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DocumentType), args.Error(1)
}

func (m *MockVendorRepo) MarkExtractionCompleted(ctx context.Context, vendorID uuid.UUID) (bool, error) {
	args := m.Called(ctx, vendorID)
	return args.Bool(0), args.Error(1)
}
