package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"vendex/internal/domain"
)

// MockProductRepo is a mock implementation of port.ProductRepository.
type MockProductRepo struct {
	mock.Mock
}

func (m *MockProductRepo) InsertProducts(ctx context.Context, products []domain.CatalogueProduct) error {
	args := m.Called(ctx, products)
	return args.Error(0)
}
