package port

import (
	"context"

	"vendex/internal/domain"
)

// ProductRepository stores catalogue products extracted for a vendor.
type ProductRepository interface {
	InsertProducts(ctx context.Context, products []domain.CatalogueProduct) error
}
