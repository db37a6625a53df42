package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"vendex/internal/domain"
	"vendex/internal/port"
)

// VendorView is a vendor record with its extraction progress.
type VendorView struct {
	Vendor       *domain.Vendor        `json:"vendor"`
	MissingTypes []domain.DocumentType `json:"missing_types"`
}

// VendorReader serves vendor lookups for the operator API.
type VendorReader interface {
	GetVendor(ctx context.Context, vendorID uuid.UUID) (*VendorView, error)
}

type vendorReader struct {
	vendorRepo port.VendorRepository
}

// NewVendorReader creates a new VendorReader.
func NewVendorReader(vendorRepo port.VendorRepository) VendorReader {
	return &vendorReader{vendorRepo: vendorRepo}
}

func (r *vendorReader) GetVendor(ctx context.Context, vendorID uuid.UUID) (*VendorView, error) {
	v, err := r.vendorRepo.GetByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	missing, err := r.vendorRepo.ListMissingResultTypes(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("vendorReader.GetVendor: %w", err)
	}
	if missing == nil {
		missing = []domain.DocumentType{}
	}
	return &VendorView{Vendor: v, MissingTypes: missing}, nil
}
