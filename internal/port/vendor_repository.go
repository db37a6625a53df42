package port

import (
	"context"

	"github.com/google/uuid"

	"vendex/internal/domain"
)

// VendorRepository provides access to vendor records and their extraction
// results.
type VendorRepository interface {
	GetByID(ctx context.Context, vendorID uuid.UUID) (*domain.Vendor, error)
	ListByStatus(ctx context.Context, status domain.VendorStatus) ([]domain.Vendor, error)

	// ListOutstandingDocuments returns the documents of the given vendors
	// whose normalized type has no extraction result yet.
	ListOutstandingDocuments(ctx context.Context, vendorIDs []uuid.UUID) ([]domain.VendorDocument, error)

	// ClaimForProcessing transitions the given vendors from
	// ready_for_extraction to processing in a single conditional update and
	// returns the number of rows actually claimed.
	ClaimForProcessing(ctx context.Context, vendorIDs []uuid.UUID) (int, error)

	UpsertResult(ctx context.Context, result *domain.ExtractionResult) error

	// ListMissingResultTypes returns the vendor's document types that do not
	// yet have a populated extraction result.
	ListMissingResultTypes(ctx context.Context, vendorID uuid.UUID) ([]domain.DocumentType, error)

	// MarkExtractionCompleted transitions the vendor from processing to
	// extraction_completed; a vendor in any other status is left untouched.
	MarkExtractionCompleted(ctx context.Context, vendorID uuid.UUID) (bool, error)
}
