package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"vendex/internal/domain"
	"vendex/internal/port"
)

type vendorRepo struct {
	db *sqlx.DB
}

// NewVendorRepo creates a new PostgreSQL-backed VendorRepository.
func NewVendorRepo(db *sqlx.DB) port.VendorRepository {
	return &vendorRepo{db: db}
}

func (r *vendorRepo) GetByID(ctx context.Context, vendorID uuid.UUID) (*domain.Vendor, error) {
	var v domain.Vendor
	err := r.db.GetContext(ctx, &v, "SELECT * FROM vendors WHERE id = $1", vendorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrVendorNotFound
		}
		return nil, fmt.Errorf("vendorRepo.GetByID: %w", err)
	}
	return &v, nil
}

func (r *vendorRepo) ListByStatus(ctx context.Context, status domain.VendorStatus) ([]domain.Vendor, error) {
	var vendors []domain.Vendor
	err := r.db.SelectContext(ctx, &vendors,
		"SELECT * FROM vendors WHERE status = $1 ORDER BY created_at", status)
	if err != nil {
		return nil, fmt.Errorf("vendorRepo.ListByStatus: %w", err)
	}
	return vendors, nil
}

// ListOutstandingDocuments returns documents whose normalized type has no
// extraction result yet. Documents keep the spelling the vendor uploaded
// with while results are keyed by canonical type, so the two cannot be
// joined column to column; the comparison happens here over normalized
// types.
func (r *vendorRepo) ListOutstandingDocuments(ctx context.Context, vendorIDs []uuid.UUID) ([]domain.VendorDocument, error) {
	if len(vendorIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(
		`SELECT * FROM vendor_documents WHERE vendor_id IN (?) ORDER BY uploaded_at`, vendorIDs)
	if err != nil {
		return nil, fmt.Errorf("vendorRepo.ListOutstandingDocuments in: %w", err)
	}
	var docs []domain.VendorDocument
	if err := r.db.SelectContext(ctx, &docs, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("vendorRepo.ListOutstandingDocuments: %w", err)
	}

	query, args, err = sqlx.In(
		`SELECT vendor_id, document_type FROM extraction_results WHERE vendor_id IN (?)`, vendorIDs)
	if err != nil {
		return nil, fmt.Errorf("vendorRepo.ListOutstandingDocuments results in: %w", err)
	}
	var results []struct {
		VendorID     uuid.UUID `db:"vendor_id"`
		DocumentType string    `db:"document_type"`
	}
	if err := r.db.SelectContext(ctx, &results, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("vendorRepo.ListOutstandingDocuments results: %w", err)
	}

	type resultKey struct {
		vendorID uuid.UUID
		docType  domain.DocumentType
	}
	have := make(map[resultKey]struct{}, len(results))
	for _, res := range results {
		have[resultKey{res.VendorID, domain.NormalizeDocumentType(res.DocumentType)}] = struct{}{}
	}

	outstanding := docs[:0]
	for _, d := range docs {
		key := resultKey{d.VendorID, domain.NormalizeDocumentType(string(d.DocumentType))}
		if _, ok := have[key]; !ok {
			outstanding = append(outstanding, d)
		}
	}
	return outstanding, nil
}

// ClaimForProcessing is conditional on the current status so two concurrent
// batching passes cannot double-claim the same vendor.
func (r *vendorRepo) ClaimForProcessing(ctx context.Context, vendorIDs []uuid.UUID) (int, error) {
	if len(vendorIDs) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(
		`UPDATE vendors SET status = ?, updated_at = ?
		 WHERE id IN (?) AND status = ?`,
		domain.VendorStatusProcessing, time.Now().UTC(), vendorIDs, domain.VendorStatusReadyForExtraction)
	if err != nil {
		return 0, fmt.Errorf("vendorRepo.ClaimForProcessing in: %w", err)
	}
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("vendorRepo.ClaimForProcessing: %w", err)
	}
	claimed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("vendorRepo.ClaimForProcessing rows: %w", err)
	}
	return int(claimed), nil
}

func (r *vendorRepo) UpsertResult(ctx context.Context, result *domain.ExtractionResult) error {
	result.ExtractedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO extraction_results (vendor_id, document_type, data, confidence, source_batch_id, extracted_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (vendor_id, document_type) DO UPDATE SET
		   data = EXCLUDED.data,
		   confidence = EXCLUDED.confidence,
		   source_batch_id = EXCLUDED.source_batch_id,
		   extracted_at = EXCLUDED.extracted_at`,
		result.VendorID, result.DocumentType, result.Data, result.Confidence,
		result.SourceBatch, result.ExtractedAt)
	if err != nil {
		return fmt.Errorf("vendorRepo.UpsertResult: %w", err)
	}
	return nil
}

// ListMissingResultTypes reports the normalized document types the vendor
// uploaded that still lack an extraction result. Both sides are normalized
// in Go for the same reason as ListOutstandingDocuments: a stored
// "pan_card" document must count as covered by a result keyed "pan".
func (r *vendorRepo) ListMissingResultTypes(ctx context.Context, vendorID uuid.UUID) ([]domain.DocumentType, error) {
	var docTypes []string
	err := r.db.SelectContext(ctx, &docTypes,
		`SELECT DISTINCT document_type FROM vendor_documents WHERE vendor_id = $1`, vendorID)
	if err != nil {
		return nil, fmt.Errorf("vendorRepo.ListMissingResultTypes documents: %w", err)
	}
	var resultTypes []string
	err = r.db.SelectContext(ctx, &resultTypes,
		`SELECT DISTINCT document_type FROM extraction_results WHERE vendor_id = $1`, vendorID)
	if err != nil {
		return nil, fmt.Errorf("vendorRepo.ListMissingResultTypes results: %w", err)
	}
	return domain.MissingResultTypes(docTypes, resultTypes), nil
}

func (r *vendorRepo) MarkExtractionCompleted(ctx context.Context, vendorID uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE vendors SET status = $1, updated_at = $2
		 WHERE id = $3 AND status = $4`,
		domain.VendorStatusExtractionCompleted, time.Now().UTC(),
		vendorID, domain.VendorStatusProcessing)
	if err != nil {
		return false, fmt.Errorf("vendorRepo.MarkExtractionCompleted: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("vendorRepo.MarkExtractionCompleted rows: %w", err)
	}
	return rows == 1, nil
}
