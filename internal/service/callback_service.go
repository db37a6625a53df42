package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"vendex/internal/domain"
	"vendex/internal/port"
)

// CallbackResult describes what a processed callback changed.
type CallbackResult struct {
	TaskID       string              `json:"task_id"`
	BatchID      uuid.UUID           `json:"batch_id"`
	VendorID     uuid.UUID           `json:"vendor_id"`
	DocumentType domain.DocumentType `json:"document_type"`
	BatchStatus  domain.BatchStatus  `json:"batch_status"`
	Completed    int                 `json:"completed"`
	Total        int                 `json:"total"`
}

// CallbackService processes completion notifications from the extraction
// service and reconciles batch and vendor state.
type CallbackService interface {
	HandleCallback(ctx context.Context, cb *domain.ExtractionCallback) (*CallbackResult, error)
}

type callbackService struct {
	store       port.TaskContextStore
	vendorRepo  port.VendorRepository
	batchRepo   port.BatchRepository
	productRepo port.ProductRepository
}

// NewCallbackService creates a new CallbackService.
func NewCallbackService(
	store port.TaskContextStore,
	vendorRepo port.VendorRepository,
	batchRepo port.BatchRepository,
	productRepo port.ProductRepository,
) CallbackService {
	return &callbackService{
		store:       store,
		vendorRepo:  vendorRepo,
		batchRepo:   batchRepo,
		productRepo: productRepo,
	}
}

// HandleCallback consumes the task context for the callback's task ID and
// applies the result. Consumption deletes the context, so a duplicate
// delivery of the same task ID resolves to ErrTaskContextConsumed and
// changes no counters.
func (s *callbackService) HandleCallback(ctx context.Context, cb *domain.ExtractionCallback) (*CallbackResult, error) {
	tc, err := s.store.Consume(ctx, cb.TaskID)
	if err != nil {
		return nil, err
	}

	success := cb.Status == domain.CallbackStatusSuccess
	if success {
		if err := s.applyResult(ctx, tc, cb); err != nil {
			// A result we cannot persist counts as a failed document, same
			// as an extraction-side error.
			log.Printf("callbackService: applying result for task %s failed: %v", cb.TaskID, err)
			success = false
			cb.Error = err.Error()
		}
	}
	if !success {
		msg := cb.Error
		if msg == "" {
			msg = "extraction failed without detail"
		}
		if err := s.batchRepo.AppendError(ctx, tc.BatchID, domain.BatchError{
			TaskID:       cb.TaskID,
			VendorID:     tc.VendorID,
			DocumentType: tc.DocumentType,
			Message:      msg,
			OccurredAt:   time.Now().UTC(),
		}); err != nil {
			log.Printf("callbackService: recording error for batch %s failed: %v", tc.BatchID, err)
		}
	}

	progress, err := s.batchRepo.IncrementProgress(ctx, tc.BatchID, success)
	if err != nil {
		return nil, fmt.Errorf("callbackService.HandleCallback progress: %w", err)
	}

	status := progress.Status
	if progress.Completed >= progress.TotalDocuments {
		status, err = s.finalizeBatch(ctx, tc.BatchID, progress)
		if err != nil {
			return nil, err
		}
	}

	return &CallbackResult{
		TaskID:       cb.TaskID,
		BatchID:      tc.BatchID,
		VendorID:     tc.VendorID,
		DocumentType: tc.DocumentType,
		BatchStatus:  status,
		Completed:    progress.Completed,
		Total:        progress.TotalDocuments,
	}, nil
}

// finalizeBatch assigns the terminal status once all documents reported.
// Only the caller whose conditional update lands runs vendor reconciliation,
// so two callbacks finishing a batch at once never double-apply.
func (s *callbackService) finalizeBatch(ctx context.Context, batchID uuid.UUID, progress *domain.BatchProgress) (domain.BatchStatus, error) {
	// Callbacks drive exactly two terminal states. A batch where every
	// document failed still terminates partial_success, which keeps it
	// retryable; failed is reserved for the submission step itself
	// breaking before the per-document boundary.
	status := domain.BatchStatusCompleted
	if progress.Failed > 0 {
		status = domain.BatchStatusPartialSuccess
	}

	won, err := s.batchRepo.MarkTerminal(ctx, batchID, status)
	if err != nil {
		return "", fmt.Errorf("callbackService.finalizeBatch: %w", err)
	}
	if !won {
		b, err := s.batchRepo.GetByID(ctx, batchID)
		if err != nil {
			return "", fmt.Errorf("callbackService.finalizeBatch: %w", err)
		}
		return b.Status, nil
	}

	log.Printf("callbackService: batch %s finished as %s (ok=%d, failed=%d of %d)",
		batchID, status, progress.Successful, progress.Failed, progress.TotalDocuments)

	b, err := s.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return "", fmt.Errorf("callbackService.finalizeBatch: %w", err)
	}
	for _, vendorID := range b.VendorIDs() {
		if err := s.reconcileVendor(ctx, vendorID); err != nil {
			log.Printf("callbackService: reconciling vendor %s failed: %v", vendorID, err)
		}
	}
	return status, nil
}

// reconcileVendor promotes the vendor to extraction_completed once every one
// of its document types has a result. A vendor's documents may span batches,
// so completion is checked against results, never against a single batch.
func (s *callbackService) reconcileVendor(ctx context.Context, vendorID uuid.UUID) error {
	missing, err := s.vendorRepo.ListMissingResultTypes(ctx, vendorID)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return nil
	}
	done, err := s.vendorRepo.MarkExtractionCompleted(ctx, vendorID)
	if err != nil {
		return err
	}
	if done {
		log.Printf("callbackService: vendor %s extraction completed", vendorID)
	}
	return nil
}

// applyResult persists a successful extraction. Catalogue payloads carry per
// product rows; the vendor-level result keeps only the summary so the
// completion check stays uniform across document types.
func (s *callbackService) applyResult(ctx context.Context, tc *domain.TaskContext, cb *domain.ExtractionCallback) error {
	data := cb.ExtractedData
	if tc.DocumentType == domain.DocumentTypeCatalogue {
		stripped, err := s.storeCatalogueProducts(ctx, tc, cb.ExtractedData)
		if err != nil {
			return err
		}
		data = stripped
	}

	return s.vendorRepo.UpsertResult(ctx, &domain.ExtractionResult{
		VendorID:     tc.VendorID,
		DocumentType: tc.DocumentType,
		Data:         data,
		Confidence:   cb.Confidence,
		SourceBatch:  tc.BatchID,
	})
}

func (s *callbackService) storeCatalogueProducts(ctx context.Context, tc *domain.TaskContext, raw json.RawMessage) (json.RawMessage, error) {
	var payload struct {
		Products []json.RawMessage `json:"products"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("parse catalogue payload: %w", err)
	}

	products := make([]domain.CatalogueProduct, 0, len(payload.Products))
	for _, p := range payload.Products {
		var meta struct {
			ModelName string `json:"model_name"`
		}
		if err := json.Unmarshal(p, &meta); err != nil {
			return nil, fmt.Errorf("parse catalogue product: %w", err)
		}
		products = append(products, domain.CatalogueProduct{
			ID:            uuid.New(),
			VendorID:      tc.VendorID,
			SourceBatchID: tc.BatchID,
			ModelName:     meta.ModelName,
			Attributes:    p,
		})
	}
	if len(products) > 0 {
		if err := s.productRepo.InsertProducts(ctx, products); err != nil {
			return nil, fmt.Errorf("store catalogue products: %w", err)
		}
	}

	stripped, err := json.Marshal(map[string]any{
		"product_count":   len(products),
		"source_batch_id": tc.BatchID,
	})
	if err != nil {
		return nil, fmt.Errorf("encode catalogue summary: %w", err)
	}
	return stripped, nil
}
