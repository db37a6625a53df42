package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"vendex/internal/config"
	"vendex/internal/domain"
	"vendex/internal/port"
)

// BatchingSummary describes the outcome of one batching pass. A pass that
// found no eligible vendors returns a zero summary; that is the explicit
// no-work signal, not an error.
type BatchingSummary struct {
	TotalVendors   int                         `json:"total_vendors"`
	TotalDocuments int                         `json:"total_documents"`
	BatchesCreated int                         `json:"batches_created"`
	BatchesByType  map[domain.DocumentType]int `json:"batches_by_type"`
	JobsQueued     int                         `json:"jobs_queued"`
	VendorsClaimed int                         `json:"vendors_claimed"`
}

// RunRecorder receives the outcome of scheduled batching passes.
type RunRecorder interface {
	RecordRun(err error)
}

// BatchingService is the batching engine: it groups outstanding documents of
// ready vendors into bounded same-type batches and hands them to the
// dispatch queue. It also owns batch retry and the stale-batch sweep.
type BatchingService interface {
	CreateBatchesFromReadyVendors(ctx context.Context) (*BatchingSummary, error)
	RunScheduledPass(ctx context.Context) error
	RequeueStale(ctx context.Context) (int, error)
	RetryBatch(ctx context.Context, batchID uuid.UUID) (*domain.Batch, error)
}

type batchingService struct {
	vendorRepo port.VendorRepository
	batchRepo  port.BatchRepository
	dispatcher port.BatchDispatcher
	recorder   RunRecorder
	cfg        config.BatchingConfig
}

// NewBatchingService creates a new BatchingService. The recorder may be nil
// when scheduled-run accounting is not needed (tests, one-off tools).
func NewBatchingService(
	vendorRepo port.VendorRepository,
	batchRepo port.BatchRepository,
	dispatcher port.BatchDispatcher,
	recorder RunRecorder,
	cfg config.BatchingConfig,
) BatchingService {
	return &batchingService{
		vendorRepo: vendorRepo,
		batchRepo:  batchRepo,
		dispatcher: dispatcher,
		recorder:   recorder,
		cfg:        cfg,
	}
}

func (s *batchingService) CreateBatchesFromReadyVendors(ctx context.Context) (*BatchingSummary, error) {
	summary := &BatchingSummary{BatchesByType: map[domain.DocumentType]int{}}

	vendors, err := s.vendorRepo.ListByStatus(ctx, domain.VendorStatusReadyForExtraction)
	if err != nil {
		return nil, fmt.Errorf("batchingService.CreateBatchesFromReadyVendors: %w", err)
	}
	if len(vendors) == 0 || len(vendors) < s.cfg.MinReadyVendors {
		return summary, nil
	}
	summary.TotalVendors = len(vendors)

	vendorIDs := make([]uuid.UUID, len(vendors))
	for i, v := range vendors {
		vendorIDs[i] = v.ID
	}

	docs, err := s.vendorRepo.ListOutstandingDocuments(ctx, vendorIDs)
	if err != nil {
		return nil, fmt.Errorf("batchingService.CreateBatchesFromReadyVendors docs: %w", err)
	}
	if len(docs) == 0 {
		return summary, nil
	}
	summary.TotalDocuments = len(docs)

	batches, touched := buildBatches(docs, s.cfg.MaxBatchSize)

	// Persist every batch before enqueueing any: a crash between the two
	// leaves recoverable pending batches for the stale sweep, never a
	// silently lost one.
	if err := s.batchRepo.CreateBatches(ctx, batches); err != nil {
		return nil, fmt.Errorf("batchingService.CreateBatchesFromReadyVendors persist: %w", err)
	}
	summary.BatchesCreated = len(batches)
	for _, b := range batches {
		summary.BatchesByType[b.DocumentType]++
	}

	for _, b := range batches {
		jobID, err := s.dispatcher.EnqueueSubmission(ctx, b)
		if err != nil {
			// The batch stays pending and is picked up by the stale sweep.
			log.Printf("batchingService: enqueue of batch %s failed: %v", b.ID, err)
			continue
		}
		if err := s.batchRepo.SetJobID(ctx, b.ID, jobID); err != nil {
			log.Printf("batchingService: recording job id for batch %s failed: %v", b.ID, err)
		}
		summary.JobsQueued++
	}

	claimed, err := s.vendorRepo.ClaimForProcessing(ctx, touched)
	if err != nil {
		return nil, fmt.Errorf("batchingService.CreateBatchesFromReadyVendors claim: %w", err)
	}
	summary.VendorsClaimed = claimed

	log.Printf("batchingService: pass complete (vendors=%d, documents=%d, batches=%d, queued=%d, claimed=%d)",
		summary.TotalVendors, summary.TotalDocuments, summary.BatchesCreated, summary.JobsQueued, claimed)
	return summary, nil
}

// RunScheduledPass is the entry point used by the recurring trigger.
func (s *batchingService) RunScheduledPass(ctx context.Context) error {
	_, err := s.CreateBatchesFromReadyVendors(ctx)
	if s.recorder != nil {
		s.recorder.RecordRun(err)
	}
	return err
}

// RequeueStale returns non-terminal batches older than the configured age
// to the queue with their composition intact. A pending batch went stale
// when the process died between persistence and enqueue; a submitting one
// when it died mid-submission. A processing batch goes stale once callbacks
// stop arriving, typically because its task contexts expired. Progress on a
// live batch touches updated_at, so an actively reporting batch is never
// swept.
func (s *batchingService) RequeueStale(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-s.cfg.StaleAfter)
	stale, err := s.batchRepo.ListStale(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("batchingService.RequeueStale: %w", err)
	}

	requeued := 0
	for i := range stale {
		b := &stale[i]
		ok, err := s.requeueBatch(ctx, b)
		if err != nil {
			log.Printf("batchingService: requeue of stale batch %s failed: %v", b.ID, err)
			continue
		}
		if !ok {
			// The batch transitioned between listing and reset.
			continue
		}
		requeued++
	}
	return requeued, nil
}

func (s *batchingService) RetryBatch(ctx context.Context, batchID uuid.UUID) (*domain.Batch, error) {
	b, err := s.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BatchStatusFailed && b.Status != domain.BatchStatusPartialSuccess {
		return nil, domain.ErrBatchNotRetryable
	}

	ok, err := s.requeueBatch(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("batchingService.RetryBatch: %w", err)
	}
	if !ok {
		// The batch left its retryable status under the operator.
		return nil, domain.ErrBatchNotRetryable
	}
	return s.batchRepo.GetByID(ctx, batchID)
}

func (s *batchingService) requeueBatch(ctx context.Context, b *domain.Batch) (bool, error) {
	ok, err := s.batchRepo.ResetForRequeue(ctx, b.ID, b.Status)
	if err != nil || !ok {
		return ok, err
	}
	jobID, err := s.dispatcher.EnqueueSubmission(ctx, b)
	if err != nil {
		return false, err
	}
	if err := s.batchRepo.SetJobID(ctx, b.ID, jobID); err != nil {
		return false, err
	}
	return true, nil
}

// buildBatches groups documents by normalized type and splits each group
// into consecutive batches of at most maxSize. It returns the batches and
// the distinct vendor IDs that contributed at least one document.
func buildBatches(docs []domain.VendorDocument, maxSize int) ([]*domain.Batch, []uuid.UUID) {
	groups := make(map[domain.DocumentType][]domain.BatchDocument)
	touchedSet := make(map[uuid.UUID]struct{})
	var touched []uuid.UUID

	for _, d := range docs {
		t := domain.NormalizeDocumentType(string(d.DocumentType))
		groups[t] = append(groups[t], domain.BatchDocument{
			VendorID:     d.VendorID,
			DocumentType: t,
			StorageKey:   d.StorageKey,
		})
		if _, ok := touchedSet[d.VendorID]; !ok {
			touchedSet[d.VendorID] = struct{}{}
			touched = append(touched, d.VendorID)
		}
	}

	types := make([]domain.DocumentType, 0, len(groups))
	for t := range groups {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	var batches []*domain.Batch
	for _, t := range types {
		refs := groups[t]
		for start := 0; start < len(refs); start += maxSize {
			end := start + maxSize
			if end > len(refs) {
				end = len(refs)
			}
			chunk := refs[start:end]
			batches = append(batches, &domain.Batch{
				ID:             uuid.New(),
				DocumentType:   t,
				Status:         domain.BatchStatusPending,
				Priority:       domain.PriorityForSize(len(chunk)),
				Documents:      append(domain.BatchDocuments{}, chunk...),
				TotalDocuments: len(chunk),
				Errors:         domain.BatchErrors{},
			})
		}
	}
	return batches, touched
}
