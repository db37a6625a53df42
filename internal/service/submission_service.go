package service

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"vendex/internal/config"
	"vendex/internal/domain"
	"vendex/internal/port"
)

// SubmissionService executes batch submission jobs: it presigns each
// document and hands it to the extraction service, recording a task context
// per document before anything leaves the process.
type SubmissionService interface {
	SubmitBatch(ctx context.Context, batchID uuid.UUID) error
	AbandonBatch(ctx context.Context, batchID uuid.UUID) error
}

type submissionService struct {
	batchRepo  port.BatchRepository
	store      port.TaskContextStore
	storage    port.ObjectStorage
	extraction port.ExtractionClient
	limiter    *rate.Limiter

	bucket        string
	presignExpiry int64
	callbackURL   string
	contextTTL    time.Duration
}

// NewSubmissionService creates a new SubmissionService. The rate limit is
// shared across every worker in this process, so document submissions never
// exceed it no matter how many batches run concurrently.
func NewSubmissionService(
	batchRepo port.BatchRepository,
	store port.TaskContextStore,
	storage port.ObjectStorage,
	extraction port.ExtractionClient,
	cfg *config.Config,
) SubmissionService {
	window := cfg.Queue.RateWindow
	if window <= 0 {
		window = time.Minute
	}
	limit := rate.Every(window / time.Duration(max(cfg.Queue.RateLimit, 1)))

	return &submissionService{
		batchRepo:     batchRepo,
		store:         store,
		storage:       storage,
		extraction:    extraction,
		limiter:       rate.NewLimiter(limit, max(cfg.Queue.RateLimit, 1)),
		bucket:        cfg.S3.Bucket,
		presignExpiry: cfg.S3.PresignExpiry,
		callbackURL:   fmt.Sprintf("%s/api/v1/callbacks/extraction", cfg.Extraction.CallbackBaseURL),
		contextTTL:    cfg.TaskCtx.TTL,
	}
}

func (s *submissionService) SubmitBatch(ctx context.Context, batchID uuid.UUID) error {
	b, err := s.batchRepo.GetByID(ctx, batchID)
	if err != nil {
		return fmt.Errorf("submissionService.SubmitBatch: %w", err)
	}
	if b.Status.IsTerminal() {
		// A retried queue delivery after the batch already finished.
		log.Printf("submissionService: batch %s already %s, skipping", b.ID, b.Status)
		return nil
	}

	if err := s.batchRepo.MarkSubmitting(ctx, b.ID); err != nil {
		return fmt.Errorf("submissionService.SubmitBatch: %w", err)
	}

	var submitted, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)

	for _, doc := range b.Documents {
		doc := doc
		g.Go(func() error {
			if err := s.submitDocument(gctx, b, doc); err != nil {
				failed.Add(1)
				log.Printf("submissionService: document %s/%s of batch %s failed: %v",
					doc.VendorID, doc.DocumentType, b.ID, err)
				if appendErr := s.batchRepo.AppendError(gctx, b.ID, domain.BatchError{
					VendorID:     doc.VendorID,
					DocumentType: doc.DocumentType,
					Message:      err.Error(),
					OccurredAt:   time.Now().UTC(),
				}); appendErr != nil {
					log.Printf("submissionService: recording error for batch %s failed: %v", b.ID, appendErr)
				}
				return nil
			}
			submitted.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	if err := s.batchRepo.MarkProcessing(ctx, b.ID, int(submitted.Load()), int(failed.Load())); err != nil {
		return fmt.Errorf("submissionService.SubmitBatch: %w", err)
	}
	log.Printf("submissionService: batch %s submitted (ok=%d, failed=%d of %d)",
		b.ID, submitted.Load(), failed.Load(), b.TotalDocuments)
	return nil
}

// AbandonBatch marks a batch failed after its submission job exhausted its
// retries without ever recording a submission outcome. Whole-batch failed is
// reserved for exactly this case; once a batch reaches processing the
// per-document accounting owns its fate and the guarded update is a no-op.
func (s *submissionService) AbandonBatch(ctx context.Context, batchID uuid.UUID) error {
	done, err := s.batchRepo.MarkFailed(ctx, batchID)
	if err != nil {
		return fmt.Errorf("submissionService.AbandonBatch: %w", err)
	}
	if done {
		log.Printf("submissionService: batch %s abandoned after retry exhaustion", batchID)
	}
	return nil
}

func (s *submissionService) submitDocument(ctx context.Context, b *domain.Batch, doc domain.BatchDocument) error {
	taskID := uuid.NewString()

	// The context goes in before the request leaves, so a callback can never
	// race an unwritten binding. A submission failure keeps the entry; the
	// extraction service may still process the document and call back, and
	// the TTL reclaims it otherwise.
	tc := &domain.TaskContext{
		BatchID:      b.ID,
		VendorID:     doc.VendorID,
		DocumentType: doc.DocumentType,
		StorageKey:   doc.StorageKey,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.Put(ctx, taskID, tc, s.contextTTL); err != nil {
		return fmt.Errorf("store task context: %w", err)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	url, err := s.storage.GetPresignedURL(ctx, s.bucket, doc.StorageKey, s.presignExpiry)
	if err != nil {
		return fmt.Errorf("presign %s: %w", doc.StorageKey, err)
	}

	req := &port.ExtractionRequest{
		DocumentPath: url,
		TaskID:       taskID,
		CallbackURL:  s.callbackURL,
	}
	if err := s.extraction.Submit(ctx, string(doc.DocumentType), req); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	return nil
}
