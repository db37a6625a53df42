package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"vendex/internal/domain"
)

// BatchRepository provides access to batch records and their progress
// counters.
type BatchRepository interface {
	CreateBatches(ctx context.Context, batches []*domain.Batch) error
	GetByID(ctx context.Context, batchID uuid.UUID) (*domain.Batch, error)
	List(ctx context.Context, filter domain.BatchFilter, offset, limit int) ([]domain.Batch, int, error)

	SetJobID(ctx context.Context, batchID uuid.UUID, jobID string) error

	// MarkSubmitting moves the batch to submitting and zeroes its progress
	// counters and error list.
	MarkSubmitting(ctx context.Context, batchID uuid.UUID) error

	// MarkProcessing records the submission outcome and moves the batch to
	// processing, where it awaits callbacks.
	MarkProcessing(ctx context.Context, batchID uuid.UUID, submitted, failed int) error

	// IncrementProgress atomically increments completed and one of
	// successful/failed, returning the resulting counter snapshot.
	IncrementProgress(ctx context.Context, batchID uuid.UUID, success bool) (*domain.BatchProgress, error)

	AppendError(ctx context.Context, batchID uuid.UUID, batchErr domain.BatchError) error

	// MarkTerminal assigns a terminal status if the batch is not already
	// terminal. It reports whether this call won the transition.
	MarkTerminal(ctx context.Context, batchID uuid.UUID, status domain.BatchStatus) (bool, error)

	// MarkFailed moves a batch to failed if it never reached processing.
	// Used when the submission job exhausted its retries. It reports
	// whether the transition landed.
	MarkFailed(ctx context.Context, batchID uuid.UUID) (bool, error)

	// ResetForRequeue returns a batch to pending with zeroed progress,
	// preserving its composition, if the batch is still in the observed
	// status. Used by retry and the stale sweep; the guard keeps either
	// from clobbering a batch that moved on concurrently.
	ResetForRequeue(ctx context.Context, batchID uuid.UUID, from domain.BatchStatus) (bool, error)

	// ListStale returns non-terminal batches (pending, submitting, or
	// processing) not updated since the cutoff.
	ListStale(ctx context.Context, updatedBefore time.Time) ([]domain.Batch, error)
}
