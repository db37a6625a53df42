package port

import (
	"context"

	"vendex/internal/domain"
)

// BatchDispatcher enqueues batch submission jobs onto the durable dispatch
// queue and exposes queue observability.
type BatchDispatcher interface {
	// EnqueueSubmission enqueues a submission job for the batch on the queue
	// matching its priority tier and returns the queue's job ID.
	EnqueueSubmission(ctx context.Context, batch *domain.Batch) (string, error)

	Stats(ctx context.Context) (*domain.QueueStats, error)
}
