package port

import (
	"context"

	"vendex/internal/domain"
)

// SchedulerControl lets operators pause, resume, and inspect the recurring
// batching trigger.
type SchedulerControl interface {
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error
	Stats(ctx context.Context) (*domain.SchedulerStats, error)
}
