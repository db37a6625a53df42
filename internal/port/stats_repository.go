package port

import (
	"context"

	"vendex/internal/domain"
)

// StatsRepository computes aggregate processing statistics.
type StatsRepository interface {
	GetProcessingStats(ctx context.Context) (*domain.ProcessingStats, error)
}
