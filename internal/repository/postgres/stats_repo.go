package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"vendex/internal/domain"
	"vendex/internal/port"
)

type statsRepo struct {
	db *sqlx.DB
}

// NewStatsRepo creates a new PostgreSQL-backed StatsRepository.
func NewStatsRepo(db *sqlx.DB) port.StatsRepository {
	return &statsRepo{db: db}
}

const vendorStatsQuery = `SELECT
	COUNT(*) AS total_vendors,
	COUNT(CASE WHEN status = 'ready_for_extraction' THEN 1 END) AS vendors_ready,
	COUNT(CASE WHEN status = 'processing' THEN 1 END) AS vendors_processing,
	COUNT(CASE WHEN status = 'extraction_completed' THEN 1 END) AS vendors_completed
FROM vendors`

const batchStatsQuery = `SELECT
	COUNT(*) AS total_batches,
	COUNT(CASE WHEN status = 'pending' THEN 1 END) AS batches_pending,
	COUNT(CASE WHEN status IN ('submitting', 'processing') THEN 1 END) AS batches_active,
	COUNT(CASE WHEN status = 'completed' THEN 1 END) AS batches_done,
	COUNT(CASE WHEN status = 'partial_success' THEN 1 END) AS batches_partial,
	COUNT(CASE WHEN status = 'failed' THEN 1 END) AS batches_failed,
	COALESCE(SUM(total_documents), 0) AS total_documents
FROM batches`

func (r *statsRepo) GetProcessingStats(ctx context.Context) (*domain.ProcessingStats, error) {
	var stats domain.ProcessingStats
	if err := r.db.GetContext(ctx, &stats, vendorStatsQuery); err != nil {
		return nil, fmt.Errorf("statsRepo.GetProcessingStats vendors: %w", err)
	}

	var batchStats domain.ProcessingStats
	if err := r.db.GetContext(ctx, &batchStats, batchStatsQuery); err != nil {
		return nil, fmt.Errorf("statsRepo.GetProcessingStats batches: %w", err)
	}
	stats.TotalBatches = batchStats.TotalBatches
	stats.BatchesPending = batchStats.BatchesPending
	stats.BatchesActive = batchStats.BatchesActive
	stats.BatchesDone = batchStats.BatchesDone
	stats.BatchesPartial = batchStats.BatchesPartial
	stats.BatchesFailed = batchStats.BatchesFailed
	stats.TotalDocuments = batchStats.TotalDocuments

	return &stats, nil
}
