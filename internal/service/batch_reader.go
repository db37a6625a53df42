package service

import (
	"context"

	"github.com/google/uuid"

	"vendex/internal/domain"
	"vendex/internal/port"
)

// BatchReader serves batch lookups for the operator API.
type BatchReader interface {
	GetByID(ctx context.Context, batchID uuid.UUID) (*domain.Batch, error)
	List(ctx context.Context, filter domain.BatchFilter, offset, limit int) ([]domain.Batch, int, error)
}

type batchReader struct {
	batchRepo port.BatchRepository
}

// NewBatchReader creates a new BatchReader.
func NewBatchReader(batchRepo port.BatchRepository) BatchReader {
	return &batchReader{batchRepo: batchRepo}
}

func (r *batchReader) GetByID(ctx context.Context, batchID uuid.UUID) (*domain.Batch, error) {
	return r.batchRepo.GetByID(ctx, batchID)
}

func (r *batchReader) List(ctx context.Context, filter domain.BatchFilter, offset, limit int) ([]domain.Batch, int, error) {
	return r.batchRepo.List(ctx, filter, offset, limit)
}
