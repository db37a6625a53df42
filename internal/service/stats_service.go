package service

import (
	"context"
	"fmt"

	"vendex/internal/domain"
	"vendex/internal/port"
)

// PipelineOverview bundles database-side processing counts with the live
// state of the dispatch queue.
type PipelineOverview struct {
	Processing *domain.ProcessingStats `json:"processing"`
	Queue      *domain.QueueStats      `json:"queue"`
}

// StatsService exposes aggregate pipeline statistics for operators.
type StatsService interface {
	GetOverview(ctx context.Context) (*PipelineOverview, error)
}

type statsService struct {
	statsRepo  port.StatsRepository
	dispatcher port.BatchDispatcher
}

// NewStatsService creates a new StatsService.
func NewStatsService(statsRepo port.StatsRepository, dispatcher port.BatchDispatcher) StatsService {
	return &statsService{statsRepo: statsRepo, dispatcher: dispatcher}
}

func (s *statsService) GetOverview(ctx context.Context) (*PipelineOverview, error) {
	processing, err := s.statsRepo.GetProcessingStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("statsService.GetOverview: %w", err)
	}
	queue, err := s.dispatcher.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("statsService.GetOverview queue: %w", err)
	}
	return &PipelineOverview{Processing: processing, Queue: queue}, nil
}
