package queue

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"vendex/internal/config"
	"vendex/internal/domain"
	"vendex/internal/port"
)

type dispatcher struct {
	client    *asynq.Client
	inspector *asynq.Inspector
	cfg       config.QueueConfig
}

// NewDispatcher creates an asynq-backed BatchDispatcher.
func NewDispatcher(redisOpt asynq.RedisClientOpt, cfg config.QueueConfig) port.BatchDispatcher {
	return &dispatcher{
		client:    asynq.NewClient(redisOpt),
		inspector: asynq.NewInspector(redisOpt),
		cfg:       cfg,
	}
}

func (d *dispatcher) EnqueueSubmission(ctx context.Context, batch *domain.Batch) (string, error) {
	task, err := NewBatchSubmitTask(batch.ID)
	if err != nil {
		return "", err
	}
	info, err := d.client.EnqueueContext(ctx, task,
		asynq.Queue(queueForPriority(batch.Priority)),
		asynq.MaxRetry(d.cfg.MaxRetries),
		asynq.Timeout(d.cfg.JobTimeout),
	)
	if err != nil {
		return "", fmt.Errorf("dispatcher.EnqueueSubmission: %w", err)
	}
	return info.ID, nil
}

func (d *dispatcher) Stats(ctx context.Context) (*domain.QueueStats, error) {
	stats := &domain.QueueStats{Queues: make(map[string]domain.QueueCounts)}

	names := []string{QueueScheduler, QueueExtractionHigh, QueueExtractionNorm, QueueExtractionLow}
	for _, name := range names {
		info, err := d.inspector.GetQueueInfo(name)
		if err != nil {
			// A queue does not exist in Redis until its first job.
			continue
		}
		stats.Queues[name] = domain.QueueCounts{
			Pending:   info.Pending,
			Active:    info.Active,
			Scheduled: info.Scheduled,
			Retry:     info.Retry,
			Archived:  info.Archived,
			Paused:    info.Paused,
		}
	}

	servers, err := d.inspector.Servers()
	if err != nil {
		return nil, fmt.Errorf("dispatcher.Stats servers: %w", err)
	}
	for _, srv := range servers {
		stats.Workers += srv.Concurrency
	}
	return stats, nil
}
