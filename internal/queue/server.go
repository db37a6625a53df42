package queue

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"vendex/internal/config"
)

// BatchSubmitter submits one persisted batch to the extraction service.
// AbandonBatch is invoked once a submission job has burned every retry.
type BatchSubmitter interface {
	SubmitBatch(ctx context.Context, batchID uuid.UUID) error
	AbandonBatch(ctx context.Context, batchID uuid.UUID) error
}

// BatchingRunner executes one batching pass over ready vendors.
type BatchingRunner interface {
	RunScheduledPass(ctx context.Context) error
}

// StaleSweeper requeues batches stuck before their submission completed.
type StaleSweeper interface {
	RequeueStale(ctx context.Context) (int, error)
}

// NewSubmissionServer builds the bounded-concurrency worker server consuming
// the priority submission queues. Failed jobs are retried with asynq's
// exponential backoff up to the configured attempt count.
func NewSubmissionServer(redisOpt asynq.RedisClientOpt, cfg config.QueueConfig, submitter BatchSubmitter) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency:    cfg.Concurrency,
		Queues:         SubmissionQueues,
		StrictPriority: true,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			log.Printf("submissionServer: %s failed (attempt %d/%d): %v", task.Type(), retried, maxRetry, err)
			if retried < maxRetry {
				return
			}
			batchID, perr := ParseBatchSubmitTask(task)
			if perr != nil {
				return
			}
			if aerr := submitter.AbandonBatch(context.Background(), batchID); aerr != nil {
				log.Printf("submissionServer: abandoning batch %s failed: %v", batchID, aerr)
			}
		}),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBatchSubmit, func(ctx context.Context, t *asynq.Task) error {
		batchID, err := ParseBatchSubmitTask(t)
		if err != nil {
			// Malformed payloads never become valid; don't burn retries.
			log.Printf("submissionServer: dropping malformed task: %v", err)
			return nil
		}
		return submitter.SubmitBatch(ctx, batchID)
	})
	return srv, mux
}

// NewSchedulerServer builds the concurrency-1 server consuming the scheduler
// queue, which is what makes scheduled batching passes non-overlapping.
func NewSchedulerServer(redisOpt asynq.RedisClientOpt, runner BatchingRunner, sweeper StaleSweeper) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 1,
		Queues:      map[string]int{QueueScheduler: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Printf("schedulerServer: %s failed: %v", task.Type(), err)
		}),
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBatchingRun, func(ctx context.Context, t *asynq.Task) error {
		return runner.RunScheduledPass(ctx)
	})
	mux.HandleFunc(TypeStaleSweep, func(ctx context.Context, t *asynq.Task) error {
		n, err := sweeper.RequeueStale(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Printf("schedulerServer: requeued %d stale batch(es)", n)
		}
		return nil
	})
	return srv, mux
}
