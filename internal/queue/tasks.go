// Package queue wires the dispatch queue, submission workers, and the
// recurring batching trigger on top of asynq/Redis.
package queue

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"vendex/internal/domain"
)

// Task type names.
const (
	TypeBatchSubmit = "batch:submit"
	TypeBatchingRun = "batching:run"
	TypeStaleSweep  = "batches:sweep"
)

// Queue names. Submission queues are consumed with strict-priority weights;
// the scheduler queue is consumed by a dedicated concurrency-1 server so
// scheduled batching passes never overlap.
const (
	QueueScheduler      = "scheduler"
	QueueExtractionHigh = "extraction:high"
	QueueExtractionNorm = "extraction:normal"
	QueueExtractionLow  = "extraction:low"
)

// SubmissionQueues maps each priority tier to its queue and weight.
var SubmissionQueues = map[string]int{
	QueueExtractionHigh: 6,
	QueueExtractionNorm: 3,
	QueueExtractionLow:  1,
}

func queueForPriority(p domain.BatchPriority) string {
	switch p {
	case domain.BatchPriorityHigh:
		return QueueExtractionHigh
	case domain.BatchPriorityLow:
		return QueueExtractionLow
	default:
		return QueueExtractionNorm
	}
}

// batchSubmitPayload is the payload of a TypeBatchSubmit task.
type batchSubmitPayload struct {
	BatchID uuid.UUID `json:"batch_id"`
}

// NewBatchSubmitTask builds a submission task for the given batch.
func NewBatchSubmitTask(batchID uuid.UUID) (*asynq.Task, error) {
	payload, err := json.Marshal(batchSubmitPayload{BatchID: batchID})
	if err != nil {
		return nil, fmt.Errorf("queue.NewBatchSubmitTask: %w", err)
	}
	return asynq.NewTask(TypeBatchSubmit, payload), nil
}

// ParseBatchSubmitTask extracts the batch ID from a submission task.
func ParseBatchSubmitTask(t *asynq.Task) (uuid.UUID, error) {
	var p batchSubmitPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return uuid.Nil, fmt.Errorf("queue.ParseBatchSubmitTask: %w", err)
	}
	return p.BatchID, nil
}
