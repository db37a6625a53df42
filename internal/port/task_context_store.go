package port

import (
	"context"
	"time"

	"vendex/internal/domain"
)

// TaskContextStore holds the binding for each in-flight extraction task.
// Entries expire automatically after the configured TTL, which covers tasks
// the extraction service never reports back on.
type TaskContextStore interface {
	// Put stores the context under the task ID before the task is submitted.
	Put(ctx context.Context, taskID string, tc *domain.TaskContext, ttl time.Duration) error

	// Consume returns and deletes the context in one step, so a duplicate
	// callback delivery finds nothing. Returns domain.ErrTaskContextNotFound
	// for unknown or expired task IDs.
	Consume(ctx context.Context, taskID string) (*domain.TaskContext, error)
}
