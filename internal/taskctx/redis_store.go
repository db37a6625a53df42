// Package taskctx implements the task context store: the ephemeral
// correlation record binding an in-flight extraction task to its batch,
// vendor, and document type.
//
// The store is Redis-backed rather than in-process so a callback can be
// resolved by any server instance, including one started after the instance
// that submitted the task. Entries carry a TTL covering tasks the extraction
// service never reports back on.
package taskctx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"vendex/internal/domain"
	"vendex/internal/port"
)

const (
	keyPrefix      = "vendex:taskctx:"
	consumedPrefix = "vendex:taskctx:done:"

	// consumedTTL bounds how long a consumed task ID stays recognizable as
	// a duplicate. It only needs to outlive the extraction service's
	// redelivery window.
	consumedTTL = 24 * time.Hour
)

type redisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed TaskContextStore.
func NewRedisStore(client *redis.Client) port.TaskContextStore {
	return &redisStore{client: client}
}

func (s *redisStore) Put(ctx context.Context, taskID string, tc *domain.TaskContext, ttl time.Duration) error {
	payload, err := json.Marshal(tc)
	if err != nil {
		return fmt.Errorf("taskctx.Put marshal: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+taskID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("taskctx.Put: %w", err)
	}
	return nil
}

// Consume uses GETDEL so lookup and deletion are one atomic step: the first
// callback for a task wins. The winner leaves a marker behind, so a
// duplicate delivery resolves to already-consumed rather than unknown.
func (s *redisStore) Consume(ctx context.Context, taskID string) (*domain.TaskContext, error) {
	payload, err := s.client.GetDel(ctx, keyPrefix+taskID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			n, exErr := s.client.Exists(ctx, consumedPrefix+taskID).Result()
			if exErr == nil && n > 0 {
				return nil, domain.ErrTaskContextConsumed
			}
			return nil, domain.ErrTaskContextNotFound
		}
		return nil, fmt.Errorf("taskctx.Consume: %w", err)
	}
	if err := s.client.Set(ctx, consumedPrefix+taskID, "1", consumedTTL).Err(); err != nil {
		// The context itself is gone either way; a duplicate would then
		// surface as unknown instead of consumed.
		log.Printf("taskctx: recording consumed marker for task %s failed: %v", taskID, err)
	}
	var tc domain.TaskContext
	if err := json.Unmarshal(payload, &tc); err != nil {
		return nil, fmt.Errorf("taskctx.Consume unmarshal: %w", err)
	}
	return &tc, nil
}
