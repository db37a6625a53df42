package queue

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/hibiken/asynq"

	"vendex/internal/config"
	"vendex/internal/domain"
)

// Scheduler owns the recurring batching trigger and the stale-batch sweep
// trigger. It has an explicit lifecycle: Initialize registers the cron
// entries and starts the underlying asynq scheduler; Pause/Resume throttle
// new scheduled work without losing the registrations; Shutdown stops the
// scheduler. Execution concurrency is pinned to 1 by the dedicated scheduler
// queue server, not by in-process locks.
type Scheduler struct {
	scheduler *asynq.Scheduler
	inspector *asynq.Inspector
	cfg       config.BatchingConfig
	maxRetry  int

	batchEntryID string
	sweepEntryID string
	running      bool

	runsStarted atomic.Int64
	runsOK      atomic.Int64
	runsFailed  atomic.Int64
}

// NewScheduler creates a Scheduler. Initialize must be called before use.
func NewScheduler(redisOpt asynq.RedisClientOpt, batchingCfg config.BatchingConfig, queueCfg config.QueueConfig) *Scheduler {
	return &Scheduler{
		scheduler: asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{
			Location: time.UTC,
			EnqueueErrorHandler: func(task *asynq.Task, opts []asynq.Option, err error) {
				log.Printf("scheduler: enqueue of %s failed: %v", task.Type(), err)
			},
		}),
		inspector: asynq.NewInspector(redisOpt),
		cfg:       batchingCfg,
		maxRetry:  queueCfg.SchedulerRetry,
	}
}

// Initialize drains stale trigger registrations left by a previous process
// incarnation, registers the recurring entries, and starts the scheduler.
func (s *Scheduler) Initialize() error {
	// Triggers enqueued by a dead incarnation would run the same pass twice
	// once this incarnation registers its own entries.
	if n, err := s.inspector.DeleteAllPendingTasks(QueueScheduler); err == nil && n > 0 {
		log.Printf("scheduler: removed %d stale trigger(s) from previous incarnation", n)
	}

	// The uniqueness window holds duplicate triggers to one per minute, the
	// minimum cron granularity.
	opts := []asynq.Option{
		asynq.Queue(QueueScheduler),
		asynq.MaxRetry(s.maxRetry),
		asynq.Unique(time.Minute),
	}

	entryID, err := s.scheduler.Register(s.cfg.Cadence, asynq.NewTask(TypeBatchingRun, nil), opts...)
	if err != nil {
		return fmt.Errorf("scheduler.Initialize register batching: %w", err)
	}
	s.batchEntryID = entryID

	sweepID, err := s.scheduler.Register(s.cfg.SweepCadence, asynq.NewTask(TypeStaleSweep, nil), opts...)
	if err != nil {
		return fmt.Errorf("scheduler.Initialize register sweep: %w", err)
	}
	s.sweepEntryID = sweepID

	if err := s.scheduler.Start(); err != nil {
		return fmt.Errorf("scheduler.Initialize start: %w", err)
	}
	s.running = true
	log.Printf("scheduler: started (cadence=%q, sweep=%q)", s.cfg.Cadence, s.cfg.SweepCadence)
	return nil
}

// Pause suspends processing of scheduled triggers. In-flight batches and
// submitted tasks are unaffected; pausing throttles new work only.
func (s *Scheduler) Pause(ctx context.Context) error {
	if !s.running {
		return domain.ErrSchedulerNotRunning
	}
	if err := s.inspector.PauseQueue(QueueScheduler); err != nil {
		return fmt.Errorf("scheduler.Pause: %w", err)
	}
	log.Printf("scheduler: paused")
	return nil
}

// Resume re-enables processing of scheduled triggers.
func (s *Scheduler) Resume(ctx context.Context) error {
	if !s.running {
		return domain.ErrSchedulerNotRunning
	}
	if err := s.inspector.UnpauseQueue(QueueScheduler); err != nil {
		return fmt.Errorf("scheduler.Resume: %w", err)
	}
	log.Printf("scheduler: resumed")
	return nil
}

// RecordRun tracks the outcome of a batching pass for the stats endpoint.
func (s *Scheduler) RecordRun(err error) {
	s.runsStarted.Add(1)
	if err != nil {
		s.runsFailed.Add(1)
		return
	}
	s.runsOK.Add(1)
}

// Stats reports cadence, pause state, next run time, and recent outcomes.
func (s *Scheduler) Stats(ctx context.Context) (*domain.SchedulerStats, error) {
	stats := &domain.SchedulerStats{
		Cadence:     s.cfg.Cadence,
		RunsStarted: s.runsStarted.Load(),
		RunsOK:      s.runsOK.Load(),
		RunsFailed:  s.runsFailed.Load(),
	}

	if info, err := s.inspector.GetQueueInfo(QueueScheduler); err == nil {
		stats.Paused = info.Paused
	}

	entries, err := s.inspector.SchedulerEntries()
	if err != nil {
		return nil, fmt.Errorf("scheduler.Stats entries: %w", err)
	}
	for _, e := range entries {
		if e.ID == s.batchEntryID {
			next := e.Next
			stats.NextRun = &next
		}
	}
	return stats, nil
}

// Shutdown stops the scheduler. Registered entries are per-incarnation and
// are recreated by the next Initialize.
func (s *Scheduler) Shutdown() {
	if !s.running {
		return
	}
	s.scheduler.Shutdown()
	s.running = false
}
