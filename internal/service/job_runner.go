package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/schoolforge/timetable-engine/internal/models"
)

// JobRunnerConfig governs worker pool behaviour for generation jobs.
type JobRunnerConfig struct {
	Workers    int
	BufferSize int
	Logger     *zap.Logger
}

// JobWork is the function a runner executes for one queued generation job. It
// receives a cancellable context and may report progress through report.
type JobWork func(ctx context.Context, jobID string, report func(percent int)) (scheduleLogID string, err error)

type queuedJob struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	work   JobWork
}

// JobRunner is a lightweight in-memory dispatcher that tracks the lifecycle
// of asynchronous generation runs: queued, running, finished, failed, or
// cancelled. One job runs per worker slot; excess submissions queue.
type JobRunner struct {
	workers    int
	bufferSize int
	logger     *zap.Logger

	queue chan queuedJob

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	started bool
	ctx     context.Context
	stop    context.CancelFunc
	wg      sync.WaitGroup

	onUpdate func(jobID string, status models.GenerationStatus, progress int, scheduleLogID *string, errMsg *string)
}

// NewJobRunner builds a runner. onUpdate is called from worker goroutines
// whenever a job's state changes; callers typically wire it to a repository
// update.
func NewJobRunner(cfg JobRunnerConfig, onUpdate func(jobID string, status models.GenerationStatus, progress int, scheduleLogID *string, errMsg *string)) *JobRunner {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &JobRunner{
		workers:    cfg.Workers,
		bufferSize: cfg.BufferSize,
		logger:     cfg.Logger,
		queue:      make(chan queuedJob, cfg.BufferSize),
		cancels:    make(map[string]context.CancelFunc),
		onUpdate:   onUpdate,
	}
}

// Start begins worker consumption. Safe to call once.
func (r *JobRunner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.ctx, r.stop = context.WithCancel(ctx)
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(i + 1)
	}
	r.started = true
	r.logger.Sugar().Infow("job runner started", "workers", r.workers)
}

// Stop cancels all running jobs and waits for workers to exit.
func (r *JobRunner) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	r.stop()
	r.mu.Unlock()
	r.wg.Wait()
	r.logger.Sugar().Infow("job runner stopped")
}

// Submit enqueues work under the given job id. The job transitions to
// QUEUED immediately and to PROCESSING once a worker picks it up.
func (r *JobRunner) Submit(jobID string, work JobWork) error {
	r.mu.Lock()
	started := r.started
	parent := r.ctx
	r.mu.Unlock()
	if !started {
		return fmt.Errorf("job runner not started")
	}

	jobCtx, cancel := context.WithCancel(parent)
	r.mu.Lock()
	r.cancels[jobID] = cancel
	r.mu.Unlock()

	r.report(jobID, models.GenerationStatusQueued, 0, nil, nil)

	select {
	case <-parent.Done():
		cancel()
		return fmt.Errorf("job runner stopped: %w", parent.Err())
	case r.queue <- queuedJob{id: jobID, ctx: jobCtx, cancel: cancel, work: work}:
		return nil
	}
}

// Cancel requests cancellation of a running or queued job. It is a no-op if
// the job is not tracked (already finished, or never submitted).
func (r *JobRunner) Cancel(jobID string) bool {
	r.mu.Lock()
	cancel, ok := r.cancels[jobID]
	r.mu.Unlock()
	if !ok {
		return false
	}
	cancel()
	return true
}

func (r *JobRunner) worker(workerID int) {
	defer r.wg.Done()
	for {
		select {
		case <-r.ctx.Done():
			return
		case job := <-r.queue:
			r.runOne(job)
		}
	}
}

func (r *JobRunner) runOne(job queuedJob) {
	defer func() {
		r.mu.Lock()
		delete(r.cancels, job.id)
		r.mu.Unlock()
		job.cancel()
	}()

	r.report(job.id, models.GenerationStatusProcessing, 0, nil, nil)

	scheduleLogID, err := job.work(job.ctx, job.id, func(percent int) {
		r.report(job.id, models.GenerationStatusProcessing, percent, nil, nil)
	})

	switch {
	case job.ctx.Err() != nil:
		r.logger.Sugar().Warnw("generation job cancelled", "job_id", job.id)
		r.report(job.id, models.GenerationStatusCancelled, 100, nil, nil)
	case err != nil:
		r.logger.Sugar().Errorw("generation job failed", "job_id", job.id, "error", err)
		msg := err.Error()
		r.report(job.id, models.GenerationStatusFailed, 100, nil, &msg)
	default:
		id := scheduleLogID
		r.report(job.id, models.GenerationStatusFinished, 100, &id, nil)
	}
}

func (r *JobRunner) report(jobID string, status models.GenerationStatus, progress int, scheduleLogID *string, errMsg *string) {
	if r.onUpdate != nil {
		r.onUpdate(jobID, status, progress, scheduleLogID, errMsg)
	}
}
