package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrAlreadyQueued is returned when a job with the same key is already waiting to run.
var ErrAlreadyQueued = errors.New("job already queued")

// Job represents a queued background task. Jobs sharing a non-empty Key are coalesced while
// waiting; a job enqueued while its key is running is held and runs once the current run ends.
type Job struct {
	ID       string
	Type     string
	Key      string
	Payload  interface{}
	Attempt  int
	Enqueued time.Time
}

// Handler processes a job.
type Handler func(context.Context, Job) error

// QueueConfig configures worker pool behaviour.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
	// Retryable decides whether a failed job is worth another attempt. Nil retries every failure.
	Retryable func(error) bool
}

// Queue is a lightweight in-memory job dispatcher backed by goroutines.
type Queue struct {
	name    string
	handler Handler

	workers    int
	maxRetries int
	retryDelay time.Duration
	retryable  func(error) bool
	logger     *zap.Logger

	jobs    chan Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
	pending map[string]*keyState
}

// keyState tracks a keyed job. rerun holds the job to run after the current run finishes.
type keyState struct {
	running bool
	rerun   *Job
}

// NewQueue builds a new queue with the provided handler.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Retryable == nil {
		cfg.Retryable = func(error) bool { return true }
	}

	return &Queue{
		name:       name,
		handler:    handler,
		workers:    cfg.Workers,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		retryable:  cfg.Retryable,
		logger:     cfg.Logger,
		jobs:       make(chan Job, cfg.BufferSize),
		pending:    make(map[string]*keyState),
	}
}

// Start begins worker consumption. Safe to call once.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i + 1)
	}
	q.started = true
	q.logger.Sugar().Infow("queue started", "queue", q.name, "workers", q.workers)
}

// Stop cancels workers and waits for them to exit.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.cancel()
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Sugar().Infow("queue stopped", "queue", q.name)
}

// Enqueue pushes a job onto the queue and returns the job ID.
func (q *Queue) Enqueue(job Job) (string, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}

	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return "", fmt.Errorf("queue %s not started", q.name)
	}
	if job.Key != "" {
		if state, ok := q.pending[job.Key]; ok {
			if !state.running || state.rerun != nil {
				q.mu.Unlock()
				return "", ErrAlreadyQueued
			}
			held := job
			state.rerun = &held
			q.mu.Unlock()
			return job.ID, nil
		}
		q.pending[job.Key] = &keyState{}
	}
	q.mu.Unlock()

	if err := q.push(job); err != nil {
		q.release(job)
		return "", err
	}
	return job.ID, nil
}

// Pending reports how many keys have a job waiting or running.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

func (q *Queue) push(job Job) error {
	select {
	case <-q.ctx.Done():
		return fmt.Errorf("queue %s stopped: %w", q.name, q.ctx.Err())
	case q.jobs <- job:
		return nil
	}
}

func (q *Queue) release(job Job) {
	if job.Key == "" {
		return
	}
	q.mu.Lock()
	delete(q.pending, job.Key)
	q.mu.Unlock()
}

func (q *Queue) setRunning(job Job, running bool) {
	if job.Key == "" {
		return
	}
	q.mu.Lock()
	if state, ok := q.pending[job.Key]; ok {
		state.running = running
		if !running {
			// a retry reloads its inputs, so a held rerun adds nothing
			state.rerun = nil
		}
	}
	q.mu.Unlock()
}

// finish ends a keyed run and pushes the held rerun, if any.
func (q *Queue) finish(job Job) {
	if job.Key == "" {
		return
	}
	q.mu.Lock()
	state, ok := q.pending[job.Key]
	if !ok || state.rerun == nil {
		delete(q.pending, job.Key)
		q.mu.Unlock()
		return
	}
	next := *state.rerun
	state.running = false
	state.rerun = nil
	q.mu.Unlock()

	// pushed off the worker so a full buffer cannot stall the only consumer
	go func(j Job) {
		if err := q.push(j); err != nil {
			q.logger.Sugar().Errorw("failed to queue held job", "queue", q.name, "job_id", j.ID, "key", j.Key, "error", err)
			q.release(j)
		}
	}(next)
}

func (q *Queue) worker(workerID int) {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			q.setRunning(job, true)
			if err := q.handler(q.ctx, job); err != nil {
				q.handleFailure(job, err)
				continue
			}
			q.finish(job)
		}
	}
}

func (q *Queue) handleFailure(job Job, err error) {
	job.Attempt++
	if job.Attempt > q.maxRetries || !q.retryable(err) {
		q.logger.Sugar().Errorw("job failed", "queue", q.name, "job_id", job.ID, "type", job.Type, "key", job.Key, "attempt", job.Attempt, "error", err)
		q.finish(job)
		return
	}
	q.setRunning(job, false)
	q.logger.Sugar().Warnw("job failed, retrying", "queue", q.name, "job_id", job.ID, "type", job.Type, "key", job.Key, "attempt", job.Attempt, "error", err)

	go func(j Job) {
		timer := time.NewTimer(q.retryDelay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
			q.release(j)
			return
		case <-timer.C:
			if err := q.push(j); err != nil {
				q.logger.Sugar().Errorw("failed to requeue job", "queue", q.name, "job_id", j.ID, "error", err)
				q.release(j)
			}
		}
	}(job)
}
