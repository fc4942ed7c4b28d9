// Package worker defines worker contracts for applying accepted submissions
// to the standings asynchronously.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/rankdesk/rankdesk/internal/adapters/mq/queue"
	"github.com/rankdesk/rankdesk/internal/adapters/standings"
	"github.com/rankdesk/rankdesk/internal/domain/session"
	"github.com/rankdesk/rankdesk/pkg/logger"
	"github.com/rankdesk/rankdesk/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Submission is what workers read off the queue.
// Using the queue alias keeps the payload type in one place.
type Submission = queue.Submission

// Recorder accumulates tallied session results into a game's standings.
type Recorder interface {
	Record(ctx context.Context, gameID int64, results []standings.PlayerResult) error
}

// Queue defines how workers receive submissions.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Submission
}

// Worker processes submissions and writes standings updates.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	// It will process any remaining submissions before stopping.
	Shutdown(ctx context.Context) error
}

// SubmissionWorker implements Worker by tallying sessions into results.
type SubmissionWorker struct {
	queue    Queue
	recorder Recorder
	name     string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewSubmissionWorker creates a new worker with configuration options.
func NewSubmissionWorker(queue Queue, recorder Recorder, opts ...Option) *SubmissionWorker {
	w := &SubmissionWorker{
		queue:    queue,
		recorder: recorder,
		name:     "worker", // default name
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	// Apply all options
	for _, opt := range opts {
		opt(w)
	}

	// Set up logger with worker name if not already set
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *SubmissionWorker) Run(ctx context.Context) {
	defer func() {
		close(w.done)
	}()

	subChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case sub, ok := <-subChan:
			if !ok {
				// Channel closed, worker should stop
				return
			}

			if err := w.process(ctx, sub); err != nil {
				w.logger.Error(ctx, "error applying submission", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *SubmissionWorker) Shutdown(ctx context.Context) error {
	// Signal shutdown
	close(w.shutdown)

	// Wait for worker to finish or context to timeout
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process tallies a single submission and records the results.
func (w *SubmissionWorker) process(ctx context.Context, sub Submission) error {
	// Track overall processing latency
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordWorkerProcessingLatency(float64(latency))
	}()

	results := Tally(sub.Session)
	if len(results) == 0 {
		w.logger.Warn(ctx, "submission tallied to no results",
			logger.String("submissionID", sub.SubmissionID),
		)
		return nil
	}

	if err := w.recorder.Record(ctx, sub.GameID, results); err != nil {
		metrics.RecordWorkerError()
		w.logger.Error(ctx, "standings update failed for submission",
			logger.String("submissionID", sub.SubmissionID),
			logger.Error(err),
		)
		return fmt.Errorf("standings update for submission %s: %w", sub.SubmissionID, err)
	}

	metrics.RecordSubmissionApplied()
	w.logger.Debug(ctx, "submission applied",
		logger.String("submissionID", sub.SubmissionID),
		logger.Int("players", len(results)),
	)
	return nil
}

// Tally converts one session into per-player standings results. Each resolved
// performance earns points for the rank it belongs to: the number of entrants
// minus the rank position plus one, scaled by the partial-play weight. A rank
// without a score, or a performance that resolves to no rank, earns nothing.
func Tally(s *session.Session) []standings.PlayerResult {
	if s == nil {
		return nil
	}
	entrants := len(s.Ranks)
	rankOf := s.DerivePerformanceToRank()

	var out []standings.PlayerResult
	for i, p := range s.Performances {
		if p.Player == 0 || rankOf[i] == session.Unresolved {
			continue
		}
		r := s.Ranks[rankOf[i]]
		if r.Score == nil {
			continue
		}
		pts := float64(entrants - r.Position + 1)
		if pts < 0 {
			pts = 0
		}
		out = append(out, standings.PlayerResult{
			PlayerID: int64(p.Player),
			Points:   pts * p.Weight,
			Won:      r.Position == 1,
		})
	}
	return out
}

// Pool manages multiple workers.
type Pool struct {
	workers  []*SubmissionWorker
	queue    Queue
	recorder Recorder

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, recorder Recorder) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*SubmissionWorker, workerCount),
		queue:    queue,
		recorder: recorder,
		logger:   logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewSubmissionWorker(
			queue,
			recorder,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue, then waits for the workers to drain it. It is
// the only pool stop path; each worker's shutdown channel stays untouched so
// the workers exit by reading the closed queue dry.
func (p *Pool) Shutdown(ctx context.Context) error {
	// First close the queue so no new submissions arrive
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	// Wait for all workers to finish or context to timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
