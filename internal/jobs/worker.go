package jobs

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/horizon-travel/crm-api/pkg/logger"
)

// Job represents a background task
type Job func(ctx context.Context) error

// Worker runs background jobs on a bounded pool and drives interval
// schedules. Queued jobs go through the pool; async jobs get their own
// goroutine bounded by a semaphore.
type Worker struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	queue  chan Job
	sem    chan struct{}

	active    atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
}

// WorkerStats holds statistics about the worker. CompletedJobs counts every
// finished job; FailedJobs is the subset that returned an error or panicked.
type WorkerStats struct {
	ActiveJobs    int   `json:"active_jobs"`
	CompletedJobs int64 `json:"completed_jobs"`
	FailedJobs    int64 `json:"failed_jobs"`
	QueueLength   int   `json:"queue_length"`
	MaxConcurrent int   `json:"max_concurrent"`
}

// NewWorker creates a worker with numWorkers queue processors. Async jobs
// get twice that concurrency, with a floor of 10.
func NewWorker(numWorkers int) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	asyncLimit := numWorkers * 2
	if asyncLimit < 10 {
		asyncLimit = 10
	}

	w := &Worker{
		ctx:    ctx,
		cancel: cancel,
		queue:  make(chan Job, 100),
		sem:    make(chan struct{}, asyncLimit),
	}

	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.drain(i)
	}

	return w
}

// Enqueue hands a job to the pool. A full queue falls back to running the
// job inline so nothing is dropped.
func (w *Worker) Enqueue(job Job) {
	select {
	case w.queue <- job:
	default:
		logger.Warn("[worker] queue full, running job inline")
		w.run("inline", job)
	}
}

// EnqueueAsync runs a job fire-and-forget in its own goroutine, bounded by
// the async semaphore.
func (w *Worker) EnqueueAsync(job Job) {
	go func() {
		w.sem <- struct{}{}
		defer func() { <-w.sem }()

		w.wg.Add(1)
		defer w.wg.Done()

		w.run("async", job)
	}()
}

// ScheduleEvery runs a job at fixed intervals. The first run happens after
// the interval, not at startup.
func (w *Worker) ScheduleEvery(interval time.Duration, job Job) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.run("scheduled", job)
			}
		}
	}()
}

// Shutdown stops accepting work and waits for in-flight jobs
func (w *Worker) Shutdown() {
	w.cancel()
	close(w.queue)
	w.wg.Wait()
}

// GetStats returns a snapshot of the worker counters
func (w *Worker) GetStats() WorkerStats {
	return WorkerStats{
		ActiveJobs:    int(w.active.Load()),
		CompletedJobs: w.completed.Load(),
		FailedJobs:    w.failed.Load(),
		QueueLength:   len(w.queue),
		MaxConcurrent: cap(w.sem),
	}
}

func (w *Worker) drain(id int) {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case job, ok := <-w.queue:
			if !ok {
				return
			}
			w.run(fmt.Sprintf("worker %d", id), job)
		}
	}
}

// run executes one job with panic recovery and counter tracking
func (w *Worker) run(origin string, job Job) {
	w.active.Add(1)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			logger.Error(fmt.Sprintf("[%s] job panic: %v", origin, r))
			w.failed.Add(1)
		}
		w.active.Add(-1)
		w.completed.Add(1)
	}()

	if err := job(w.ctx); err != nil {
		logger.Error(fmt.Sprintf("[%s] job error: %v", origin, err))
		w.failed.Add(1)
		return
	}
	logger.Debug(fmt.Sprintf("[%s] job completed in %v", origin, time.Since(start)))
}
