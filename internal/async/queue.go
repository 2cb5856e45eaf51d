package async

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"github.com/gsetexam/question-bank/internal/entity"
	"github.com/gsetexam/question-bank/internal/pipeline"
)

// Job is one queued chapter. Extend as needed later (priority, retry, trace).
type Job struct {
	Chapter     entity.ChapterJob
	SubmittedAt time.Time
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// JobQueue feeds queued chapters through the pipeline. The default is a
// single worker: compilation rebuilds the shared book directory, so
// concurrent jobs would race on output/book.
type JobQueue struct {
	proc    *pipeline.Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration

	results func(entity.JobResult)

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*JobQueue)

func WithWorkers(n int) Option {
	return func(q *JobQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *JobQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithJobTimeout(d time.Duration) Option {
	return func(q *JobQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithResultFunc installs a callback invoked with each finished job's result.
func WithResultFunc(fn func(entity.JobResult)) Option {
	return func(q *JobQueue) {
		q.results = fn
	}
}

func NewJobQueue(proc *pipeline.Processor, logger *slog.Logger, opts ...Option) *JobQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &JobQueue{
		proc:    proc,
		logger:  logger,
		workers: 1,
		timeout: 10 * time.Minute,
		ch:      make(chan Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *JobQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					result := q.proc.RunJob(ctx, job.Chapter)
					cancel()

					if result.Failed() {
						q.logger.Error("chapter processing failed",
							"worker_id", workerID,
							"chapter", job.Chapter.ChapterNumber,
							"stage", result.FailedStage,
							"error", result.Err)
					} else {
						q.logger.Info("chapter processed",
							"worker_id", workerID,
							"chapter", job.Chapter.ChapterNumber,
							"chapter_path", result.ChapterPath)
					}
					if q.results != nil {
						q.results(result)
					}
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *JobQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "chapter", job.Chapter.ChapterNumber)
		return nil
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now().UTC()
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued chapter for processing", "chapter", job.Chapter.ChapterNumber)
	default:
		q.logger.Warn("queue full, applying backpressure", "chapter", job.Chapter.ChapterNumber)
		q.ch <- job
	}
	return nil
}

func (q *JobQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
