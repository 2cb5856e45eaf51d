package async

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsetexam/question-bank/internal/entity"
	"github.com/gsetexam/question-bank/internal/pipeline"
)

// A job with a missing required field fails validation before any stage
// runs, which lets these tests exercise the queue machinery without wiring
// recognition or compilation.
func invalidJob(chapter int) entity.ChapterJob {
	return entity.ChapterJob{
		ImagePath:     "input/question_sheets/ch.png",
		AnswerKeyPath: "input/answer_keys/ch.txt",
		ChapterNumber: chapter,
		ChapterName:   "Kinematics",
		Subject:       "", // required
	}
}

func newTestQueue(t *testing.T, opts ...Option) (*JobQueue, *resultSink) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	proc := pipeline.NewProcessor(logger, nil, nil, nil, nil, nil)
	sink := &resultSink{}
	opts = append(opts, WithResultFunc(sink.record))
	return NewJobQueue(proc, logger, opts...), sink
}

type resultSink struct {
	mu      sync.Mutex
	results []entity.JobResult
}

func (s *resultSink) record(r entity.JobResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, r)
}

func (s *resultSink) all() []entity.JobResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.JobResult(nil), s.results...)
}

func TestJobQueue_ProcessesEnqueuedJobs(t *testing.T) {
	q, sink := newTestQueue(t)

	for i := 1; i <= 3; i++ {
		require.NoError(t, q.Enqueue(context.Background(), Job{Chapter: invalidJob(i)}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	results := sink.all()
	require.Len(t, results, 3)
	for _, r := range results {
		assert.True(t, r.Failed())
		assert.NotZero(t, r.JobID)
	}
}

func TestJobQueue_EnqueueStampsSubmittedAt(t *testing.T) {
	q, _ := newTestQueue(t)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		q.Shutdown(ctx)
	}()

	job := Job{Chapter: invalidJob(1)}
	require.True(t, job.SubmittedAt.IsZero())
	require.NoError(t, q.Enqueue(context.Background(), job))
}

func TestJobQueue_EnqueueAfterShutdownIsDropped(t *testing.T) {
	q, sink := newTestQueue(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	q.Shutdown(ctx)

	require.NoError(t, q.Enqueue(context.Background(), Job{Chapter: invalidJob(9)}))
	assert.Empty(t, sink.all())
}

func TestJobQueue_ShutdownIsIdempotent(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	q.Shutdown(ctx)
	q.Shutdown(ctx) // must not panic on the closed channel
}

func TestJobQueue_MultipleWorkersDrain(t *testing.T) {
	q, sink := newTestQueue(t, WithWorkers(4), WithQueueSize(8))

	for i := 1; i <= 8; i++ {
		require.NoError(t, q.Enqueue(context.Background(), Job{Chapter: invalidJob(i)}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	assert.Len(t, sink.all(), 8)
}
