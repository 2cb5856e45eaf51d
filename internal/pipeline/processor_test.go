package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsetexam/question-bank/constants"
	"github.com/gsetexam/question-bank/internal/artifact"
	"github.com/gsetexam/question-bank/internal/common"
	"github.com/gsetexam/question-bank/internal/entity"
	"github.com/gsetexam/question-bank/internal/latex"
	"github.com/gsetexam/question-bank/internal/repository"
)

type stubLatexRunner struct{ calls int }

func (s *stubLatexRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, []byte, error) {
	s.calls++
	return []byte("Output written on main.pdf"), nil, nil
}

type recordingHistory struct {
	started  []uuid.UUID
	statuses []constants.JobStatus
	finished []entity.JobResult
}

func (h *recordingHistory) StartJob(_ context.Context, jobID uuid.UUID, _ entity.ChapterJob) error {
	h.started = append(h.started, jobID)
	return nil
}

func (h *recordingHistory) RecordStatus(_ context.Context, _ uuid.UUID, status constants.JobStatus) error {
	h.statuses = append(h.statuses, status)
	return nil
}

func (h *recordingHistory) FinishJob(_ context.Context, result entity.JobResult) error {
	h.finished = append(h.finished, result)
	return nil
}

func (h *recordingHistory) ListRecent(_ context.Context, _ int) ([]repository.JobRecord, error) {
	return nil, nil
}

func (h *recordingHistory) Close() error { return nil }

type processorFixture struct {
	proc    *Processor
	store   *artifact.Store
	rec     *fakeRecognizer
	exp     *fakeExplainer
	history *recordingHistory
	inputs  string
}

func newProcessorFixture(t *testing.T) *processorFixture {
	t.Helper()
	store := newTestStore(t)

	rec := &fakeRecognizer{
		art: entity.ExtractionArtifact{
			Questions: []entity.Question{
				{Number: "1", Text: "q1", Options: []string{"a", "b"}},
				{Number: "2", Text: "q2", Options: []string{"a", "b"}},
			},
		},
	}
	exp := &fakeExplainer{text: "explanation"}
	history := &recordingHistory{}

	compiler := latex.NewCompilerWithRunner(latex.CompilerConfig{Binary: "true"}, &stubLatexRunner{}, nil)

	proc := NewProcessor(nil, history,
		NewExtractStage(store, rec, nil),
		NewMatchStage(store, exp, nil),
		NewFormatStage(store, nil),
		NewCompileStage(store, compiler, nil),
	)

	return &processorFixture{
		proc:    proc,
		store:   store,
		rec:     rec,
		exp:     exp,
		history: history,
		inputs:  t.TempDir(),
	}
}

func (f *processorFixture) job(t *testing.T, chapter int) entity.ChapterJob {
	t.Helper()
	sheet := writeSheet(t, f.inputs, fmt.Sprintf("ch%d.png", chapter))
	keyPath := filepath.Join(f.inputs, "key.txt")
	require.NoError(t, os.WriteFile(keyPath, []byte("1. A\n2. B\n"), 0o644))
	return entity.ChapterJob{
		ImagePath:     sheet,
		AnswerKeyPath: keyPath,
		ChapterNumber: chapter,
		ChapterName:   "Chapter",
		Subject:       "Maths",
	}
}

func TestRunJob_Success(t *testing.T) {
	f := newProcessorFixture(t)
	result := f.proc.RunJob(context.Background(), f.job(t, 1))

	require.False(t, result.Failed(), "unexpected failure: %v", result.Err)
	assert.Equal(t, constants.JobStatusDone, result.Status)
	assert.Contains(t, result.ChapterPath, "chapter_01.md")
	assert.Contains(t, result.BookPath, filepath.Join("output", "book", "main.pdf"))
	assert.NotEqual(t, uuid.Nil, result.JobID)
	assert.False(t, result.FinishedAt.IsZero())

	// Defaults applied before stages ran.
	assert.Equal(t, "GSET", result.Job.ExamName)
	assert.NotEmpty(t, result.Job.CurrentDate)

	// Strict stage order, recorded once per stage.
	assert.Equal(t, []constants.JobStatus{
		constants.JobStatusExtracting,
		constants.JobStatusMatching,
		constants.JobStatusFormatting,
		constants.JobStatusCompiling,
	}, f.history.statuses)
	require.Len(t, f.history.finished, 1)
	assert.Equal(t, constants.JobStatusDone, f.history.finished[0].Status)
}

func TestRunJob_ValidationFailure(t *testing.T) {
	f := newProcessorFixture(t)
	job := f.job(t, 1)
	job.Subject = ""

	result := f.proc.RunJob(context.Background(), job)
	require.True(t, result.Failed())
	assert.True(t, errors.Is(result.Err, common.ErrConfiguration))
	assert.Empty(t, result.FailedStage, "no stage started")
	assert.Equal(t, 0, f.rec.calls)
}

func TestRunJob_HaltsOnFirstFailure(t *testing.T) {
	f := newProcessorFixture(t)
	job := f.job(t, 1)
	job.ImagePath = filepath.Join(f.inputs, "missing.png")

	result := f.proc.RunJob(context.Background(), job)
	require.True(t, result.Failed())
	assert.Equal(t, constants.StageExtraction, result.FailedStage)
	assert.True(t, errors.Is(result.Err, common.ErrMissingInput))

	// Later stages never ran.
	assert.Equal(t, 0, f.exp.calls)
	assert.Equal(t, []constants.JobStatus{constants.JobStatusExtracting}, f.history.statuses)
	_, err := f.store.ReadMatched(1)
	assert.True(t, errors.Is(err, common.ErrMissingInput))
}

func TestRunJob_MatchFailureStopsPipeline(t *testing.T) {
	f := newProcessorFixture(t)
	job := f.job(t, 1)
	job.AnswerKeyPath = filepath.Join(f.inputs, "missing-key.txt")

	result := f.proc.RunJob(context.Background(), job)
	require.True(t, result.Failed())
	assert.Equal(t, constants.StageMatching, result.FailedStage)

	chapters, err := f.store.ListChapters()
	require.NoError(t, err)
	assert.Empty(t, chapters, "formatting never ran")
}

func TestRunBatch_IsolatesFailures(t *testing.T) {
	f := newProcessorFixture(t)

	good1 := f.job(t, 1)
	bad := f.job(t, 2)
	bad.ImagePath = filepath.Join(f.inputs, "missing.png")
	good2 := f.job(t, 3)

	results := f.proc.RunBatch(context.Background(), []entity.ChapterJob{good1, bad, good2})
	require.Len(t, results, 3)

	assert.False(t, results[0].Failed())
	assert.True(t, results[1].Failed())
	assert.Equal(t, constants.StageExtraction, results[1].FailedStage)
	assert.False(t, results[2].Failed(), "a failed job does not stop the rest: %v", results[2].Err)

	// Both successful chapters exist on disk.
	chapters, err := f.store.ListChapters()
	require.NoError(t, err)
	assert.Len(t, chapters, 2)
}

func TestRunBatch_Empty(t *testing.T) {
	f := newProcessorFixture(t)
	results := f.proc.RunBatch(context.Background(), nil)
	assert.Empty(t, results)
}
