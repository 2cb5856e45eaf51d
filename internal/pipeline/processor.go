package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gsetexam/question-bank/constants"
	"github.com/gsetexam/question-bank/internal/common"
	"github.com/gsetexam/question-bank/internal/entity"
	"github.com/gsetexam/question-bank/internal/repository"
)

// Processor coordinates the four stages for one chapter job: extraction,
// matching, formatting, compilation, in strict order. A stage failure halts
// the job; there are no partial retries and no skip-ahead. Recovery (fixing
// an input, correcting an artifact) is a human responsibility between runs.
type Processor struct {
	Logger  *slog.Logger
	History repository.JobHistoryRepository // optional; nil disables recording
	Extract *ExtractStage
	Match   *MatchStage
	Format  *FormatStage
	Compile *CompileStage
}

func NewProcessor(
	logger *slog.Logger,
	history repository.JobHistoryRepository,
	extract *ExtractStage,
	match *MatchStage,
	format *FormatStage,
	compile *CompileStage,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		Logger:  logger,
		History: history,
		Extract: extract,
		Match:   match,
		Format:  format,
		Compile: compile,
	}
}

// RunJob executes stages 1->4 for one chapter. Each stage's output is
// persisted before the next stage begins, so every intermediate artifact can
// be inspected on disk.
func (p *Processor) RunJob(ctx context.Context, job entity.ChapterJob) entity.JobResult {
	job = withDefaults(job)

	result := entity.JobResult{
		JobID:     uuid.New(),
		Job:       job,
		Status:    constants.JobStatusPending,
		StartedAt: time.Now().UTC(),
	}
	ctx = common.WithJobID(ctx, result.JobID.String())

	p.Logger.Info("job.start",
		"job_id", result.JobID,
		"chapter", job.ChapterNumber,
		"chapter_name", job.ChapterName,
		"subject", job.Subject,
		"sheet", job.ImagePath,
	)
	p.recordStart(ctx, result)

	if err := validateJob(job); err != nil {
		return p.fail(ctx, result, "", err)
	}

	// Stage 1: extraction
	p.transition(ctx, &result, constants.StageExtraction)
	extraction, err := p.Extract.Run(ctx, job)
	if err != nil {
		return p.fail(ctx, result, constants.StageExtraction, err)
	}

	// Stage 2: matching
	p.transition(ctx, &result, constants.StageMatching)
	matched, err := p.Match.Run(ctx, job, extraction)
	if err != nil {
		return p.fail(ctx, result, constants.StageMatching, err)
	}

	// Stage 3: formatting
	p.transition(ctx, &result, constants.StageFormatting)
	chapterPath, err := p.Format.Run(job, matched)
	if err != nil {
		return p.fail(ctx, result, constants.StageFormatting, err)
	}
	result.ChapterPath = chapterPath

	// Stage 4: compilation
	p.transition(ctx, &result, constants.StageCompilation)
	bookPath, err := p.Compile.Run(ctx, job)
	if err != nil {
		return p.fail(ctx, result, constants.StageCompilation, err)
	}
	result.BookPath = bookPath

	result.Status = constants.JobStatusDone
	result.FinishedAt = time.Now().UTC()
	p.recordFinish(ctx, result)

	p.Logger.Info("job.done",
		"job_id", result.JobID,
		"chapter", job.ChapterNumber,
		"chapter_path", result.ChapterPath,
		"book_path", result.BookPath,
		"elapsed_ms", result.FinishedAt.Sub(result.StartedAt).Milliseconds(),
	)
	return result
}

// RunBatch runs each job independently, in order. One job's failure is
// recorded but does not stop subsequent jobs: their output paths are
// disjoint and nothing mutable is shared between them.
func (p *Processor) RunBatch(ctx context.Context, jobs []entity.ChapterJob) []entity.JobResult {
	results := make([]entity.JobResult, 0, len(jobs))
	succeeded := 0

	for i, job := range jobs {
		p.Logger.Info("batch.job", "index", i+1, "total", len(jobs), "chapter", job.ChapterNumber)
		res := p.RunJob(ctx, job)
		if !res.Failed() {
			succeeded++
		}
		results = append(results, res)
	}

	p.Logger.Info("batch.done",
		"total", len(jobs),
		"succeeded", succeeded,
		"failed", len(jobs)-succeeded,
	)
	return results
}

func (p *Processor) transition(ctx context.Context, result *entity.JobResult, stage constants.Stage) {
	result.Status = constants.StatusForStage(stage)
	p.Logger.Info("job.stage", "job_id", result.JobID, "stage", stage)
	if p.History != nil {
		if err := p.History.RecordStatus(ctx, result.JobID, result.Status); err != nil {
			p.Logger.Warn("history.record_status_failed", "job_id", result.JobID, "error", err)
		}
	}
}

func (p *Processor) fail(ctx context.Context, result entity.JobResult, stage constants.Stage, err error) entity.JobResult {
	result.Status = constants.JobStatusFailed
	result.FailedStage = stage
	result.Err = err
	result.FinishedAt = time.Now().UTC()
	p.Logger.Error("job.failed",
		"job_id", result.JobID,
		"chapter", result.Job.ChapterNumber,
		"stage", stage,
		"error", err,
	)
	p.recordFinish(ctx, result)
	return result
}

func (p *Processor) recordStart(ctx context.Context, result entity.JobResult) {
	if p.History == nil {
		return
	}
	if err := p.History.StartJob(ctx, result.JobID, result.Job); err != nil {
		p.Logger.Warn("history.start_failed", "job_id", result.JobID, "error", err)
	}
}

func (p *Processor) recordFinish(ctx context.Context, result entity.JobResult) {
	if p.History == nil {
		return
	}
	if err := p.History.FinishJob(ctx, result); err != nil {
		p.Logger.Warn("history.finish_failed", "job_id", result.JobID, "error", err)
	}
}

// withDefaults fills the fields the batch file and CLI may omit. The job
// itself stays immutable from the first stage onward.
func withDefaults(job entity.ChapterJob) entity.ChapterJob {
	if job.ExamName == "" {
		job.ExamName = "GSET"
	}
	if job.CurrentDate == "" {
		job.CurrentDate = time.Now().UTC().Format("2006-01-02")
	}
	return job
}

func validateJob(job entity.ChapterJob) error {
	return common.NewValidator().
		Field("image_path", job.ImagePath, common.Required).
		Field("answer_key_file", job.AnswerKeyPath, common.Required).
		Field("chapter_number", job.ChapterNumber, common.Positive).
		Field("chapter_name", job.ChapterName, common.Required).
		Field("subject", job.Subject, common.Required).
		Error()
}
