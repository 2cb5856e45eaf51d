package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/gsetexam/question-bank/constants"
)

// ChapterJob is one chapter's worth of work through the four-stage pipeline.
// It is immutable once a stage begins; stages only read it.
type ChapterJob struct {
	ImagePath     string `json:"image_path"`
	AnswerKeyPath string `json:"answer_key_file"`
	ChapterNumber int    `json:"chapter_number"`
	ChapterName   string `json:"chapter_name"`
	Subject       string `json:"subject"`
	ExamName      string `json:"exam_name,omitempty"`
	CurrentDate   string `json:"current_date,omitempty"` // YYYY-MM-DD
}

// JobResult is the terminal record for one job run.
type JobResult struct {
	JobID       uuid.UUID           `json:"job_id"`
	Job         ChapterJob          `json:"job"`
	Status      constants.JobStatus `json:"status"`
	FailedStage constants.Stage     `json:"failed_stage,omitempty"`
	Err         error               `json:"-"`
	ChapterPath string              `json:"chapter_path,omitempty"`
	BookPath    string              `json:"book_path,omitempty"`
	StartedAt   time.Time           `json:"started_at"`
	FinishedAt  time.Time           `json:"finished_at"`
}

// Failed reports whether the job reached the terminal FAILED state.
func (r JobResult) Failed() bool {
	return r.Status == constants.JobStatusFailed
}

// BatchConfig mirrors the batch configuration file: a list of chapter jobs
// plus file-level defaults applied to every chapter that omits them.
type BatchConfig struct {
	ExamName string       `json:"exam_name,omitempty"`
	Chapters []ChapterJob `json:"chapters"`
}
