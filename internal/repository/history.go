package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/gsetexam/question-bank/constants"
	"github.com/gsetexam/question-bank/internal/common"
	"github.com/gsetexam/question-bank/internal/entity"
)

// JobHistoryRepository persists job lifecycles so past runs can be inspected
// after the process exits. Recording is best-effort from the caller's point
// of view: a history write failure never fails the job itself.
type JobHistoryRepository interface {
	StartJob(ctx context.Context, jobID uuid.UUID, job entity.ChapterJob) error
	RecordStatus(ctx context.Context, jobID uuid.UUID, status constants.JobStatus) error
	FinishJob(ctx context.Context, result entity.JobResult) error
	ListRecent(ctx context.Context, limit int) ([]JobRecord, error)
	Close() error
}

// JobRecord is one row of run history.
type JobRecord struct {
	JobID         string
	ChapterNumber int
	ChapterName   string
	Subject       string
	ImagePath     string
	Status        string
	FailedStage   string
	ErrorMessage  string
	StartedAt     time.Time
	FinishedAt    sql.NullTime
}

type sqliteHistoryRepo struct {
	db  *sql.DB
	log *slog.Logger
}

const historySchema = `
CREATE TABLE IF NOT EXISTS jobs (
	job_id         TEXT PRIMARY KEY,
	chapter_number INTEGER NOT NULL,
	chapter_name   TEXT NOT NULL,
	subject        TEXT NOT NULL,
	image_path     TEXT NOT NULL,
	status         TEXT NOT NULL,
	failed_stage   TEXT NOT NULL DEFAULT '',
	error_message  TEXT NOT NULL DEFAULT '',
	started_at     TIMESTAMP NOT NULL,
	finished_at    TIMESTAMP
);
CREATE TABLE IF NOT EXISTS stage_events (
	job_id      TEXT NOT NULL,
	status      TEXT NOT NULL,
	recorded_at TIMESTAMP NOT NULL,
	FOREIGN KEY (job_id) REFERENCES jobs (job_id)
);
CREATE INDEX IF NOT EXISTS idx_jobs_started_at ON jobs (started_at);
`

// NewJobHistoryRepository opens (or creates) the sqlite history database at
// path and ensures the schema exists.
func NewJobHistoryRepository(path string, log *slog.Logger) (JobHistoryRepository, error) {
	if log == nil {
		log = slog.Default()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.WrapError(err, "opening history database")
	}
	if _, err := db.Exec(historySchema); err != nil {
		_ = db.Close()
		return nil, common.WrapError(err, "initializing history schema")
	}
	log.Debug("history database ready", "path", path)
	return &sqliteHistoryRepo{db: db, log: log}, nil
}

func (r *sqliteHistoryRepo) StartJob(ctx context.Context, jobID uuid.UUID, job entity.ChapterJob) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO jobs (job_id, chapter_number, chapter_name, subject, image_path, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		jobID.String(), job.ChapterNumber, job.ChapterName, job.Subject, job.ImagePath,
		string(constants.JobStatusPending), time.Now().UTC(),
	)
	if err != nil {
		r.log.Error("history start failed", "job_id", jobID, "err", err)
		return err
	}
	return nil
}

func (r *sqliteHistoryRepo) RecordStatus(ctx context.Context, jobID uuid.UUID, status constants.JobStatus) error {
	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO stage_events (job_id, status, recorded_at) VALUES (?, ?, ?)`,
		jobID.String(), string(status), now,
	); err != nil {
		r.log.Error("history status insert failed", "job_id", jobID, "err", err)
		return err
	}
	if _, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET status = ? WHERE job_id = ?`,
		string(status), jobID.String(),
	); err != nil {
		r.log.Error("history status update failed", "job_id", jobID, "err", err)
		return err
	}
	return nil
}

func (r *sqliteHistoryRepo) FinishJob(ctx context.Context, result entity.JobResult) error {
	errMsg := ""
	if result.Err != nil {
		errMsg = result.Err.Error()
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, failed_stage = ?, error_message = ?, finished_at = ? WHERE job_id = ?`,
		string(result.Status), string(result.FailedStage), errMsg, result.FinishedAt, result.JobID.String(),
	)
	if err != nil {
		r.log.Error("history finish failed", "job_id", result.JobID, "err", err)
		return err
	}
	return nil
}

func (r *sqliteHistoryRepo) ListRecent(ctx context.Context, limit int) ([]JobRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT job_id, chapter_number, chapter_name, subject, image_path,
		        status, failed_stage, error_message, started_at, finished_at
		 FROM jobs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []JobRecord
	for rows.Next() {
		var rec JobRecord
		if err := rows.Scan(
			&rec.JobID, &rec.ChapterNumber, &rec.ChapterName, &rec.Subject, &rec.ImagePath,
			&rec.Status, &rec.FailedStage, &rec.ErrorMessage, &rec.StartedAt, &rec.FinishedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *sqliteHistoryRepo) Close() error {
	return r.db.Close()
}
