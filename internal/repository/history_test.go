package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsetexam/question-bank/constants"
	"github.com/gsetexam/question-bank/internal/common"
	"github.com/gsetexam/question-bank/internal/entity"
)

func newTestHistory(t *testing.T) JobHistoryRepository {
	t.Helper()
	repo, err := NewJobHistoryRepository(filepath.Join(t.TempDir(), "history.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestHistory_JobLifecycle(t *testing.T) {
	repo := newTestHistory(t)
	ctx := context.Background()

	jobID := uuid.New()
	job := entity.ChapterJob{
		ImagePath:     "input/question_sheets/ch1.png",
		AnswerKeyPath: "input/answer_keys/ch1.txt",
		ChapterNumber: 1,
		ChapterName:   "Algebra",
		Subject:       "Maths",
	}

	require.NoError(t, repo.StartJob(ctx, jobID, job))
	require.NoError(t, repo.RecordStatus(ctx, jobID, constants.JobStatusExtracting))
	require.NoError(t, repo.RecordStatus(ctx, jobID, constants.JobStatusMatching))

	require.NoError(t, repo.FinishJob(ctx, entity.JobResult{
		JobID:       jobID,
		Job:         job,
		Status:      constants.JobStatusFailed,
		FailedStage: constants.StageMatching,
		Err:         common.MissingInputError("input/answer_keys/ch1.txt"),
		StartedAt:   time.Now().UTC().Add(-time.Minute),
		FinishedAt:  time.Now().UTC(),
	}))

	records, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, jobID.String(), rec.JobID)
	assert.Equal(t, 1, rec.ChapterNumber)
	assert.Equal(t, "Algebra", rec.ChapterName)
	assert.Equal(t, string(constants.JobStatusFailed), rec.Status)
	assert.Equal(t, string(constants.StageMatching), rec.FailedStage)
	assert.Contains(t, rec.ErrorMessage, "ch1.txt")
	assert.True(t, rec.FinishedAt.Valid)
}

func TestHistory_ListRecentHonorsLimit(t *testing.T) {
	repo := newTestHistory(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.StartJob(ctx, uuid.New(), entity.ChapterJob{
			ChapterNumber: i,
			ChapterName:   "ch",
			Subject:       "s",
		}))
	}

	records, err := repo.ListRecent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestHistory_EmptyList(t *testing.T) {
	repo := newTestHistory(t)
	records, err := repo.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}
