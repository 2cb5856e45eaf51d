package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gsetexam/question-bank/constants"
	"github.com/gsetexam/question-bank/internal/artifact"
	"github.com/gsetexam/question-bank/internal/common"
	"github.com/gsetexam/question-bank/internal/entity"
	"github.com/gsetexam/question-bank/internal/llm"
)

// ExtractStage sends the question sheet to the recognition service and
// persists what came back, verbatim. No correctness validation happens here;
// reviewing the artifact is a human's job between runs.
type ExtractStage struct {
	Store      *artifact.Store
	Recognizer llm.Recognizer
	Logger     *slog.Logger
}

func NewExtractStage(store *artifact.Store, rec llm.Recognizer, logger *slog.Logger) *ExtractStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractStage{Store: store, Recognizer: rec, Logger: logger}
}

// Run checks the input exists before any service call is attempted, then
// delegates recognition and persists both the raw response and the parsed
// artifact.
func (s *ExtractStage) Run(ctx context.Context, job entity.ChapterJob) (entity.ExtractionArtifact, error) {
	if _, err := os.Stat(job.ImagePath); err != nil {
		if os.IsNotExist(err) {
			return entity.ExtractionArtifact{}, common.MissingInputError(job.ImagePath)
		}
		return entity.ExtractionArtifact{}, common.WrapError(err, "stat question sheet")
	}

	mime := constants.MapExtToMIME(filepath.Ext(job.ImagePath))
	if mime == "" {
		return entity.ExtractionArtifact{}, common.ConfigurationError(
			fmt.Sprintf("unsupported question sheet format: %s", job.ImagePath))
	}

	art, raw, err := s.Recognizer.RecognizeQuestions(ctx, llm.RecognizeRequest{
		FilePath: job.ImagePath,
		MIMEType: mime,
		Subject:  job.Subject,
		ExamName: job.ExamName,
	})
	if err != nil {
		return entity.ExtractionArtifact{}, common.WrapError(err, "recognize questions")
	}

	path, err := s.Store.WriteExtraction(job.ChapterNumber, art, raw)
	if err != nil {
		return entity.ExtractionArtifact{}, err
	}

	s.Logger.Info("extract.ok",
		"chapter", job.ChapterNumber,
		"sheet", job.ImagePath,
		"questions", len(art.Questions),
		"artifact", path,
	)
	return art, nil
}
