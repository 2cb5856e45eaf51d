package llm

import (
	"context"

	"github.com/gsetexam/question-bank/internal/entity"
)

// RecognizeRequest describes one question-sheet recognition call.
type RecognizeRequest struct {
	FilePath string // image or PDF on disk
	MIMEType string // from constants.MapExtToMIME
	Subject  string
	ExamName string
}

// Recognizer extracts structured questions from a sheet. The second return
// value is the raw model text, persisted verbatim by the extraction stage.
type Recognizer interface {
	RecognizeQuestions(ctx context.Context, req RecognizeRequest) (entity.ExtractionArtifact, []byte, error)
}

// ExplainRequest describes one explanation call for a resolved question.
type ExplainRequest struct {
	Question entity.Question
	Answer   string
	Subject  string
	ExamName string
}

// Explainer generates a short explanation for why the given answer is
// correct. The matching stage calls it once per resolved question.
type Explainer interface {
	ExplainAnswer(ctx context.Context, req ExplainRequest) (string, error)
}
