package pipeline

import (
	"context"
	"log/slog"

	"github.com/gsetexam/question-bank/internal/answerkey"
	"github.com/gsetexam/question-bank/internal/artifact"
	"github.com/gsetexam/question-bank/internal/common"
	"github.com/gsetexam/question-bank/internal/entity"
	"github.com/gsetexam/question-bank/internal/llm"
)

// MatchStage merges the extraction artifact with the answer key and asks the
// explanation service for a rationale per resolved question.
//
// Matching is identifier-based, not positional: OCR numbering is not
// guaranteed contiguous, so both sides are compared as strings after
// trim/case-fold normalization. A question whose identifier is absent from
// the key is carried through marked unresolved, never dropped or defaulted.
type MatchStage struct {
	Store     *artifact.Store
	Explainer llm.Explainer
	Logger    *slog.Logger
}

func NewMatchStage(store *artifact.Store, exp llm.Explainer, logger *slog.Logger) *MatchStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &MatchStage{Store: store, Explainer: exp, Logger: logger}
}

func (s *MatchStage) Run(ctx context.Context, job entity.ChapterJob, extraction entity.ExtractionArtifact) (entity.MatchedArtifact, error) {
	key, err := answerkey.ParseFile(job.AnswerKeyPath)
	if err != nil {
		return entity.MatchedArtifact{}, common.WrapError(err, "load answer key")
	}

	matched := entity.MatchedArtifact{
		ChapterNumber: job.ChapterNumber,
		ChapterName:   job.ChapterName,
		Subject:       job.Subject,
		Questions:     make([]entity.MatchedQuestion, 0, len(extraction.Questions)),
	}

	unresolved := 0
	for _, q := range extraction.Questions {
		mq := entity.MatchedQuestion{Question: q}

		label, ok := key.Lookup(q.Number)
		if !ok {
			unresolved++
			s.Logger.Warn("match.unresolved", "chapter", job.ChapterNumber, "question", q.Number)
			matched.Questions = append(matched.Questions, mq)
			continue
		}

		mq.Answer = string(label)
		mq.Resolved = true

		// One failed explanation call does not fail the stage; the entry
		// keeps its answer and ships without an explanation.
		explanation, err := s.Explainer.ExplainAnswer(ctx, llm.ExplainRequest{
			Question: q,
			Answer:   mq.Answer,
			Subject:  job.Subject,
			ExamName: job.ExamName,
		})
		if err != nil {
			s.Logger.Warn("match.explanation_unavailable",
				"chapter", job.ChapterNumber, "question", q.Number, "error", err)
		} else {
			mq.Explanation = explanation
		}
		matched.Questions = append(matched.Questions, mq)
	}

	path, err := s.Store.WriteMatched(matched)
	if err != nil {
		return entity.MatchedArtifact{}, err
	}

	s.Logger.Info("match.ok",
		"chapter", job.ChapterNumber,
		"questions", len(matched.Questions),
		"unresolved", unresolved,
		"artifact", path,
	)
	return matched, nil
}
