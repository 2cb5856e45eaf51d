package pipeline

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gsetexam/question-bank/internal/artifact"
	"github.com/gsetexam/question-bank/internal/entity"
)

// FormatStage renders one matched artifact into a chapter document with a
// fixed template. Output is byte-deterministic for a given artifact plus job
// metadata: the same inputs always produce the identical document. Questions
// are emitted in artifact order (document reading order); nothing is
// reordered, filtered, or renumbered here.
type FormatStage struct {
	Store  *artifact.Store
	Logger *slog.Logger
}

func NewFormatStage(store *artifact.Store, logger *slog.Logger) *FormatStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &FormatStage{Store: store, Logger: logger}
}

func (s *FormatStage) Run(job entity.ChapterJob, matched entity.MatchedArtifact) (string, error) {
	doc := RenderChapter(job, matched)

	path, err := s.Store.WriteChapter(job.ChapterNumber, []byte(doc))
	if err != nil {
		return "", err
	}

	s.Logger.Info("format.ok",
		"chapter", job.ChapterNumber,
		"questions", len(matched.Questions),
		"path", path,
	)
	return path, nil
}

// RenderChapter produces the chapter markdown. Exported so the compile
// command and tests can render without touching disk.
func RenderChapter(job entity.ChapterJob, matched entity.MatchedArtifact) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Chapter %d: %s\n\n", matched.ChapterNumber, matched.ChapterName)
	fmt.Fprintf(&b, "**Subject:** %s\n\n", matched.Subject)
	if job.ExamName != "" {
		fmt.Fprintf(&b, "**Exam:** %s\n\n", job.ExamName)
	}
	if job.CurrentDate != "" {
		fmt.Fprintf(&b, "**Date:** %s\n\n", job.CurrentDate)
	}

	for _, q := range matched.Questions {
		fmt.Fprintf(&b, "## Question %s\n\n", q.Number)
		b.WriteString(q.Text)
		b.WriteString("\n\n")
		for _, opt := range q.Options {
			fmt.Fprintf(&b, "- %s\n", opt)
		}
		b.WriteString("\n")

		if q.Resolved {
			fmt.Fprintf(&b, "**Answer:** %s\n\n", q.Answer)
			if q.Explanation != "" {
				fmt.Fprintf(&b, "**Explanation:** %s\n\n", q.Explanation)
			}
		} else {
			b.WriteString("**Answer:** *unresolved*\n\n")
		}
	}

	return b.String()
}
