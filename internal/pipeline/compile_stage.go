package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gsetexam/question-bank/internal/artifact"
	"github.com/gsetexam/question-bank/internal/common"
	"github.com/gsetexam/question-bank/internal/entity"
	"github.com/gsetexam/question-bank/internal/latex"
)

// CompileStage converts every chapter document present into LaTeX, assembles
// the book source, and invokes the external compiler on it. The book always
// covers all chapters generated so far, matching how a multi-chapter run
// accretes its output.
type CompileStage struct {
	Store    *artifact.Store
	Compiler *latex.Compiler
	Logger   *slog.Logger
}

func NewCompileStage(store *artifact.Store, compiler *latex.Compiler, logger *slog.Logger) *CompileStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &CompileStage{Store: store, Compiler: compiler, Logger: logger}
}

func (s *CompileStage) Run(ctx context.Context, job entity.ChapterJob) (string, error) {
	paths, err := s.Store.ListChapters()
	if err != nil {
		return "", common.WrapError(err, "list chapters")
	}
	if len(paths) == 0 {
		return "", common.MissingInputError(filepath.Join("output", "chapters"))
	}

	chapters := make([]string, 0, len(paths))
	for _, p := range paths {
		md, err := s.Store.ReadChapter(p)
		if err != nil {
			return "", err
		}
		chapters = append(chapters, latex.ConvertMarkdown(string(md)))
	}

	meta := latex.BookMeta{ExamName: job.ExamName, Date: job.CurrentDate}
	texPath := filepath.Join(s.Store.BookDir(), "main.tex")
	if err := os.WriteFile(texPath, []byte(latex.BookDocument(meta, chapters)), 0o644); err != nil {
		return "", common.WrapError(err, "write book source")
	}

	pdf, err := s.Compiler.Compile(ctx, texPath, s.Store.BookDir())
	if err != nil {
		return "", err
	}

	s.Logger.Info("compile.ok", "chapters", len(chapters), "pdf", pdf)
	return pdf, nil
}
