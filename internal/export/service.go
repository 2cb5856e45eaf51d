package export

import (
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/gsetexam/question-bank/internal/artifact"
	"github.com/gsetexam/question-bank/internal/common"
)

// Service is a tiny façade over the artifact store that produces XLSX bytes
// for the question bank. One row per question, across every matched chapter
// currently on disk.
type Service struct {
	store  *artifact.Store
	logger *slog.Logger
}

func NewService(store *artifact.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// ExportQuestionBankXLSX returns an XLSX workbook (as bytes) covering all
// matched chapters. An empty workspace is an error: there is nothing to
// export before stage 2 has run at least once.
func (s *Service) ExportQuestionBankXLSX() ([]byte, error) {
	start := time.Now()

	chapters, err := s.store.ListMatched()
	if err != nil {
		return nil, fmt.Errorf("list matched chapters: %w", err)
	}
	if len(chapters) == 0 {
		return nil, common.NewAppError("MISSING_INPUT", "no matched chapters to export", common.ErrMissingInput)
	}

	f := excelize.NewFile()
	const sheet = "Questions"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Chapter",
		"Chapter Name",
		"Subject",
		"Question No.",
		"Question",
		"Answer",
		"Resolved",
		"Explanation",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	questions := 0
	for _, ch := range chapters {
		for _, q := range ch.Questions {
			write := func(col int, v any) {
				cell, _ := excelize.CoordinatesToCellName(col, row)
				_ = f.SetCellValue(sheet, cell, v)
			}

			answer := string(q.Answer)
			resolved := "yes"
			if !q.Resolved {
				answer = ""
				resolved = "no"
			}

			write(1, ch.ChapterNumber)
			write(2, ch.ChapterName)
			write(3, ch.Subject)
			write(4, q.Number)
			write(5, truncate(q.Text, 200))
			write(6, answer)
			write(7, resolved)
			write(8, truncate(q.Explanation, 300))

			row++
			questions++
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 10) // chapter
	_ = f.SetColWidth(sheet, "B", "B", 24) // chapter name
	_ = f.SetColWidth(sheet, "C", "C", 18) // subject
	_ = f.SetColWidth(sheet, "D", "D", 12) // question number
	_ = f.SetColWidth(sheet, "E", "E", 60) // question text
	_ = f.SetColWidth(sheet, "F", "G", 10) // answer, resolved
	_ = f.SetColWidth(sheet, "H", "H", 60) // explanation

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"chapters", len(chapters),
		"rows", questions,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// truncate caps s at n runes, never splitting a multibyte character.
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n == 1 {
		return string(r[:1])
	}
	return string(r[:n-1]) + "…"
}
