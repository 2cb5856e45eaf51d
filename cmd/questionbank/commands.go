package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/gsetexam/question-bank/constants"
	"github.com/gsetexam/question-bank/internal/artifact"
	"github.com/gsetexam/question-bank/internal/async"
	"github.com/gsetexam/question-bank/internal/common"
	"github.com/gsetexam/question-bank/internal/entity"
	"github.com/gsetexam/question-bank/internal/export"
	"github.com/gsetexam/question-bank/internal/ingest"
	"github.com/gsetexam/question-bank/internal/latex"
	"github.com/gsetexam/question-bank/internal/pipeline"
	"github.com/gsetexam/question-bank/internal/repository"
)

func newInteractiveCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "interactive",
		Usage: "prompt for job details and process one chapter",
		Action: func(c *cli.Context) error {
			ui := NewUI()
			cfg := common.LoadConfig()

			proc, cleanup, err := buildProcessor(cfg, logger)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer cleanup()

			ui.Banner("Question Bank - interactive mode")
			in := bufio.NewScanner(os.Stdin)

			job := entity.ChapterJob{
				ImagePath:     prompt(in, "Question sheet path"),
				AnswerKeyPath: prompt(in, "Answer key path"),
				ChapterName:   prompt(in, "Chapter name"),
				Subject:       prompt(in, "Subject"),
				ExamName:      prompt(in, "Exam name (blank for GSET)"),
			}
			numStr := prompt(in, "Chapter number")
			job.ChapterNumber, err = strconv.Atoi(strings.TrimSpace(numStr))
			if err != nil {
				return cli.Exit(fmt.Sprintf("invalid chapter number %q", numStr), 1)
			}

			result := proc.RunJob(c.Context, job)
			if result.Failed() {
				ui.Error("chapter %d failed at %s: %v", job.ChapterNumber, result.FailedStage, result.Err)
				return cli.Exit("", 1)
			}
			ui.Success("chapter written: %s", result.ChapterPath)
			ui.Success("book compiled:   %s", result.BookPath)
			return nil
		},
	}
}

func prompt(in *bufio.Scanner, label string) string {
	fmt.Printf("%s: ", label)
	if !in.Scan() {
		return ""
	}
	return strings.TrimSpace(in.Text())
}

// newCompileCommand rebuilds the book from the chapter files already on
// disk. It needs no API key: stages 1 and 2 never run here.
func newCompileCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "compile",
		Usage: "recompile the book from existing chapter files",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "exam", Usage: "exam name on the title page", Value: "GSET"},
			&cli.StringFlag{Name: "date", Usage: "date on the title page (YYYY-MM-DD)"},
		},
		Action: func(c *cli.Context) error {
			ui := NewUI()
			cfg := common.LoadConfig()

			store := artifact.NewStore(cfg.Paths.Root, logger)
			if err := store.EnsureLayout(); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			compiler := latex.NewCompiler(latex.CompilerConfig{
				Binary:  cfg.Compiler.Binary,
				Timeout: cfg.Compiler.Timeout,
			}, logger)
			stage := pipeline.NewCompileStage(store, compiler, logger)

			date := c.String("date")
			if date == "" {
				date = time.Now().UTC().Format("2006-01-02")
			}
			bookPath, err := stage.Run(c.Context, entity.ChapterJob{
				ExamName:    c.String("exam"),
				CurrentDate: date,
			})
			if err != nil {
				ui.Error("compilation failed: %v", err)
				return cli.Exit("", 1)
			}
			ui.Success("book compiled: %s", bookPath)
			return nil
		},
	}
}

var sheetNamePattern = regexp.MustCompile(`^(\d+)[-_. ]*(.*)$`)

func newWatchCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "watch the sheet directory and process new chapters as they arrive",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "answer-key", Usage: "answer key applied to every discovered sheet", Required: true},
			&cli.StringFlag{Name: "subject", Usage: "subject for discovered sheets", Required: true},
			&cli.StringFlag{Name: "exam", Usage: "exam name", Value: "GSET"},
			&cli.DurationFlag{Name: "debounce", Usage: "settle time before a sheet is picked up", Value: 2 * time.Second},
		},
		Action: func(c *cli.Context) error {
			ui := NewUI()
			cfg := common.LoadConfig()

			proc, cleanup, err := buildProcessor(cfg, logger)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer cleanup()

			queue := async.NewJobQueue(proc, logger, async.WithResultFunc(func(result entity.JobResult) {
				if result.Failed() {
					ui.Error("chapter %d failed at %s: %v",
						result.Job.ChapterNumber, result.FailedStage, result.Err)
				} else {
					ui.Success("chapter %d done: %s", result.Job.ChapterNumber, result.ChapterPath)
				}
			}))
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				queue.Shutdown(shutdownCtx)
			}()

			root := filepath.Join(cfg.Paths.Root, constants.QuestionSheetsDir)
			events, errs, err := ingest.StartWatcher(c.Context, ingest.WatchConfig{
				Roots:    []string{root},
				Debounce: c.Duration("debounce"),
			})
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			ui.Banner("Watching " + root)
			for {
				select {
				case <-c.Context.Done():
					return nil
				case err, ok := <-errs:
					if ok && err != nil {
						ui.Warning("watcher: %v", err)
					}
				case path, ok := <-events:
					if !ok {
						return nil
					}
					job, ok := jobFromSheetPath(path, c.String("answer-key"), c.String("subject"), c.String("exam"))
					if !ok {
						ui.Warning("skipping %s: filename must start with a chapter number", path)
						continue
					}
					ui.Info("picked up chapter %d from %s", job.ChapterNumber, path)
					_ = queue.Enqueue(c.Context, async.Job{Chapter: job})
				}
			}
		},
	}
}

// jobFromSheetPath derives chapter number and name from a sheet filename
// like "07_thermodynamics.png".
func jobFromSheetPath(path, answerKey, subject, exam string) (entity.ChapterJob, bool) {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m := sheetNamePattern.FindStringSubmatch(base)
	if m == nil {
		return entity.ChapterJob{}, false
	}
	num, err := strconv.Atoi(m[1])
	if err != nil || num <= 0 {
		return entity.ChapterJob{}, false
	}
	name := strings.ReplaceAll(strings.ReplaceAll(m[2], "_", " "), "-", " ")
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("Chapter %d", num)
	}
	return entity.ChapterJob{
		ImagePath:     path,
		AnswerKeyPath: answerKey,
		ChapterNumber: num,
		ChapterName:   name,
		Subject:       subject,
		ExamName:      exam,
	}, true
}

func newExportCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "export all matched questions to an XLSX workbook",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file", Value: "output/question_bank.xlsx"},
		},
		Action: func(c *cli.Context) error {
			ui := NewUI()
			cfg := common.LoadConfig()

			store := artifact.NewStore(cfg.Paths.Root, logger)
			svc := export.NewService(store, logger)

			b, err := svc.ExportQuestionBankXLSX()
			if err != nil {
				ui.Error("export failed: %v", err)
				return cli.Exit("", 1)
			}
			out := exportOutputPath(cfg.Paths.Root, c.String("out"), c.IsSet("out"))
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				ui.Error("write failed: %v", err)
				return cli.Exit("", 1)
			}
			if err := os.WriteFile(out, b, 0o644); err != nil {
				ui.Error("write failed: %v", err)
				return cli.Exit("", 1)
			}
			ui.Success("exported %s", out)
			return nil
		},
	}
}

// exportOutputPath anchors the default workbook location under the workspace
// root, where the artifacts it summarizes live. An explicit --out is taken
// as given, relative to the caller's working directory.
func exportOutputPath(root, out string, explicit bool) string {
	if explicit {
		return out
	}
	return filepath.Join(root, out)
}

func newHistoryCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "list recent pipeline runs",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Usage: "rows to show", Value: 20},
		},
		Action: func(c *cli.Context) error {
			ui := NewUI()
			cfg := common.LoadConfig()

			history, err := repository.NewJobHistoryRepository(cfg.History.Path, logger)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer func() { _ = history.Close() }()

			records, err := history.ListRecent(c.Context, c.Int("limit"))
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			if len(records) == 0 {
				ui.Info("no runs recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				finished := "-"
				if rec.FinishedAt.Valid {
					finished = rec.FinishedAt.Time.Format(time.RFC3339)
				}
				failure := rec.FailedStage
				if failure == "" {
					failure = "-"
				}
				rows = append(rows, []string{
					rec.JobID[:8],
					strconv.Itoa(rec.ChapterNumber),
					rec.ChapterName,
					rec.Status,
					failure,
					finished,
				})
			}
			ui.Table([]string{"Job", "Ch", "Name", "Status", "Failed At", "Finished"}, rows)
			return nil
		},
	}
}
