// Package main provides the question-bank CLI entrypoint.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/gsetexam/question-bank/internal/artifact"
	"github.com/gsetexam/question-bank/internal/common"
	"github.com/gsetexam/question-bank/internal/entity"
	"github.com/gsetexam/question-bank/internal/latex"
	"github.com/gsetexam/question-bank/internal/llm/gemini"
	"github.com/gsetexam/question-bank/internal/pipeline"
	"github.com/gsetexam/question-bank/internal/repository"
)

var version = "dev"

func main() {
	// .env is optional; real environments set the variables directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:    "questionbank",
		Usage:   "turn exam question sheets into a compiled question-bank book",
		Version: version,
		Commands: []*cli.Command{
			newRunCommand(logger),
			newBatchCommand(logger),
			newInteractiveCommand(logger),
			newCompileCommand(logger),
			newWatchCommand(logger),
			newExportCommand(logger),
			newHistoryCommand(logger),
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func logLevel() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// buildProcessor wires the full pipeline from configuration. Commands that
// run stages 1 and 2 need a valid API key; Validate enforces that.
func buildProcessor(cfg *common.Config, logger *slog.Logger) (*pipeline.Processor, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	store := artifact.NewStore(cfg.Paths.Root, logger)
	if err := store.EnsureLayout(); err != nil {
		return nil, nil, err
	}

	client := gemini.NewClient(gemini.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	compiler := latex.NewCompiler(latex.CompilerConfig{
		Binary:  cfg.Compiler.Binary,
		Timeout: cfg.Compiler.Timeout,
	}, logger)

	history, err := repository.NewJobHistoryRepository(cfg.History.Path, logger)
	if err != nil {
		// History is an audit convenience; a broken history file should not
		// block the pipeline itself.
		logger.Warn("history unavailable, continuing without it", "error", err)
		history = nil
	}

	cleanup := func() {
		if history != nil {
			_ = history.Close()
		}
	}

	proc := pipeline.NewProcessor(
		logger,
		history,
		pipeline.NewExtractStage(store, client, logger),
		pipeline.NewMatchStage(store, client, logger),
		pipeline.NewFormatStage(store, logger),
		pipeline.NewCompileStage(store, compiler, logger),
	)
	return proc, cleanup, nil
}

func newRunCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "process a single chapter end to end",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "image", Usage: "question sheet (image or PDF)", Required: true},
			&cli.StringFlag{Name: "answer-key", Usage: "answer key file", Required: true},
			&cli.IntFlag{Name: "chapter", Usage: "chapter number", Required: true},
			&cli.StringFlag{Name: "name", Usage: "chapter name", Required: true},
			&cli.StringFlag{Name: "subject", Usage: "subject", Required: true},
			&cli.StringFlag{Name: "exam", Usage: "exam name", Value: "GSET"},
			&cli.StringFlag{Name: "date", Usage: "date stamped on the book (YYYY-MM-DD)"},
		},
		Action: func(c *cli.Context) error {
			ui := NewUI()
			cfg := common.LoadConfig()

			proc, cleanup, err := buildProcessor(cfg, logger)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer cleanup()

			job := entity.ChapterJob{
				ImagePath:     c.String("image"),
				AnswerKeyPath: c.String("answer-key"),
				ChapterNumber: c.Int("chapter"),
				ChapterName:   c.String("name"),
				Subject:       c.String("subject"),
				ExamName:      c.String("exam"),
				CurrentDate:   c.String("date"),
			}

			ui.Banner(fmt.Sprintf("Chapter %d: %s", job.ChapterNumber, job.ChapterName))
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

func newBatchCommand(logger *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "process every chapter listed in a batch configuration file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "batch configuration (JSON)", Required: true},
		},
		Action: func(c *cli.Context) error {
			ui := NewUI()
			cfg := common.LoadConfig()

			batch, err := loadBatchConfig(c.String("config"))
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			if len(batch.Chapters) == 0 {
				return cli.Exit("batch config lists no chapters", 1)
			}

			proc, cleanup, err := buildProcessor(cfg, logger)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			defer cleanup()

			ui.Banner(fmt.Sprintf("Batch: %d chapters", len(batch.Chapters)))
			results := proc.RunBatch(c.Context, batch.Chapters)

			succeeded := 0
			for _, res := range results {
				if res.Failed() {
					ui.Error("chapter %d (%s): failed at %s: %v",
						res.Job.ChapterNumber, res.Job.ChapterName, res.FailedStage, res.Err)
				} else {
					ui.Success("chapter %d (%s): %s",
						res.Job.ChapterNumber, res.Job.ChapterName, res.ChapterPath)
					succeeded++
				}
			}
			ui.Tally(succeeded, len(results)-succeeded)

			if succeeded == 0 {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

// loadBatchConfig reads the batch file and pushes the file-level exam name
// down onto chapters that left it blank.
func loadBatchConfig(path string) (entity.BatchConfig, error) {
	var batch entity.BatchConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return batch, common.MissingInputError(path)
		}
		return batch, err
	}
	if err := json.Unmarshal(b, &batch); err != nil {
		return batch, common.MalformedArtifactError(path, err)
	}
	if batch.ExamName != "" {
		for i := range batch.Chapters {
			if batch.Chapters[i].ExamName == "" {
				batch.Chapters[i].ExamName = batch.ExamName
			}
		}
	}
	return batch, nil
}
