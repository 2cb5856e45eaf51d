package latex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/gsetexam/question-bank/internal/common"
)

// CompilerConfig configures the external compiler invocation.
type CompilerConfig struct {
	Binary  string        // binary name or absolute path; if empty -> "pdflatex"
	Timeout time.Duration // per compile pass; default 120s
	Passes  int           // default 2 (second pass resolves the TOC)
}

type Compiler struct {
	cfg    CompilerConfig
	runner Runner
	logger *slog.Logger
}

func NewCompiler(cfg CompilerConfig, logger *slog.Logger) *Compiler {
	if cfg.Binary == "" {
		cfg.Binary = "pdflatex"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.Passes <= 0 {
		cfg.Passes = 2
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Compiler{cfg: cfg, runner: execRunner{}, logger: logger}
}

// NewCompilerWithRunner builds a compiler with a caller-supplied runner.
// Tests use it to substitute the external binary.
func NewCompilerWithRunner(cfg CompilerConfig, runner Runner, logger *slog.Logger) *Compiler {
	c := NewCompiler(cfg, logger)
	if runner != nil {
		c.runner = runner
	}
	return c
}

// Compile runs the external compiler on texPath, writing into outputDir.
// The binary is resolved before anything runs, so a missing compiler fails
// without creating any output file. Each pass gets its own timeout; a pass
// that exceeds it fails the job, never retries. Diagnostic output from a
// failed pass is surfaced verbatim.
func (c *Compiler) Compile(ctx context.Context, texPath, outputDir string) (string, error) {
	if _, err := exec.LookPath(c.cfg.Binary); err != nil {
		return "", common.ExternalToolError(fmt.Sprintf("compiler not found: %s", c.cfg.Binary), err)
	}

	args := []string{
		"-interaction=nonstopmode",
		"-halt-on-error",
		"-output-directory", outputDir,
		texPath,
	}

	for pass := 1; pass <= c.cfg.Passes; pass++ {
		start := time.Now()
		passCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
		stdout, stderr, err := c.runner.Run(passCtx, c.cfg.Binary, args...)
		cancel()

		if err != nil {
			if errors.Is(passCtx.Err(), context.DeadlineExceeded) {
				return "", common.ExternalToolError(
					fmt.Sprintf("compiler timed out after %s (pass %d)", c.cfg.Timeout, pass), err)
			}
			return "", common.ExternalToolError(
				fmt.Sprintf("compiler exited with error (pass %d): %s", pass, diagnostics(stdout, stderr)), err)
		}

		c.logger.Info("latex.compile.pass_ok",
			"tex", texPath,
			"pass", pass,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}

	base := strings.TrimSuffix(filepath.Base(texPath), filepath.Ext(texPath))
	pdf := filepath.Join(outputDir, base+".pdf")
	c.logger.Info("latex.compile.ok", "pdf", pdf)
	return pdf, nil
}

// diagnostics passes the compiler's own output through untouched (modulo a
// size cap); we do not parse or summarize it.
func diagnostics(stdout, stderr []byte) string {
	out := strings.TrimSpace(string(stderr))
	if out == "" {
		out = strings.TrimSpace(string(stdout))
	}
	return truncate(out, 8<<10)
}
