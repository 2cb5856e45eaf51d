package latex

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gsetexam/question-bank/internal/common"
)

type fakeRunner struct {
	calls  int
	stdout []byte
	stderr []byte
	err    error
	block  bool // wait for ctx cancellation instead of returning
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}
	return f.stdout, f.stderr, f.err
}

func TestCompile_MissingBinary(t *testing.T) {
	dir := t.TempDir()
	c := NewCompiler(CompilerConfig{Binary: "definitely-not-a-real-compiler-9f3a"}, nil)

	_, err := c.Compile(context.Background(), filepath.Join(dir, "main.tex"), dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrExternalTool))

	// The binary is resolved before anything runs: no output appears.
	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestCompile_TwoPassesByDefault(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{}
	// "true" exists on any PATH, so the LookPath pre-check passes.
	c := NewCompilerWithRunner(CompilerConfig{Binary: "true"}, runner, nil)

	pdf, err := c.Compile(context.Background(), filepath.Join(dir, "main.tex"), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, runner.calls)
	assert.Equal(t, filepath.Join(dir, "main.pdf"), pdf)
}

func TestCompile_NonZeroExit(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{
		stdout: []byte("! LaTeX Error: File `enumitem.sty' not found."),
		err:    errors.New("exit status 1"),
	}
	c := NewCompilerWithRunner(CompilerConfig{Binary: "true"}, runner, nil)

	_, err := c.Compile(context.Background(), filepath.Join(dir, "main.tex"), dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrExternalTool))
	// Compiler diagnostics surface verbatim.
	assert.Contains(t, err.Error(), "enumitem.sty")
	assert.Equal(t, 1, runner.calls)
}

func TestCompile_Timeout(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{block: true}
	c := NewCompilerWithRunner(CompilerConfig{Binary: "true", Timeout: 20 * time.Millisecond}, runner, nil)

	_, err := c.Compile(context.Background(), filepath.Join(dir, "main.tex"), dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrExternalTool))
	assert.Contains(t, err.Error(), "timed out")
}
