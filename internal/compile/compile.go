// Package compile runs an external LaTeX compiler over documents in the
// scratch working copy.
//
// The compiler runs with its working directory set to the document's
// directory through exec.Cmd.Dir; the process working directory is never
// changed.
package compile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/texsubmit/internal/logfields"
)

var (
	// ErrCompilerNotFound is returned when the compiler binary is not on PATH.
	ErrCompilerNotFound = errors.New("compiler binary not found")
	// ErrCompilationFailed wraps a non-zero compiler exit.
	ErrCompilationFailed = errors.New("compilation failed")
)

// Compiler turns one source document into its rendered output.
type Compiler interface {
	Compile(ctx context.Context, document string) error
}

// BinaryCompiler invokes an external command, passing the document's base
// name as the last argument.
type BinaryCompiler struct {
	Command string
	Args    []string
}

// NewBinaryCompiler returns a compiler running command with args.
func NewBinaryCompiler(command string, args ...string) *BinaryCompiler {
	return &BinaryCompiler{Command: command, Args: args}
}

func (b *BinaryCompiler) Compile(ctx context.Context, document string) error {
	bin, err := exec.LookPath(b.Command)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCompilerNotFound, err)
	}

	args := append(append([]string(nil), b.Args...), filepath.Base(document))
	// #nosec G204 - command and arguments come from operator configuration
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = filepath.Dir(document)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("Invoking compiler", logfields.Document(document), slog.String("command", b.Command))
	start := time.Now()
	err = cmd.Run()
	slog.Debug("Compiler finished", logfields.Document(document),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		output := strings.TrimSpace(stderr.String())
		if output == "" {
			output = lastLines(stdout.String(), 20)
		}
		if output != "" {
			return fmt.Errorf("%w: %w: %s", ErrCompilationFailed, err, output)
		}
		return fmt.Errorf("%w: %w", ErrCompilationFailed, err)
	}
	return nil
}

// NoopCompiler performs no compilation; the rendered outputs already in the
// tree are scanned as they are.
type NoopCompiler struct{}

func (NoopCompiler) Compile(_ context.Context, document string) error {
	slog.Debug("NoopCompiler skipping compile", logfields.Document(document))
	return nil
}

// Failure records one document the compiler could not build.
type Failure struct {
	Document string
	Err      error
}

func (f Failure) Error() string { return f.Document + ": " + f.Err.Error() }

func (f Failure) Unwrap() error { return f.Err }

// All compiles every document in order and collects per-document failures.
// The returned error is non-nil only when ctx is done.
func All(ctx context.Context, c Compiler, documents []string) ([]Failure, error) {
	var failures []Failure
	for _, doc := range documents {
		if err := ctx.Err(); err != nil {
			return failures, err
		}
		if err := c.Compile(ctx, doc); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return failures, ctxErr
			}
			slog.Warn("Compilation failed", logfields.Document(doc), logfields.Error(err))
			failures = append(failures, Failure{Document: doc, Err: err})
		}
	}
	return failures, nil
}

// Join combines failures into a single error, nil when there are none.
func Join(failures []Failure) error {
	errs := make([]error, 0, len(failures))
	for _, f := range failures {
		errs = append(errs, f)
	}
	return errors.Join(errs...)
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
