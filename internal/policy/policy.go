// Package policy decides whether a run continues past recoverable conditions
// (compilation failures, defects in rendered output).
package policy

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	serrors "git.home.luguber.info/inful/texsubmit/internal/errors"
	"git.home.luguber.info/inful/texsubmit/internal/logfields"
)

// Policy is the continuation strategy applied to recoverable conditions.
type Policy string

const (
	// Prompt asks on the terminal; without a terminal it behaves like Abort.
	Prompt Policy = "prompt"
	// Abort stops the run.
	Abort Policy = "abort"
	// Warn prints the condition and continues.
	Warn Policy = "warn"
	// Ignore continues without output.
	Ignore Policy = "ignore"
)

// Values lists the accepted policy names.
var Values = []Policy{Prompt, Abort, Warn, Ignore}

// Parse converts a name into a Policy. Empty selects Prompt.
func Parse(s string) (Policy, error) {
	if s == "" {
		return Prompt, nil
	}
	p := Policy(strings.ToLower(strings.TrimSpace(s)))
	for _, v := range Values {
		if p == v {
			return p, nil
		}
	}
	return "", serrors.ValidationFailed("on_defect", fmt.Sprintf("unknown policy %q (want prompt, abort, warn or ignore)", s))
}

// Gate applies a Policy. It returns nil to continue or an Aborted error.
type Gate interface {
	Continue(ctx context.Context, issue *serrors.SubmitError, details []string) error
}

// Terminal is the Gate used by the CLI.
type Terminal struct {
	policy      Policy
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// NewTerminal creates a Gate reading answers from in and writing to out.
func NewTerminal(p Policy, in io.Reader, out io.Writer, interactive bool) *Terminal {
	return &Terminal{policy: p, in: bufio.NewReader(in), out: out, interactive: interactive}
}

// NewStdio creates a Gate on the process's stdin/stdout, detecting whether stdin is a terminal.
func NewStdio(p Policy) *Terminal {
	fd := os.Stdin.Fd()
	return NewTerminal(p, os.Stdin, os.Stdout, isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
}

// Policy returns the configured policy.
func (g *Terminal) Policy() Policy { return g.policy }

// Continue prints details and applies the policy.
func (g *Terminal) Continue(ctx context.Context, issue *serrors.SubmitError, details []string) error {
	if g.policy == Ignore {
		return nil
	}

	for _, line := range details {
		_, _ = fmt.Fprintln(g.out, line)
	}

	switch g.policy {
	case Warn:
		slog.Warn("Continuing despite "+string(issue.Category), logfields.Policy(string(g.policy)))
		return nil
	case Abort:
		return serrors.Aborted(string(issue.Category), issue)
	}

	if !g.interactive {
		slog.Warn("No terminal to confirm on, aborting", logfields.Policy(string(g.policy)))
		return serrors.Aborted(string(issue.Category)+" (non-interactive)", issue)
	}

	ok, err := g.ask(ctx)
	if err != nil {
		return serrors.Aborted("no answer", err)
	}
	if !ok {
		return serrors.Aborted("user declined", issue)
	}
	return nil
}

func (g *Terminal) ask(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, _ = fmt.Fprint(g.out, "Continue? (y/n) ")
	line, err := g.in.ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	answer := strings.TrimSpace(line)
	return answer == "y" || answer == "Y", nil
}
