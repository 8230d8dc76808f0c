package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Exit codes returned by the texsubmit binary.
const (
	ExitOK        = 0
	ExitDeclined  = 1 // target exists, or the policy or user declined
	ExitUsage     = 2
	ExitConfig    = 7
	ExitInternal  = 10
	ExitPackaging = 11
	ExitRuntime   = 12
)

var exitCodes = map[ErrorCategory]int{
	CategoryAlreadyExists:     ExitDeclined,
	CategoryAborted:           ExitDeclined,
	CategoryDefectsFound:      ExitDeclined,
	CategoryCompilationFailed: ExitDeclined,
	CategoryValidation:        ExitUsage,
	CategoryConfig:            ExitConfig,
	CategoryResourceNotFound:  ExitPackaging,
	CategoryFileSystem:        ExitPackaging,
	CategoryArchive:           ExitPackaging,
	CategoryRuntime:           ExitRuntime,
	CategoryInternal:          ExitInternal,
}

// CLIErrorAdapter turns a failed run into a message on stderr and an exit code.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
	out     io.Writer
}

// NewCLIErrorAdapter creates a new CLI error adapter.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{
		verbose: verbose,
		logger:  logger,
		out:     os.Stderr,
	}
}

// ExitCodeFor determines the appropriate exit code for an error.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	se, ok := As(err)
	if !ok {
		return ExitDeclined
	}
	if code, known := exitCodes[se.Category]; known {
		return code
	}
	return ExitDeclined
}

// FormatError renders err as the single line shown to the user.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	se, ok := As(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if a.verbose {
		return se.Error()
	}

	switch se.Category {
	case CategoryConfig, CategoryValidation, CategoryAlreadyExists, CategoryAborted:
		return se.Message
	case CategoryResourceNotFound:
		return fmt.Sprintf("library resource %v not found at %v", se.Context["resource"], se.Context["path"])
	case CategoryDefectsFound:
		return fmt.Sprintf("%v rendered output(s) contain broken references or citations", se.Context["files"])
	}
	if se.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", se.Category, se.Message, se.Cause)
	}
	return fmt.Sprintf("%s: %s", se.Category, se.Message)
}

// Handle logs and prints an error and returns the exit code the process should use.
func (a *CLIErrorAdapter) Handle(err error) int {
	if err == nil {
		return ExitOK
	}
	if a.shouldLog(err) {
		a.logError(err)
	}
	_, _ = fmt.Fprintln(a.out, a.FormatError(err))
	return a.ExitCodeFor(err)
}

// HandleError processes an error and exits the program with appropriate code.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}
	os.Exit(a.Handle(err))
}

// shouldLog keeps expected outcomes (declined runs, existing targets) off the log.
func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}
	se, ok := As(err)
	if !ok {
		return true
	}
	return se.Category == CategoryInternal || se.Category == CategoryRuntime
}

func (a *CLIErrorAdapter) logError(err error) {
	se, ok := As(err)
	if !ok {
		a.logger.Error("Unclassified error", "error", err)
		return
	}
	attrs := []slog.Attr{slog.String("category", string(se.Category))}
	for k, v := range se.Context {
		attrs = append(attrs, slog.Any(k, v))
	}
	if se.Cause != nil {
		attrs = append(attrs, slog.String("cause", se.Cause.Error()))
	}
	a.logger.LogAttrs(context.Background(), levelFor(se.Severity), se.Message, attrs...)
}

func levelFor(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
