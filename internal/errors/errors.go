// Package errors provides a lightweight structured error type (SubmitError)
// for category-based classification of packaging failures in the pipeline and CLI.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCategory represents the category of a texsubmit error for classification
type ErrorCategory string

const (
	// User-facing configuration and input errors
	CategoryConfig     ErrorCategory = "config"
	CategoryValidation ErrorCategory = "validation"

	// Packaging outcomes
	CategoryAlreadyExists     ErrorCategory = "already_exists"
	CategoryResourceNotFound  ErrorCategory = "resource_not_found"
	CategoryCompilationFailed ErrorCategory = "compilation_failed"
	CategoryDefectsFound      ErrorCategory = "defects_found"
	CategoryAborted           ErrorCategory = "aborted"

	// Processing errors
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryArchive    ErrorCategory = "archive"

	// Runtime and infrastructure errors
	CategoryRuntime  ErrorCategory = "runtime"
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity indicates how critical an error is
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // Stops execution
	SeverityError   ErrorSeverity = "error"   // Error, but not fatal
	SeverityWarning ErrorSeverity = "warning" // Recoverable, subject to the continuation policy
	SeverityInfo    ErrorSeverity = "info"    // Informational, no impact
)

// SubmitError is a structured error with category, severity and context
type SubmitError struct {
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`
	Message  string        `json:"message"`
	Cause    error         `json:"cause,omitempty"`
	Context  ContextFields `json:"context,omitempty"`
}

// ContextFields carries structured context for SubmitError
type ContextFields map[string]any

// Error implements the error interface
func (e *SubmitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Category, e.Severity, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Category, e.Severity, e.Message)
}

// Unwrap implements error unwrapping for errors.Is / errors.As
func (e *SubmitError) Unwrap() error {
	return e.Cause
}

// Recoverable reports whether the continuation policy may let the run proceed.
func (e *SubmitError) Recoverable() bool {
	return e.Severity == SeverityWarning || e.Severity == SeverityInfo
}

// WithContext adds context information to the error
func (e *SubmitError) WithContext(key string, value any) *SubmitError {
	if e.Context == nil {
		e.Context = make(ContextFields)
	}
	e.Context[key] = value
	return e
}

// New creates a new SubmitError
func New(category ErrorCategory, severity ErrorSeverity, message string) *SubmitError {
	return &SubmitError{
		Category: category,
		Severity: severity,
		Message:  message,
	}
}

// Wrap creates a new SubmitError that wraps an existing error
func Wrap(err error, category ErrorCategory, severity ErrorSeverity, message string) *SubmitError {
	return &SubmitError{
		Category: category,
		Severity: severity,
		Message:  message,
		Cause:    err,
	}
}

// As returns the outermost SubmitError in err's chain.
func As(err error) (*SubmitError, bool) {
	var se *SubmitError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsCategory checks if an error (or anything it wraps) belongs to a specific category
func IsCategory(err error, category ErrorCategory) bool {
	if se, ok := As(err); ok {
		return se.Category == category
	}
	return false
}

// GetCategory extracts the category from an error, or returns CategoryInternal if not a SubmitError
func GetCategory(err error) ErrorCategory {
	if se, ok := As(err); ok {
		return se.Category
	}
	return CategoryInternal
}
