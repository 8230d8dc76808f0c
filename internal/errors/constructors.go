package errors

// Convenience functions for common error patterns

// Config errors

func ConfigInvalid(path string, cause error) *SubmitError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "configuration invalid").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *SubmitError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Packaging errors

// AlreadyExists reports a pre-existing target archive. Raised before any mutation.
func AlreadyExists(path string) *SubmitError {
	return New(CategoryAlreadyExists, SeverityFatal, path+" already exists").
		WithContext("path", path)
}

// ResourceNotFound reports a library entry whose backing file is missing.
func ResourceNotFound(name, path string) *SubmitError {
	return New(CategoryResourceNotFound, SeverityFatal, "library resource not found").
		WithContext("resource", name).
		WithContext("path", path)
}

// CompilationFailed reports documents the external compiler could not build.
func CompilationFailed(failed int, cause error) *SubmitError {
	return Wrap(cause, CategoryCompilationFailed, SeverityWarning, "compilation failed").
		WithContext("documents", failed)
}

// DefectsFound reports rendered outputs containing forbidden markers.
func DefectsFound(files int) *SubmitError {
	return New(CategoryDefectsFound, SeverityWarning, "rendered output contains defects").
		WithContext("files", files)
}

// Aborted reports a run stopped by the continuation policy or the user.
// cause is the recoverable condition that was not accepted, if any.
func Aborted(reason string, cause error) *SubmitError {
	return Wrap(cause, CategoryAborted, SeverityFatal, "aborted: "+reason)
}

func FileSystemError(operation string, cause error) *SubmitError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "filesystem operation failed").
		WithContext("operation", operation)
}

func WorkspaceError(operation string, cause error) *SubmitError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "workspace operation failed").
		WithContext("operation", operation)
}

func ArchiveError(path string, cause error) *SubmitError {
	return Wrap(cause, CategoryArchive, SeverityFatal, "archive creation failed").
		WithContext("path", path)
}

// Internal errors

func InternalError(message string, cause error) *SubmitError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
