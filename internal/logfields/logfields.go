package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPath       = "path"
	KeyFile       = "file"
	KeyStage      = "stage"
	KeyResource   = "resource"
	KeyDocument   = "document"
	KeyMarker     = "marker"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyPolicy     = "policy"
	KeyCommit     = "commit"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func File(f string) slog.Attr         { return slog.String(KeyFile, f) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Resource(name string) slog.Attr  { return slog.String(KeyResource, name) }
func Document(p string) slog.Attr     { return slog.String(KeyDocument, p) }
func Marker(m string) slog.Attr       { return slog.String(KeyMarker, m) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Policy(p string) slog.Attr       { return slog.String(KeyPolicy, p) }
func Commit(c string) slog.Attr       { return slog.String(KeyCommit, c) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
