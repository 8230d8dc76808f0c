package scanner

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Formatter writes a defect report.
type Formatter interface {
	Format(w io.Writer, report *Report) error
}

// TextFormatter writes one line per finding, optionally styled for terminals.
type TextFormatter struct {
	useColor bool
	path     lipgloss.Style
	problem  lipgloss.Style
	ok       lipgloss.Style
}

// NewTextFormatter creates a text formatter.
func NewTextFormatter(useColor bool) *TextFormatter {
	return &TextFormatter{
		useColor: useColor,
		path:     lipgloss.NewStyle().Bold(true),
		problem:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		ok:       lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	}
}

// Format outputs findings in human-readable text.
func (f *TextFormatter) Format(w io.Writer, report *Report) error {
	if report.Empty() {
		msg := "No broken references or citations found"
		if report != nil {
			msg = fmt.Sprintf("%s in %d file%s", msg, report.Scanned, pluralize(report.Scanned))
		}
		_, err := fmt.Fprintln(w, f.render(f.ok, msg))
		return err
	}

	for _, file := range report.Files {
		for _, fd := range file.Findings {
			line := FormatFinding(file.Path, fd)
			if f.useColor {
				line = fmt.Sprintf("File %s seems to contain %s on page%s %s",
					f.path.Render(file.Path),
					f.problem.Render(fd.Marker.Description),
					pluralize(len(fd.Pages)),
					joinPages(fd.Pages))
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *TextFormatter) render(style lipgloss.Style, s string) string {
	if !f.useColor {
		return s
	}
	return style.Render(s)
}

// JSONFormatter formats reports as JSON.
type JSONFormatter struct{}

// Format outputs the report in JSON format.
func (f *JSONFormatter) Format(w io.Writer, report *Report) error {
	if report == nil {
		report = &Report{}
	}
	if report.Files == nil {
		report = &Report{Files: []FileDefects{}, Scanned: report.Scanned}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

// NewFormatter creates the appropriate formatter based on format string.
func NewFormatter(format string, useColor bool) Formatter {
	switch format {
	case "json":
		return &JSONFormatter{}
	default:
		return NewTextFormatter(useColor)
	}
}
