package scanner

import (
	"fmt"
	"strconv"
	"strings"
)

// Marker is a literal signature in rendered text that signals incomplete compilation.
type Marker struct {
	Pattern     string `yaml:"pattern" json:"pattern"`
	Description string `yaml:"description" json:"description"`
}

// MarkerSet is the ordered marker configuration. Order drives report order.
type MarkerSet []Marker

// DefaultMarkers flags unresolved references and citations as LaTeX renders them.
func DefaultMarkers() MarkerSet {
	return MarkerSet{
		{Pattern: "??", Description: "broken references"},
		{Pattern: "[\n?\n]", Description: "broken citations"},
	}
}

// Describe returns the description registered for pattern.
func (s MarkerSet) Describe(pattern string) string {
	for _, m := range s {
		if m.Pattern == pattern {
			return m.Description
		}
	}
	return pattern
}

// Artifact is a rendered output to scan. Label is how the file is named in reports.
type Artifact struct {
	Path  string
	Label string
}

// Finding lists the 1-indexed pages on which a marker occurs.
type Finding struct {
	Marker Marker `json:"marker"`
	Pages  []int  `json:"pages"`
}

// FileDefects holds the findings for one artifact; only non-empty findings are kept.
type FileDefects struct {
	Path     string    `json:"path"`
	Findings []Finding `json:"findings"`
}

// Report maps artifacts to their findings. Artifacts without findings are absent.
type Report struct {
	Files   []FileDefects `json:"files"`
	Scanned int           `json:"scanned"`
}

// Empty reports whether no defects were found.
func (r *Report) Empty() bool { return r == nil || len(r.Files) == 0 }

// Pages returns the pages on which pattern occurs in path, or nil.
func (r *Report) Pages(path, pattern string) []int {
	if r == nil {
		return nil
	}
	for _, f := range r.Files {
		if f.Path != path {
			continue
		}
		for _, fd := range f.Findings {
			if fd.Marker.Pattern == pattern {
				return fd.Pages
			}
		}
	}
	return nil
}

// Lines renders one human-readable line per (file, marker) pair.
func (r *Report) Lines() []string {
	if r == nil {
		return nil
	}
	var out []string
	for _, f := range r.Files {
		for _, fd := range f.Findings {
			out = append(out, FormatFinding(f.Path, fd))
		}
	}
	return out
}

// FormatFinding renders e.g. "File paper.pdf seems to contain broken references on pages 1, 3".
func FormatFinding(path string, fd Finding) string {
	return fmt.Sprintf("File %s seems to contain %s on page%s %s",
		path, fd.Marker.Description, pluralize(len(fd.Pages)), joinPages(fd.Pages))
}

func joinPages(pages []int) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = strconv.Itoa(p)
	}
	return strings.Join(parts, ", ")
}

// pluralize returns "s" if count != 1, otherwise empty string.
func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
