// Package pdftext extracts per-page plain text from PDF files.
package pdftext

import (
	"fmt"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
)

// A new line starts when the baseline moves by more than this share of the
// font size, or when the font changes.
const lineTolerance = 0.5

// A gap wider than this share of the font size between two glyphs on one
// line is rendered as a space.
const spaceTolerance = 0.15

// Extractor reads PDFs with github.com/ledongthuc/pdf.
type Extractor struct{}

// New returns a PDF page extractor.
func New() *Extractor { return &Extractor{} }

// Pages returns the plain text of each page in document order. Pages without
// content yield an empty string so page numbering is preserved.
//
// Glyphs are joined in drawing order. A line break is emitted whenever the
// baseline moves or the font changes, so a citation typeset as "[", "?", "]"
// in alternating fonts reads as "[\n?\n]".
func (e *Extractor) Pages(path string) (pages []string, err error) {
	// The reader panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("read %s: malformed pdf: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	n := r.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		switch p.V.Key("Contents").Kind() {
		case pdf.Null:
			pages = append(pages, "")
		case pdf.Stream:
			pages = append(pages, pageText(p.Content().Text))
		default:
			return nil, fmt.Errorf("extract page %d of %s: unsupported content array", i, path)
		}
	}
	return pages, nil
}

// pageText joins positioned glyphs into lines.
func pageText(glyphs []pdf.Text) string {
	var b strings.Builder
	var prev pdf.Text
	started := false
	for _, g := range glyphs {
		// The reader marks the end of every TJ array with a newline glyph;
		// line breaks are derived from positions instead.
		if g.S == "" || g.S == "\n" {
			continue
		}
		if started {
			size := math.Max(prev.FontSize, 1)
			switch {
			case g.Font != prev.Font || math.Abs(g.Y-prev.Y) > lineTolerance*size:
				b.WriteByte('\n')
			case g.S != " " && prev.S != " " && g.X-(prev.X+prev.W) > spaceTolerance*size:
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.S)
		prev = g
		started = true
	}
	return b.String()
}
