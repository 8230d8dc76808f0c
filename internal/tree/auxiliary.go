package tree

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"git.home.luguber.info/inful/texsubmit/internal/fsutil"
	"git.home.luguber.info/inful/texsubmit/internal/logfields"
)

// DefaultAuxiliaryExtensions are LaTeX build by-products that never belong in a submission.
var DefaultAuxiliaryExtensions = []string{
	"log", "aux", "dvi", "lof", "lot", "bit", "idx", "glo", "bbl", "bcf",
	"ilg", "toc", "ind", "out", "blg", "fdb_latexmk", "fls", "upa", "upb", "synctex.gz",
}

// RemoveAuxiliary deletes every file below root ending in one of the extensions
// (given without the leading dot) and returns the removed paths.
func RemoveAuxiliary(ctx context.Context, root string, extensions []string) ([]string, error) {
	var removed []string
	for _, ext := range extensions {
		ext = strings.TrimPrefix(ext, ".")
		if ext == "" {
			continue
		}
		// Collect first so removal does not race the walk.
		paths, err := fsutil.Collect(fsutil.Find(ctx, root, "*."+ext))
		if err != nil {
			return removed, fmt.Errorf("find *.%s: %w", ext, err)
		}
		for _, p := range paths {
			if err := os.Remove(p); err != nil {
				return removed, fmt.Errorf("remove %s: %w", p, err)
			}
			slog.Debug("Removed auxiliary file", logfields.Path(p))
			removed = append(removed, p)
		}
	}
	return removed, nil
}
