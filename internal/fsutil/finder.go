// Package fsutil provides file system utility functions.
package fsutil

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"path/filepath"
	"slices"
)

// errStop ends a walk early when the consumer stops iterating.
var errStop = errors.New("stop walk")

// Find lazily yields every regular file below root whose base name matches the
// glob pattern (filepath.Match syntax). Iteration order is lexical per directory.
// Each range over the sequence walks the tree again.
// A walk or pattern error is yielded once and ends the sequence.
func Find(ctx context.Context, root, pattern string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if _, err := filepath.Match(pattern, ""); err != nil {
			yield("", fmt.Errorf("invalid pattern %q: %w", pattern, err))
			return
		}

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if cerr := ctx.Err(); cerr != nil {
				return cerr
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if ok, _ := filepath.Match(pattern, d.Name()); !ok {
				return nil
			}
			if !yield(path, nil) {
				return errStop
			}
			return nil
		})
		if err != nil && !errors.Is(err, errStop) {
			yield("", err)
		}
	}
}

// Collect drains a Find sequence into a sorted slice, stopping at the first error.
func Collect(seq iter.Seq2[string, error]) ([]string, error) {
	var out []string
	for path, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, path)
	}
	slices.Sort(out)
	return out, nil
}
