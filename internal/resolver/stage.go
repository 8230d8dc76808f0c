package resolver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/texsubmit/internal/library"

	serrors "git.home.luguber.info/inful/texsubmit/internal/errors"
)

// StagedResource records a resource copied into (or already present in) a document's directory.
type StagedResource struct {
	Resource library.Resource
	Document string // path of the declaring document
	Target   string // path of the staged copy
}

// stage copies res into dir unless a file with the same name already exists there.
// It reports whether a copy was made.
func stage(res library.Resource, dir string) (string, bool, error) {
	target := filepath.Join(dir, res.FileName())
	if _, err := os.Lstat(target); err == nil {
		return target, false, nil
	}

	src, err := os.Open(res.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return target, false, serrors.ResourceNotFound(res.Name, res.Path)
		}
		return target, false, fmt.Errorf("%w: open %s: %w", ErrStageFailed, res.Path, err)
	}
	defer func() {
		_ = src.Close()
	}()

	info, err := src.Stat()
	if err != nil {
		return target, false, fmt.Errorf("%w: stat %s: %w", ErrStageFailed, res.Path, err)
	}
	if info.IsDir() {
		return target, false, serrors.ResourceNotFound(res.Name, res.Path)
	}

	// O_EXCL keeps staging from ever replacing an existing file.
	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return target, false, nil
		}
		return target, false, fmt.Errorf("%w: create %s: %w", ErrStageFailed, target, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(target)
		return target, false, fmt.Errorf("%w: copy %s: %w", ErrStageFailed, res.Path, err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(target)
		return target, false, fmt.Errorf("%w: close %s: %w", ErrStageFailed, target, err)
	}
	return target, true, nil
}
