// Package tree copies a document tree into a scratch location and strips
// auxiliary build files from it.
package tree

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	ignore "github.com/sabhiram/go-gitignore"

	"git.home.luguber.info/inful/texsubmit/internal/logfields"
	"git.home.luguber.info/inful/texsubmit/internal/util/sets"
)

// ErrDestinationExists indicates the copy destination is already present.
var ErrDestinationExists = errors.New("destination already exists")

// skipDirs are never copied.
var skipDirs = sets.New(".git", ".hg", ".svn")

// CopyOptions control which entries are copied.
type CopyOptions struct {
	// RespectGitignore skips entries matched by the source's top-level .gitignore.
	RespectGitignore bool
}

// Copy duplicates the tree at src into dst, which must not exist yet.
// Symlinked files are copied by content; symlinked directories are skipped.
func Copy(src, dst string, opts CopyOptions) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !srcInfo.IsDir() {
		return fmt.Errorf("copy %s: not a directory", src)
	}
	if _, err := os.Lstat(dst); err == nil {
		return fmt.Errorf("%w: %s", ErrDestinationExists, dst)
	}

	var gi *ignore.GitIgnore
	if opts.RespectGitignore {
		gi = loadGitignore(src)
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if rel == "." {
			return os.MkdirAll(target, srcInfo.Mode().Perm()|0o700)
		}

		if d.IsDir() {
			if skipDirs.Has(d.Name()) || ignored(gi, rel, true) {
				slog.Debug("Skipping directory", logfields.Path(rel))
				return filepath.SkipDir
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, info.Mode().Perm()|0o700)
		}

		if ignored(gi, rel, false) {
			slog.Debug("Skipping ignored file", logfields.Path(rel))
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				slog.Warn("Skipping dangling symlink", logfields.Path(rel))
				return nil
			}
			if info.IsDir() {
				slog.Warn("Skipping symlinked directory", logfields.Path(rel))
				return nil
			}
		}

		return copyFile(path, target)
	})
}

func ignored(gi *ignore.GitIgnore, rel string, dir bool) bool {
	if gi == nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	if gi.MatchesPath(rel) {
		return true
	}
	return dir && gi.MatchesPath(rel+"/")
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}

// copyFile copies a single file from src to dst, preserving permissions.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return err
	}
	return dstFile.Close()
}
